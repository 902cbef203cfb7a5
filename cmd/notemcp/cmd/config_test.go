package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit(t *testing.T) {
	// Given: no existing config
	home := isolate(t)
	path := filepath.Join(home, "cfg", "notemcp.yaml")

	// When: initializing twice
	first, _, err := runCLI(t, "config", "init", "--path", path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	second, _, err := runCLI(t, "config", "init", "--path", path)
	require.NoError(t, err)

	// Then: the first writes defaults and the second keeps the file
	assert.Contains(t, first, "Created configuration")
	assert.Contains(t, second, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))

	_, _, err = runCLI(t, "config", "init", "--path", path, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Notebook")
}

func TestConfigInit_DefaultsToUserPath(t *testing.T) {
	home := isolate(t)

	_, _, err := runCLI(t, "config", "init")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".config", "notemcp", "config.yaml"))
}

func TestConfigShow_UsesConfigFlag(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  name: Work Notes\nextensions: [md]\n"), 0o644))

	out, _, err := runCLI(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Work Notes")

	jsonOut, _, err := runCLI(t, "config", "show", "--json", "--config", path)
	require.NoError(t, err)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &cfg))
	assert.Equal(t, []any{"md"}, cfg["extensions"])
}

func TestConfigSources_UsedWithoutDirs(t *testing.T) {
	home := isolate(t)
	root := notesDir(t)
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - path: "+root+"\n    name: journal\n"), 0o644))

	out, _, err := runCLI(t, "list", "--config", path)

	require.NoError(t, err)
	assert.Equal(t, "journal:a.md\njournal:daily/2024.md\n", out)
}

func TestConfigPath(t *testing.T) {
	home := isolate(t)

	out, _, err := runCLI(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "notemcp", "config.yaml")+"\n", out)
}
