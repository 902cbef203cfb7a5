package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config lookup at an empty temp dir so the
// developer's own config never leaks into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults should be applied
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, []string{"md", "org", "txt"}, cfg.Extensions)

	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 2, cfg.Search.ContextLines)
	assert.False(t, cfg.Search.CaseSensitive)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.False(t, cfg.Search.Parallel)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, 3, cfg.Search.CircuitFailures)
	assert.Equal(t, time.Minute, cfg.Search.CircuitReset)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 512, cfg.Cache.Size)

	assert.Equal(t, "Notebook", cfg.Server.Name)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "info", cfg.Server.LogLevel)

	assert.Contains(t, cfg.Paths.Exclude, "**/.git/**")
	assert.Equal(t, 0, cfg.Paths.MaxDepth)
}

func TestNewConfig_DefaultsAreNotShared(t *testing.T) {
	a := NewConfig()
	a.Extensions[0] = "changed"
	a.Paths.Exclude[0] = "changed"

	b := NewConfig()
	assert.Equal(t, "md", b.Extensions[0])
	assert.Equal(t, "**/.git/**", b.Paths.Exclude[0])
}

// =============================================================================
// File loading
// =============================================================================

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_YamlFile_OverridesDefaults(t *testing.T) {
	// Given: a project config overriding a few keys
	isolate(t)
	dir := t.TempDir()
	content := `
sources:
  - path: ~/notes
    name: notes
extensions: [md, rst]
paths:
  exclude: ["**/drafts/**"]
  max_depth: 3
search:
  max_results: 25
  case_sensitive: true
  timeout: 5s
cache:
  enabled: false
server:
  name: Journal
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notemcp.yaml"), []byte(content), 0o644))

	// When: loading
	cfg, err := Load(dir)

	// Then: overridden keys change, the rest keep their defaults
	require.NoError(t, err)
	assert.Equal(t, []SourceConfig{{Path: "~/notes", Name: "notes"}}, cfg.Sources)
	assert.Equal(t, []string{"md", "rst"}, cfg.Extensions)
	assert.Contains(t, cfg.Paths.Exclude, "**/.git/**")
	assert.Contains(t, cfg.Paths.Exclude, "**/drafts/**")
	assert.Equal(t, 3, cfg.Paths.MaxDepth)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, 2, cfg.Search.ContextLines)
	assert.True(t, cfg.Search.CaseSensitive)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 512, cfg.Cache.Size)
	assert.Equal(t, "Journal", cfg.Server.Name)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notemcp.yaml"), []byte("search:\n  max_results: 7\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notemcp.yml"), []byte("search:\n  max_results: 9\n"), 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.MaxResults)
}

func TestLoad_UserConfigBelowProjectConfig(t *testing.T) {
	// Given: a user config and a project config that disagree
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userDir := filepath.Join(xdg, "notemcp")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"),
		[]byte("search:\n  max_results: 40\n  context_lines: 5\n"), 0o644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notemcp.yml"),
		[]byte("search:\n  max_results: 15\n"), 0o644))

	// When: loading
	cfg, err := Load(dir)

	// Then: project wins where set, user fills the rest
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Search.MaxResults)
	assert.Equal(t, 5, cfg.Search.ContextLines)
}

func TestLoad_InvalidYaml_ReturnsError(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notemcp.yaml"), []byte("search: [unclosed"), 0o644))

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidValue_FailsValidation(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notemcp.yaml"), []byte("server:\n  transport: sse\n"), 0o644))

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.transport")
}

func TestLoadFile_ReadsExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extensions: [org]\n"), 0o644))

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"org"}, cfg.Extensions)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// =============================================================================
// Environment overrides
// =============================================================================

func TestLoad_EnvVarsOverrideFile(t *testing.T) {
	// Given: a project file and env vars for the same keys
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notemcp.yaml"), []byte("search:\n  max_results: 15\n"), 0o644))

	t.Setenv("NOTEMCP_EXTENSIONS", "md, .Org")
	t.Setenv("NOTEMCP_MAX_RESULTS", "3")
	t.Setenv("NOTEMCP_CONTEXT_LINES", "0")
	t.Setenv("NOTEMCP_CASE_SENSITIVE", "true")
	t.Setenv("NOTEMCP_TIMEOUT", "2s")
	t.Setenv("NOTEMCP_LOG_LEVEL", "debug")
	t.Setenv("NOTEMCP_SERVER_NAME", "Vault")

	// When: loading
	cfg, err := Load(dir)

	// Then: env wins
	require.NoError(t, err)
	assert.Equal(t, []string{"md", "org"}, cfg.Extensions)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 0, cfg.Search.ContextLines)
	assert.True(t, cfg.Search.CaseSensitive)
	assert.Equal(t, 2*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "Vault", cfg.Server.Name)
}

func TestLoad_EnvVarUnparseable_IsIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("NOTEMCP_MAX_RESULTS", "many")
	t.Setenv("NOTEMCP_TIMEOUT", "-1s")
	t.Setenv("NOTEMCP_CASE_SENSITIVE", "perhaps")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.False(t, cfg.Search.CaseSensitive)
}

// =============================================================================
// Paths and helpers
// =============================================================================

func TestGetUserConfigPath_RespectsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	assert.Equal(t, filepath.Join("/tmp/xdg", "notemcp", "config.yaml"), GetUserConfigPath())
	assert.Equal(t, filepath.Join("/tmp/xdg", "notemcp"), GetUserConfigDir())
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"md,org,txt", []string{"md", "org", "txt"}},
		{" .MD , ,txt ", []string{"md", "txt"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.in))
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes"), ExpandPath("~/notes"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/abs/notes", ExpandPath("/abs/notes"))
	assert.Equal(t, "~user/notes", ExpandPath("~user/notes"))
}

// =============================================================================
// Validation and writing
// =============================================================================

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty extensions", func(c *Config) { c.Extensions = nil }, "extensions"},
		{"blank extension", func(c *Config) { c.Extensions = []string{"md", " . "} }, "blank"},
		{"negative max results", func(c *Config) { c.Search.MaxResults = -1 }, "max_results"},
		{"negative context", func(c *Config) { c.Search.ContextLines = -1 }, "context_lines"},
		{"zero timeout", func(c *Config) { c.Search.Timeout = 0 }, "timeout"},
		{"negative depth", func(c *Config) { c.Paths.MaxDepth = -2 }, "max_depth"},
		{"bad level", func(c *Config) { c.Server.LogLevel = "loud" }, "log_level"},
		{"bad transport", func(c *Config) { c.Server.Transport = "http" }, "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, NewConfig().Validate())
}

func TestWriteYAML_RoundTripsThroughLoadFile(t *testing.T) {
	// Given: a customized config written to disk
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := NewConfig()
	cfg.Sources = []SourceConfig{{Path: "/srv/notes"}}
	cfg.Search.Timeout = 12 * time.Second
	cfg.Search.CaseSensitive = true

	require.NoError(t, cfg.WriteYAML(path))

	// When: reading it back
	loaded, err := LoadFile(path)

	// Then: values survive, exclude patterns accumulate onto defaults
	require.NoError(t, err)
	assert.Equal(t, cfg.Sources, loaded.Sources)
	assert.Equal(t, 12*time.Second, loaded.Search.Timeout)
	assert.True(t, loaded.Search.CaseSensitive)
	assert.Contains(t, loaded.Paths.Exclude, "**/.git/**")
}
