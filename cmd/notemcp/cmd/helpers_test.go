package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points config and logs at a temp home and disables the external
// search tools, so every test runs the in-memory backend.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{"NOTEMCP_EXTENSIONS", "NOTEMCP_SERVER_NAME", "NOTEMCP_CASE_SENSITIVE"} {
		t.Setenv(key, "")
	}

	old := lookPath
	lookPath = func(string) (string, error) { return "", os.ErrNotExist }
	t.Cleanup(func() { lookPath = old })
	return home
}

// notesDir writes a "notes" source and returns its path.
func notesDir(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "notes")
	files := map[string]string{
		"a.md":          "line1\nhello world\nline3\n",
		"daily/2024.md": "Hello from the journal\n",
		"skip.bin":      "hello\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// runCLI executes the root command with args.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
