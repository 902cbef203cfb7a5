package search

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/notemcp/internal/index"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree creates files under a fresh temp dir and returns its resolved
// path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return resolved
}

// buildIndex registers each named root in order and scans with exts.
func buildIndex(t *testing.T, exts []string, roots ...[2]string) *index.Index {
	t.Helper()
	ix := index.New(index.WithLogger(quietLogger()))
	for _, r := range roots {
		_, err := ix.RegisterSource(r[1], r[0])
		require.NoError(t, err)
	}
	require.NoError(t, ix.Scan(context.Background(), exts))
	return ix
}

// writeScript creates an executable shell script and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// lookPathFor resolves names from a fixed table, failing the rest.
func lookPathFor(paths map[string]string) LookPathFunc {
	return func(file string) (string, error) {
		if p, ok := paths[file]; ok {
			return p, nil
		}
		return "", os.ErrNotExist
	}
}

type loaderFunc func(path string) ([]byte, error)

func (f loaderFunc) Load(path string) ([]byte, error) { return f(path) }
