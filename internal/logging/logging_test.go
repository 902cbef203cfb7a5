package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()

	assert.Contains(t, path, ".notemcp")
	assert.Equal(t, "server.log", filepath.Base(path))
	assert.Equal(t, DefaultLogDir(), filepath.Dir(path))
}

func TestServeConfig_NeverWritesToStderr(t *testing.T) {
	cfg := ServeConfig("debug")

	assert.False(t, cfg.WriteToStderr)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
}

func TestSetup_WritesJSONToFileAndStderr(t *testing.T) {
	// Given: a file+stderr config at debug level
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	logger, cleanup, err := Setup(Config{
		Level:         "debug",
		FilePath:      path,
		WriteToStderr: true,
		Stderr:        &stderr,
	})
	require.NoError(t, err)

	// When: logging
	logger.Debug("scan complete", slog.Int("notes", 3))
	cleanup()

	// Then: both sinks got the same JSON line
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stderr.String(), string(data))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "scan complete", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.EqualValues(t, 3, rec["notes"])
}

func TestSetup_LevelFiltersRecords(t *testing.T) {
	var stderr bytes.Buffer
	logger, cleanup, err := Setup(Config{Level: "warn", WriteToStderr: true, Stderr: &stderr})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, stderr.String(), "shown")
}

func TestSetup_NoSinksDiscards(t *testing.T) {
	logger, cleanup, err := Setup(Config{Level: "info"})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("nowhere")
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFromString(tt.in))
		})
	}
}

func TestFindLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := FindLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = FindLogFile(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

// =============================================================================
// RotatingWriter
// =============================================================================

func TestRotatingWriter_RotatesAndCapsGenerations(t *testing.T) {
	// Given: a writer rotating every 10 bytes and keeping 2 generations
	path := filepath.Join(t.TempDir(), "server.log")
	w, err := newRotatingWriter(path, 10, 2)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// When: writing four 8-byte lines
	for _, line := range []string{"first-1\n", "second2\n", "third-3\n", "fourth4\n"} {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}

	// Then: only the newest three lines survive, newest first
	read := func(p string) string {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, "fourth4\n", read(path))
	assert.Equal(t, "third-3\n", read(path+".1"))
	assert.Equal(t, "second2\n", read(path+".2"))
	assert.NoFileExists(t, path+".3")
}

func TestRotatingWriter_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w, err := NewRotatingWriter(path, 1, 1)
	require.NoError(t, err)
	w.SetImmediateSync(false)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

// =============================================================================
// Viewer
// =============================================================================

const sampleLog = `{"time":"2026-01-02T10:00:00.000Z","level":"DEBUG","msg":"record skipped","backend":"ripgrep"}
not json at all
{"time":"2026-01-02T10:00:01.000Z","level":"INFO","msg":"scan complete","notes":2}
{"time":"2026-01-02T10:00:02.000Z","level":"WARN","msg":"falling back","backend":"grep"}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func TestViewer_Tail_LastNLines(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	entries, err := v.Tail(writeSample(t), 2)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "scan complete", entries[0].Msg)
	assert.Equal(t, "falling back", entries[1].Msg)
}

func TestViewer_Tail_LevelAndPatternFilters(t *testing.T) {
	path := writeSample(t)

	v := NewViewer(ViewerConfig{Level: "info", NoColor: true}, &bytes.Buffer{})
	entries, err := v.Tail(path, 10)
	require.NoError(t, err)
	// the unparseable line has no level and is kept
	require.Len(t, entries, 3)
	assert.False(t, entries[0].IsValid)

	v = NewViewer(ViewerConfig{Pattern: regexp.MustCompile(`grep`), NoColor: true}, &bytes.Buffer{})
	entries, err = v.Tail(path, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "record skipped", entries[0].Msg)
}

func TestViewer_FormatEntry(t *testing.T) {
	var out bytes.Buffer
	v := NewViewer(ViewerConfig{NoColor: true}, &out)

	entries, err := v.Tail(writeSample(t), 10)
	require.NoError(t, err)
	v.Print(entries)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "10:00:00.000 DEBUG record skipped backend=ripgrep", lines[0])
	assert.Equal(t, "not json at all", lines[1])
	assert.Equal(t, "10:00:01.000 INFO  scan complete notes=2", lines[2])
}

func TestViewer_Tail_MissingFile(t *testing.T) {
	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})

	_, err := v.Tail(filepath.Join(t.TempDir(), "nope.log"), 5)

	assert.Error(t, err)
}

func TestViewer_Follow_SeesAppendedLines(t *testing.T) {
	// Given: a follower on an existing file
	path := writeSample(t)
	v := NewViewer(ViewerConfig{Level: "warn"}, &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan LogEntry, 4)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, ch) }()

	// When: lines are appended after it starts
	time.Sleep(150 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"time":"2026-01-02T10:00:03Z","level":"INFO","msg":"quiet"}` + "\n" +
		`{"time":"2026-01-02T10:00:04Z","level":"ERROR","msg":"loud"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Then: only new entries at or above the level arrive
	select {
	case entry := <-ch:
		assert.Equal(t, "loud", entry.Msg)
	case <-time.After(3 * time.Second):
		t.Fatal("no entry followed")
	}

	cancel()
	require.NoError(t, <-done)
}
