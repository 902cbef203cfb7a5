package search

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
)

// Fixed in-memory context window, independent of Request.ContextLines.
const (
	memoryLinesBefore = 3
	memoryLinesAfter  = 2
)

type fileLoader struct{}

func (fileLoader) Load(path string) ([]byte, error) { return os.ReadFile(path) }

// InMemory scans note contents directly, in index order, emitting one
// result per matching note.
type InMemory struct {
	loader ContentLoader
	logger *slog.Logger
}

// NewInMemory creates the in-memory backend. A nil loader reads files
// directly.
func NewInMemory(loader ContentLoader, logger *slog.Logger) *InMemory {
	if loader == nil {
		loader = fileLoader{}
	}
	return &InMemory{loader: loader, logger: logger}
}

// Name implements Backend.
func (b *InMemory) Name() string { return BackendMemory }

// Run implements Backend. It never fails; unreadable notes are skipped.
func (b *InMemory) Run(ctx context.Context, corpus Corpus, req Request) ([]Result, error) {
	if req.MaxResults <= 0 {
		return nil, nil
	}

	needle := req.Query
	if !req.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	var results []Result
	for _, note := range corpus.Notes() {
		if len(results) >= req.MaxResults || ctx.Err() != nil {
			break
		}

		data, err := b.loader.Load(note.Path)
		if err != nil {
			b.logger.Debug("skipping unreadable note",
				slog.String("note_id", note.ID),
				slog.String("error", err.Error()))
			continue
		}

		content := string(data)
		haystack := content
		if !req.CaseSensitive {
			haystack = strings.ToLower(content)
		}
		at := strings.Index(haystack, needle)
		if at < 0 {
			continue
		}

		// Lowercasing never adds or removes newlines, so the count is the
		// same in either string.
		lineNumber := strings.Count(haystack[:at], "\n") + 1
		results = append(results, Result{
			NoteID:     note.ID,
			LineNumber: lineNumber,
			Context:    contextWindow(data, lineNumber, memoryLinesBefore, memoryLinesAfter),
		})
	}
	return results, nil
}

// contextWindow returns up to before lines ahead of the 1-based lineNumber
// and after lines behind it, with original line endings.
func contextWindow(data []byte, lineNumber, before, after int) string {
	lines := bytes.SplitAfter(data, []byte("\n"))
	if n := len(lines); n > 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}

	idx := lineNumber - 1
	start := max(idx-before, 0)
	end := min(idx+after+1, len(lines))
	if start >= end {
		return ""
	}
	return string(bytes.Join(lines[start:end], nil))
}
