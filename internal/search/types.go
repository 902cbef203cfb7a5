// Package search answers literal substring queries over indexed notes.
//
// Three backends share one result contract: a structured ripgrep backend, a
// line-oriented grep backend, and an in-memory scan. The engine probes the
// host once for the external tools and tries the best one available,
// falling back to the in-memory scan when that backend cannot run.
package search

import (
	"context"

	"github.com/Aman-CERP/notemcp/internal/index"
)

// Result is one match location.
type Result struct {
	NoteID     string `json:"note_id"`
	LineNumber int    `json:"line_number"`
	Context    string `json:"context"`
}

// Request is a single search call.
type Request struct {
	Query         string
	MaxResults    int
	ContextLines  int
	CaseSensitive bool
}

// Corpus is the indexed state a backend searches. *index.Index implements it.
type Corpus interface {
	Sources() []index.Source
	Extensions() []string
	Notes() []index.Note
	Lookup(id string) (string, error)
}

// ContentLoader returns the UTF-8 content of a note file.
// *notes.Reader implements it.
type ContentLoader interface {
	Load(path string) ([]byte, error)
}

// Backend is one search strategy. Run returns a BackendExecution error only
// when the backend as a whole could not run; per-source and per-record
// problems are skipped.
type Backend interface {
	Name() string
	Run(ctx context.Context, corpus Corpus, req Request) ([]Result, error)
}

// Backend names.
const (
	BackendRipgrep = "ripgrep"
	BackendGrep    = "grep"
	BackendMemory  = "memory"
)
