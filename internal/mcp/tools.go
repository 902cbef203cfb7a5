package mcp

import (
	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/internal/search"
)

// Tool names.
const (
	ToolSearch = "note_search"
	ToolList   = "note_list"
	ToolRead   = "note_read"
	ToolInfo   = "note_info"
)

// Search result limits.
const (
	DefaultMaxResults   = 10
	MaxResultsLimit     = 100
	DefaultContextLines = 2
)

// SearchInput defines the input schema for the note_search tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"literal text to find, matched as a substring"`
	MaxResults   *int   `json:"max_results,omitempty" jsonschema:"maximum number of results, default 10, at most 100"`
	ContextLines *int   `json:"context_lines,omitempty" jsonschema:"lines of context around each match, default 2"`
}

// SearchOutput defines the output schema for the note_search tool.
type SearchOutput struct {
	Results []search.Result `json:"results" jsonschema:"matches, at most one per note"`
}

// ListInput defines the input schema for the note_list tool.
type ListInput struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive substring to filter note ids"`
}

// ListOutput defines the output schema for the note_list tool.
type ListOutput struct {
	NoteIDs []string `json:"note_ids" jsonschema:"note ids in index order"`
}

// ReadInput defines the input schema for the note_read tool.
type ReadInput struct {
	NoteID string `json:"note_id" jsonschema:"note id in the form source:relative/path"`
}

// ReadOutput defines the output schema for the note_read tool.
type ReadOutput struct {
	NoteID  string `json:"note_id"`
	Content string `json:"content"`
}

// InfoInput defines the input schema for the note_info tool (no parameters).
type InfoInput struct{}

// InfoOutput defines the output schema for the note_info tool.
type InfoOutput struct {
	TotalNotes int                `json:"total_notes"`
	Extensions []string           `json:"extensions"`
	Sources    []index.SourceInfo `json:"sources"`
	Capability string             `json:"capability" jsonschema:"best search tool found: fast, basic, or none"`
	Chain      []string           `json:"chain" jsonschema:"search backends in fallback order"`
}

// clampLimit returns def for nil, otherwise v clamped to [lo, hi].
func clampLimit(v *int, def, lo, hi int) int {
	if v == nil {
		return def
	}
	return min(max(*v, lo), hi)
}
