package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/internal/search"
)

func TestFormatSearchResults(t *testing.T) {
	out := FormatSearchResults("hello", []search.Result{
		{NoteID: "docs:a.md", LineNumber: 2, Context: "line1\nhello\n"},
		{NoteID: "docs:b.md", LineNumber: 1, Context: "hello"},
	})

	assert.Contains(t, out, `## Search Results for "hello"`)
	assert.Contains(t, out, "Found 2 results")
	assert.Contains(t, out, "### 1. docs:a.md (line 2)\n\n```\nline1\nhello\n```")
	assert.Contains(t, out, "### 2. docs:b.md (line 1)\n\n```\nhello\n```")
}

func TestFormatSearchResults_Empty(t *testing.T) {
	assert.Equal(t, `No results found for "x"`, FormatSearchResults("x", nil))
}

func TestFormatSearchResults_Singular(t *testing.T) {
	out := FormatSearchResults("x", []search.Result{{NoteID: "a:b.md", LineNumber: 1, Context: "x\n"}})

	assert.Contains(t, out, "Found 1 result\n")
}

func TestFormatInfo(t *testing.T) {
	out := FormatInfo(index.Info{
		TotalNotes: 3,
		Extensions: []string{"md", "txt"},
		Sources: []index.SourceInfo{
			{Name: "docs", Root: "/n/docs", NoteCount: 2},
			{Name: "work", Root: "/n/work", NoteCount: 1},
		},
	})

	assert.Equal(t, "total notes: 3\nextensions: md, txt\nsources:\n  - docs: 2 notes (/n/docs)\n  - work: 1 notes (/n/work)", out)
}

func TestMimeTypeForPath(t *testing.T) {
	assert.Equal(t, "text/markdown", MimeTypeForPath("docs:a.MD"))
	assert.Equal(t, "text/org", MimeTypeForPath("docs:j/b.org"))
	assert.Equal(t, "text/plain", MimeTypeForPath("docs:c.txt"))
	assert.Equal(t, "text/plain", MimeTypeForPath("docs:noext"))
}
