package mcp

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps note extensions to MIME types.
var mimeTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".mdx":      "text/markdown",
	".org":      "text/org",
	".rst":      "text/x-rst",
	".adoc":     "text/asciidoc",
	".tex":      "text/x-tex",
	".txt":      "text/plain",
	".html":     "text/html",
	".htm":      "text/html",
	".json":     "application/json",
	".yaml":     "text/x-yaml",
	".yml":      "text/x-yaml",
}

// MimeTypeForPath returns the MIME type for a note id or path, falling back
// to text/plain.
func MimeTypeForPath(path string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "text/plain"
}
