// Package noteid maps a (source name, relative path) pair to the stable
// string identifier notes are addressed by.
//
// Identifiers have the form "<source>:<relative-path>" where the relative
// path uses the host path separator. Source names are colon-free by
// convention, so the first colon always splits the two halves.
package noteid

import (
	"path/filepath"
	"strings"
)

// Separator splits the source name from the relative path.
const Separator = ":"

// Format builds the identifier for a file at rel under the named source.
func Format(source, rel string) string {
	return source + Separator + filepath.Clean(rel)
}

// FromPath builds the identifier for an absolute path under root.
// It reports false when path is not inside root.
func FromPath(source, root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return Format(source, rel), true
}

// Split returns the source name and relative path of an identifier.
// It reports false when id has no separator or either half is empty.
func Split(id string) (source, rel string, ok bool) {
	source, rel, ok = strings.Cut(id, Separator)
	if !ok || source == "" || rel == "" {
		return "", "", false
	}
	return source, rel, true
}
