// Package scanner walks source directories for note files.
// It applies the extension set, doublestar exclude patterns and an optional
// depth cap, and streams what it finds in lexical traversal order.
package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// FileInfo describes a discovered note file.
type FileInfo struct {
	Path    string    // Relative to the scan root, host separators
	AbsPath string    // Absolute path (the link itself for file symlinks)
	Ext     string    // Normalized extension
	Size    int64     // File size in bytes
	ModTime time.Time // Last modification time
	Link    bool      // Reached through a file symlink
}

// ScanOptions configures a scan.
type ScanOptions struct {
	// RootDir is the directory to scan.
	RootDir string

	// Extensions restricts results to these extensions, compared
	// case-insensitively without the leading dot. Empty matches nothing.
	Extensions []string

	// ExcludePatterns are doublestar patterns matched against the
	// slash-separated relative path. A pattern ending in "/**" also prunes
	// the matching directory.
	ExcludePatterns []string

	// MaxDepth caps how many path segments below RootDir a file may have.
	// 0 means unlimited; 1 means only files directly in RootDir.
	MaxDepth int
}

// ScanResult is returned from the scanner channel.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// NormalizeExtension lowercases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Extension returns the normalized extension of path ("" if none).
func Extension(path string) string {
	return NormalizeExtension(filepath.Ext(path))
}
