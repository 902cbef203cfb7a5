// Package index maps registered source directories and note identifiers to
// files on disk.
//
// An Index is not safe for concurrent use. Callers that scan while serving
// must serialize access themselves (pkg/notebook holds a RWMutex).
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Aman-CERP/notemcp/internal/errors"
	"github.com/Aman-CERP/notemcp/internal/noteid"
	"github.com/Aman-CERP/notemcp/internal/scanner"
)

// Source is a registered root directory.
type Source struct {
	Name string `json:"name"`
	Root string `json:"root"`
}

// Note is one indexed file.
type Note struct {
	ID     string `json:"note_id"`
	Path   string `json:"path"`
	Source string `json:"source"`
	Link   bool   `json:"link,omitempty"`
}

// SourceInfo summarizes one source.
type SourceInfo struct {
	Name      string `json:"name"`
	Root      string `json:"root"`
	NoteCount int    `json:"note_count"`
}

// Info is a read-only summary of the index.
type Info struct {
	TotalNotes int          `json:"total_notes"`
	Extensions []string     `json:"extensions"`
	Sources    []SourceInfo `json:"sources"`
}

// Index holds sources in registration order and notes in scan order.
type Index struct {
	sources   []Source
	sourceIdx map[string]int

	notes   []Note
	noteIdx map[string]int

	extensions []string

	scanner  *scanner.Scanner
	exclude  []string
	maxDepth int
	logger   *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithExcludePatterns sets doublestar patterns excluded from every scan.
func WithExcludePatterns(patterns []string) Option {
	return func(ix *Index) {
		ix.exclude = append([]string(nil), patterns...)
	}
}

// WithMaxDepth caps traversal depth below each source root (0 = unlimited).
func WithMaxDepth(depth int) Option {
	return func(ix *Index) {
		if depth > 0 {
			ix.maxDepth = depth
		}
	}
}

// New creates an empty index.
func New(opts ...Option) *Index {
	ix := &Index{
		sourceIdx: make(map[string]int),
		noteIdx:   make(map[string]int),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.scanner = scanner.New(scanner.WithLogger(ix.logger))
	return ix
}

// RegisterSource resolves rootDir to an absolute, symlink-free directory and
// registers it under name (the directory's base name when empty).
//
// Re-registering a name with the same root is a no-op. A different root
// replaces the old one in place and logs a warning.
func (ix *Index) RegisterSource(rootDir, name string) (Source, error) {
	root, err := resolveDir(rootDir)
	if err != nil {
		return Source{}, errors.InvalidSource(rootDir, err)
	}

	if name == "" {
		name = filepath.Base(root)
	}
	if strings.Contains(name, noteid.Separator) {
		return Source{}, errors.ValidationError(
			fmt.Sprintf("source name %q must not contain %q", name, noteid.Separator), nil).
			WithSuggestion("Pass an explicit source name.")
	}

	src := Source{Name: name, Root: root}
	if i, ok := ix.sourceIdx[name]; ok {
		prev := ix.sources[i]
		if prev.Root != root {
			ix.logger.Warn("source re-registered with a different root",
				slog.String("source", name),
				slog.String("old_root", prev.Root),
				slog.String("new_root", root))
			ix.sources[i] = src
		}
		return src, nil
	}

	ix.sourceIdx[name] = len(ix.sources)
	ix.sources = append(ix.sources, src)
	ix.logger.Debug("source registered", slog.String("source", name), slog.String("root", root))
	return src, nil
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory")
	}
	return resolved, nil
}

// Progress is reported after each indexed file.
type Progress struct {
	Indexed int
	Total   int
	NoteID  string
	Source  string
}

// ProgressFunc receives scan progress.
type ProgressFunc func(Progress)

type scanConfig struct {
	progress ProgressFunc
}

// ScanOption configures a single Scan call.
type ScanOption func(*scanConfig)

// WithProgress reports progress after each indexed file. The candidate
// files are counted first so Total is known up front.
func WithProgress(fn ProgressFunc) ScanOption {
	return func(c *scanConfig) {
		c.progress = fn
	}
}

// Scan rebuilds the note mapping from every registered source, keeping files
// whose extension is in exts. The extension set is recorded even when nothing
// matches. Files removed from disk since the last scan disappear.
//
// A source that can no longer be walked is skipped with a warning. If ctx is
// cancelled the previous notes are kept and ctx's error is returned.
func (ix *Index) Scan(ctx context.Context, exts []string, opts ...ScanOption) error {
	var cfg scanConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ix.extensions = NormalizeExtensions(exts)

	total := 0
	if cfg.progress != nil {
		for _, src := range ix.sources {
			n, err := ix.scanner.Count(ctx, ix.scanOptions(src))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			total += n
		}
	}

	notes := make([]Note, 0, len(ix.notes))
	noteIdx := make(map[string]int, len(ix.notes))

	for _, src := range ix.sources {
		results, err := ix.scanner.Scan(ctx, ix.scanOptions(src))
		if err != nil {
			ix.logger.Warn("skipping source", slog.String("source", src.Name), slog.String("error", err.Error()))
			continue
		}

		for r := range results {
			if r.Error != nil {
				ix.logger.Warn("scan of source stopped early",
					slog.String("source", src.Name),
					slog.String("error", r.Error.Error()))
				continue
			}

			id := noteid.Format(src.Name, r.File.Path)
			if _, dup := noteIdx[id]; dup {
				continue
			}
			noteIdx[id] = len(notes)
			notes = append(notes, Note{ID: id, Path: r.File.AbsPath, Source: src.Name, Link: r.File.Link})

			if cfg.progress != nil {
				if len(notes) > total {
					total = len(notes)
				}
				cfg.progress(Progress{Indexed: len(notes), Total: total, NoteID: id, Source: src.Name})
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	ix.notes = notes
	ix.noteIdx = noteIdx
	ix.logger.Info("index scan complete",
		slog.Int("notes", len(notes)),
		slog.Int("sources", len(ix.sources)),
		slog.String("extensions", strings.Join(ix.extensions, ",")))
	return nil
}

func (ix *Index) scanOptions(src Source) *scanner.ScanOptions {
	return &scanner.ScanOptions{
		RootDir:         src.Root,
		Extensions:      ix.extensions,
		ExcludePatterns: ix.exclude,
		MaxDepth:        ix.maxDepth,
	}
}

// NormalizeExtensions lowercases, strips leading dots, drops blanks and
// duplicates, and sorts.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		n := scanner.NormalizeExtension(ext)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the absolute path of a note.
func (ix *Index) Lookup(id string) (string, error) {
	i, ok := ix.noteIdx[id]
	if !ok {
		return "", errors.NotFound(id)
	}
	return ix.notes[i].Path, nil
}

// List returns note identifiers in scan order. A non-empty filter keeps
// identifiers containing it, case-insensitively.
func (ix *Index) List(filter string) []string {
	needle := strings.ToLower(filter)
	ids := make([]string, 0, len(ix.notes))
	for _, n := range ix.notes {
		if needle == "" || strings.Contains(strings.ToLower(n.ID), needle) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Notes returns a copy of the indexed notes in scan order.
func (ix *Index) Notes() []Note {
	return append([]Note(nil), ix.notes...)
}

// Sources returns the registered sources in registration order.
func (ix *Index) Sources() []Source {
	return append([]Source(nil), ix.sources...)
}

// Source returns a registered source by name.
func (ix *Index) Source(name string) (Source, bool) {
	i, ok := ix.sourceIdx[name]
	if !ok {
		return Source{}, false
	}
	return ix.sources[i], true
}

// Extensions returns the extension set of the last scan, sorted.
func (ix *Index) Extensions() []string {
	return append([]string(nil), ix.extensions...)
}

// Len returns the number of indexed notes.
func (ix *Index) Len() int {
	return len(ix.notes)
}

// Info summarizes the index.
func (ix *Index) Info() Info {
	counts := make(map[string]int, len(ix.sources))
	for _, n := range ix.notes {
		counts[n.Source]++
	}

	info := Info{
		TotalNotes: len(ix.notes),
		Extensions: ix.Extensions(),
		Sources:    make([]SourceInfo, 0, len(ix.sources)),
	}
	for _, src := range ix.sources {
		info.Sources = append(info.Sources, SourceInfo{
			Name:      src.Name,
			Root:      src.Root,
			NoteCount: counts[src.Name],
		})
	}
	return info
}
