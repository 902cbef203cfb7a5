package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scanner discovers note files under a directory.
type Scanner struct {
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new Scanner instance.
func New(opts ...Option) *Scanner {
	s := &Scanner{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan discovers all matching files under opts.RootDir.
// It returns a channel of ScanResult that streams files as they are
// discovered; the channel is closed when scanning is complete. Directory
// symlinks are never followed, file symlinks are.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (<-chan ScanResult, error) {
	w, err := s.prepare(opts)
	if err != nil {
		return nil, err
	}

	results := make(chan ScanResult, 64)
	go func() {
		defer close(results)
		err := w.walk(ctx, func(fi *FileInfo) error {
			select {
			case results <- ScanResult{File: fi}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			select {
			case results <- ScanResult{Error: err}:
			case <-ctx.Done():
			}
		}
	}()

	return results, nil
}

// Count returns how many files Scan would yield for opts.
func (s *Scanner) Count(ctx context.Context, opts *ScanOptions) (int, error) {
	w, err := s.prepare(opts)
	if err != nil {
		return 0, err
	}

	n := 0
	err = w.walk(ctx, func(*FileInfo) error {
		n++
		return nil
	})
	return n, err
}

// walker holds the resolved state of one scan.
type walker struct {
	root     string
	exts     map[string]struct{}
	exclude  []string
	maxDepth int
	logger   *slog.Logger
}

func (s *Scanner) prepare(opts *ScanOptions) (*walker, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}

	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if n := NormalizeExtension(ext); n != "" {
			exts[n] = struct{}{}
		}
	}

	for _, pattern := range opts.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}

	return &walker{
		root:     absRoot,
		exts:     exts,
		exclude:  opts.ExcludePatterns,
		maxDepth: opts.MaxDepth,
		logger:   s.logger,
	}, nil
}

func (w *walker) walk(ctx context.Context, emit func(*FileInfo) error) error {
	if len(w.exts) == 0 {
		return nil
	}

	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			w.logger.Debug("skipping unreadable entry",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if d != nil && d.IsDir() && path != w.root {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil || relPath == "." {
			return nil
		}
		slashed := filepath.ToSlash(relPath)
		depth := strings.Count(slashed, "/") + 1

		if d.IsDir() {
			if w.pruneDir(slashed) || (w.maxDepth > 0 && depth >= w.maxDepth) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.maxDepth > 0 && depth > w.maxDepth {
			return nil
		}

		ext := Extension(path)
		if _, ok := w.exts[ext]; !ok {
			return nil
		}
		if w.excluded(slashed) {
			return nil
		}

		// Stat follows file symlinks; links to directories or nowhere are dropped.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			if d.Type()&fs.ModeSymlink != 0 {
				w.logger.Debug("skipping symlink", slog.String("path", path))
			}
			return nil
		}

		return emit(&FileInfo{
			Path:    relPath,
			AbsPath: path,
			Ext:     ext,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Link:    d.Type()&fs.ModeSymlink != 0,
		})
	})
}

// pruneDir reports whether a "dir/**" style pattern covers the directory.
func (w *walker) pruneDir(rel string) bool {
	for _, pattern := range w.exclude {
		prefix, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		if matched, _ := doublestar.Match(prefix, rel); matched {
			return true
		}
	}
	return false
}

func (w *walker) excluded(rel string) bool {
	for _, pattern := range w.exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
