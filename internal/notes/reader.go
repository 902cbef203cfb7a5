// Package notes reads note content by identifier.
package notes

import (
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/notemcp/internal/errors"
)

// DefaultCacheSize is the number of notes kept in memory.
const DefaultCacheSize = 512

// Locator resolves a note identifier to a file path.
type Locator interface {
	Lookup(id string) (string, error)
}

type cachedNote struct {
	modTime time.Time
	size    int64
	content []byte
}

// Reader returns the full text of notes. Content is cached by path and
// revalidated against the file's size and modification time on every read.
type Reader struct {
	locator Locator
	cache   *lru.Cache[string, cachedNote]
	logger  *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithCacheSize sets the cache capacity. Zero or less disables caching.
func WithCacheSize(size int) Option {
	return func(r *Reader) {
		if size <= 0 {
			r.cache = nil
			return
		}
		r.cache, _ = lru.New[string, cachedNote](size)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader creates a Reader over locator.
func NewReader(locator Locator, opts ...Option) *Reader {
	cache, _ := lru.New[string, cachedNote](DefaultCacheSize)
	r := &Reader{
		locator: locator,
		cache:   cache,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the content of the note. It fails with a NotFound error for
// unknown identifiers and a ReadFailed error for I/O or UTF-8 decoding
// failures; partial content is never returned.
func (r *Reader) Read(id string) (string, error) {
	path, err := r.locator.Lookup(id)
	if err != nil {
		return "", err
	}

	data, err := r.Load(path)
	if err != nil {
		return "", errors.ReadFailed(id, err)
	}
	return string(data), nil
}

// Load returns the UTF-8 content of the file at path.
// The returned slice is shared with the cache and must not be modified.
func (r *Reader) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	if r.cache != nil {
		if c, ok := r.cache.Get(path); ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
			return c.content, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("invalid UTF-8 in %s", path)
	}

	if r.cache != nil {
		r.cache.Add(path, cachedNote{modTime: info.ModTime(), size: info.Size(), content: data})
	}
	return data, nil
}

// Purge drops every cached note.
func (r *Reader) Purge() {
	if r.cache != nil {
		r.cache.Purge()
		r.logger.Debug("note cache purged")
	}
}

// Cached returns the number of cached notes.
func (r *Reader) Cached() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}
