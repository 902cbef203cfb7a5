package notebook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Aman-CERP/notemcp/internal/config"
	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/internal/notes"
	"github.com/Aman-CERP/notemcp/internal/search"
)

// Notebook is a searchable collection of note sources.
type Notebook struct {
	mu        sync.RWMutex
	cfg       *config.Config
	index     *index.Index
	reader    *notes.Reader
	engine    *search.Engine
	logger    *slog.Logger
	indexedAt time.Time
}

// Option configures a Notebook.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	lookPath search.LookPathFunc
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLookPath overrides how the search tools are found.
func WithLookPath(fn search.LookPathFunc) Option {
	return func(o *options) {
		o.lookPath = fn
	}
}

// New creates an empty notebook. A nil cfg uses defaults.
func New(cfg *config.Config, opts ...Option) *Notebook {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	ix := index.New(
		index.WithLogger(o.logger),
		index.WithExcludePatterns(cfg.Paths.Exclude),
		index.WithMaxDepth(cfg.Paths.MaxDepth),
	)

	cacheSize := cfg.Cache.Size
	if !cfg.Cache.Enabled {
		cacheSize = 0
	}
	reader := notes.NewReader(ix, notes.WithCacheSize(cacheSize), notes.WithLogger(o.logger))

	engine := search.NewEngine(ix, reader, engineConfig(cfg),
		search.WithLookPath(o.lookPath),
		search.WithLogger(o.logger))

	return &Notebook{
		cfg:    cfg,
		index:  ix,
		reader: reader,
		engine: engine,
		logger: o.logger,
	}
}

func engineConfig(cfg *config.Config) search.Config {
	return search.Config{
		CaseSensitive: cfg.Search.CaseSensitive,
		Timeout:       cfg.Search.Timeout,
		Pool: search.Pool{
			Parallel: cfg.Search.Parallel,
			Workers:  cfg.Search.Workers,
		},
		Scope: search.Scope{
			Exclude:  cfg.Paths.Exclude,
			MaxDepth: cfg.Paths.MaxDepth,
		},
		CircuitFailures: cfg.Search.CircuitFailures,
		CircuitReset:    cfg.Search.CircuitReset,
	}
}

// Config returns the configuration the notebook was built with.
func (n *Notebook) Config() *config.Config {
	return n.cfg
}

// AddSource registers a source directory. It does not scan.
func (n *Notebook) AddSource(dir, name string) (index.Source, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index.RegisterSource(dir, name)
}

// Scan rebuilds the note set from the registered sources using the
// configured extensions. progress may be nil.
func (n *Notebook) Scan(ctx context.Context, progress index.ProgressFunc) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scanLocked(ctx, progress)
}

func (n *Notebook) scanLocked(ctx context.Context, progress index.ProgressFunc) error {
	var opts []index.ScanOption
	if progress != nil {
		opts = append(opts, index.WithProgress(progress))
	}

	start := time.Now()
	if err := n.index.Scan(ctx, n.cfg.Extensions, opts...); err != nil {
		return err
	}
	n.reader.Purge()
	n.indexedAt = time.Now()

	n.logger.Info("notes indexed",
		slog.Int("notes", n.index.Len()),
		slog.Int("sources", len(n.index.Sources())),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// Setup registers every source in order, then scans once. It stops at the
// first source that cannot be registered.
func (n *Notebook) Setup(ctx context.Context, sources []config.SourceConfig, progress index.ProgressFunc) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, src := range sources {
		if _, err := n.index.RegisterSource(config.ExpandPath(src.Path), src.Name); err != nil {
			return err
		}
	}
	return n.scanLocked(ctx, progress)
}

// Search finds literal query matches. maxResults and contextLines fall back
// to the configured defaults when negative.
func (n *Notebook) Search(ctx context.Context, query string, maxResults, contextLines int) ([]search.Result, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if maxResults < 0 {
		maxResults = n.cfg.Search.MaxResults
	}
	if contextLines < 0 {
		contextLines = n.cfg.Search.ContextLines
	}
	return n.engine.Search(ctx, query, maxResults, contextLines)
}

// List returns note ids containing filter, case-insensitively.
func (n *Notebook) List(filter string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index.List(filter)
}

// Read returns a note's full content.
func (n *Notebook) Read(id string) (string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.reader.Read(id)
}

// Info summarizes the index.
func (n *Notebook) Info() index.Info {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index.Info()
}

// Probe returns the detected search tools.
func (n *Notebook) Probe() search.ProbeResult {
	return n.engine.Probe()
}

// Chain returns the search backends in fallback order.
func (n *Notebook) Chain() []string {
	return n.engine.Chain()
}

// IndexedAt returns when the last scan finished, or the zero time.
func (n *Notebook) IndexedAt() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.indexedAt
}
