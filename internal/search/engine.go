package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	noteerrors "github.com/Aman-CERP/notemcp/internal/errors"
)

// Config configures the search engine.
type Config struct {
	// CaseSensitive applies to every backend.
	CaseSensitive bool
	// Timeout bounds one external tool invocation (default 30s).
	Timeout time.Duration
	// Pool controls per-source concurrency.
	Pool Pool
	// Scope mirrors the index's exclude patterns and depth cap.
	Scope Scope
	// CircuitFailures and CircuitReset configure the per-backend breaker.
	CircuitFailures int
	CircuitReset    time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		Pool:            Pool{Workers: 4},
		CircuitFailures: 3,
		CircuitReset:    time.Minute,
	}
}

// Engine runs searches over a corpus through a fixed fallback chain chosen
// at construction: ripgrep then memory, grep then memory, or memory alone.
// The engine holds no locks; callers serialize index mutation against
// searches.
type Engine struct {
	corpus   Corpus
	config   Config
	probe    ProbeResult
	primary  Backend
	breaker  *noteerrors.CircuitBreaker
	memory   *InMemory
	logger   *slog.Logger
	lookPath LookPathFunc
}

// EngineOption configures the search engine.
type EngineOption func(*Engine)

// WithLookPath overrides how external tools are found (tests).
func WithLookPath(fn LookPathFunc) EngineOption {
	return func(e *Engine) {
		e.lookPath = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine probes the host for search tools and builds the fallback chain.
// loader feeds the in-memory scan; nil reads files directly.
func NewEngine(corpus Corpus, loader ContentLoader, config Config, opts ...EngineOption) *Engine {
	e := &Engine{
		corpus: corpus,
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.probe = Probe(e.lookPath)
	e.memory = NewInMemory(loader, e.logger)

	switch e.probe.Capability {
	case CapabilityFast:
		e.primary = NewStructured(e.probe.RipgrepPath, config, e.logger)
	case CapabilityBasic:
		e.primary = NewLineOriented(e.probe.GrepPath, config, e.logger)
	}
	if e.primary != nil {
		e.breaker = noteerrors.NewCircuitBreaker(e.primary.Name(),
			noteerrors.WithMaxFailures(config.CircuitFailures),
			noteerrors.WithResetTimeout(config.CircuitReset))
	}

	e.logger.Info("search backends probed",
		slog.String("capability", e.probe.Capability.String()),
		slog.String("chain", strings.Join(e.Chain(), " -> ")))
	return e
}

// Capability returns the probed capability.
func (e *Engine) Capability() Capability {
	return e.probe.Capability
}

// Probe returns the full probe result.
func (e *Engine) Probe() ProbeResult {
	return e.probe
}

// Chain returns the backend names in fallback order.
func (e *Engine) Chain() []string {
	if e.primary == nil {
		return []string{BackendMemory}
	}
	return []string{e.primary.Name(), BackendMemory}
}

// Search returns at most maxResults matches for the literal query, in
// source order then file order. It degrades rather than fails: when the
// preferred backend cannot run, the whole call is answered by the in-memory
// scan. The only error returned is ctx's, alongside any results gathered.
func (e *Engine) Search(ctx context.Context, query string, maxResults, contextLines int) ([]Result, error) {
	if maxResults <= 0 || query == "" {
		return []Result{}, nil
	}
	req := Request{
		Query:         query,
		MaxResults:    maxResults,
		ContextLines:  max(contextLines, 0),
		CaseSensitive: e.config.CaseSensitive,
	}

	start := time.Now()
	backend, results := e.run(ctx, req)
	if results == nil {
		results = []Result{}
	}

	e.logger.Debug("search complete",
		slog.String("backend", backend),
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(start)))
	return capResults(results, maxResults), ctx.Err()
}

func (e *Engine) run(ctx context.Context, req Request) (string, []Result) {
	if e.primary != nil {
		var results []Result
		err := e.breaker.Execute(func() error {
			var runErr error
			results, runErr = e.primary.Run(ctx, e.corpus, req)
			return runErr
		})
		if err == nil {
			return e.primary.Name(), results
		}

		switch {
		case errors.Is(err, noteerrors.ErrCircuitOpen):
			e.logger.Debug("circuit open, using in-memory scan", slog.String("backend", e.primary.Name()))
		default:
			e.logger.Warn("search backend failed, falling back to in-memory scan",
				append(noteerrors.LogAttrs(err), slog.String("backend", e.primary.Name()))...)
		}
	}

	results, _ := e.memory.Run(ctx, e.corpus, req)
	return BackendMemory, results
}
