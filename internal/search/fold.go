package search

import (
	"log/slog"
)

// parsed is the outcome of decoding one output record.
type parsed[T any] struct {
	value T
	err   error
}

// parseWith decodes one record into a parsed outcome.
func parseWith[T any](line []byte, decode func([]byte) (T, error)) parsed[T] {
	v, err := decode(line)
	return parsed[T]{value: v, err: err}
}

// recordFold consumes parsed outcomes for one tool invocation. Successes go
// to accept; failures are counted and logged at debug.
type recordFold[T any] struct {
	backend string
	source  string
	accept  func(T) bool
	logger  *slog.Logger

	parsed  int
	skipped int
}

func newRecordFold[T any](backend, source string, logger *slog.Logger, accept func(T) bool) *recordFold[T] {
	return &recordFold[T]{backend: backend, source: source, logger: logger, accept: accept}
}

// step folds one outcome. It returns false once accept asks to stop.
func (f *recordFold[T]) step(p parsed[T]) bool {
	if p.err != nil {
		f.skipped++
		f.logger.Debug("skipping unparseable record",
			slog.String("backend", f.backend),
			slog.String("source", f.source),
			slog.String("error", p.err.Error()))
		return true
	}
	f.parsed++
	return f.accept(p.value)
}

// done logs the invocation's totals.
func (f *recordFold[T]) done() {
	if f.skipped > 0 {
		f.logger.Debug("records skipped",
			slog.String("backend", f.backend),
			slog.String("source", f.source),
			slog.Int("parsed", f.parsed),
			slog.Int("skipped", f.skipped))
	}
}
