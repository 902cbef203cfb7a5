package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/internal/noteid"
	"github.com/Aman-CERP/notemcp/internal/scanner"
)

// Pool controls per-source concurrency for the external backends.
type Pool struct {
	Parallel bool
	Workers  int
}

// Scope narrows external tool traversal to what the index would scan.
type Scope struct {
	Exclude  []string
	MaxDepth int
}

// sourceFunc searches one source, returning at most limit results.
type sourceFunc func(ctx context.Context, src index.Source, limit int) ([]Result, error)

// runSources calls fn for each source and concatenates results in source
// order, never exceeding limit.
//
// Sequentially, each call is bounded by the remaining capacity and no
// further source is started once the cap is reached. In parallel, every
// source is bounded by limit and the buffered results are joined in order.
func runSources(ctx context.Context, sources []index.Source, limit int, pool Pool, fn sourceFunc) ([]Result, error) {
	if limit <= 0 || len(sources) == 0 {
		return nil, nil
	}

	if !pool.Parallel || len(sources) == 1 {
		var out []Result
		for _, src := range sources {
			if len(out) >= limit || ctx.Err() != nil {
				break
			}
			res, err := fn(ctx, src, limit-len(out))
			if err != nil {
				return nil, err
			}
			out = append(out, res...)
		}
		return capResults(out, limit), nil
	}

	buckets := make([][]Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	if pool.Workers > 0 {
		g.SetLimit(pool.Workers)
	}
	for i, src := range sources {
		g.Go(func() error {
			res, err := fn(gctx, src, limit)
			if err != nil {
				return err
			}
			buckets[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Result
	for _, b := range buckets {
		if len(out) >= limit {
			break
		}
		out = append(out, b...)
	}
	return capResults(out, limit), nil
}

func capResults(results []Result, limit int) []Result {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

// linkedNotes returns the paths of a source's notes reached through file
// symlinks, restricted to ext when it is non-empty. Neither external tool
// follows symlinks while traversing, so these are passed by name.
func linkedNotes(corpus Corpus, source, ext string) []string {
	var paths []string
	for _, n := range corpus.Notes() {
		if n.Source != source || !n.Link {
			continue
		}
		if ext != "" && scanner.Extension(n.Path) != ext {
			continue
		}
		paths = append(paths, n.Path)
	}
	return paths
}

// resultSink gathers one source's results from tool output, keeping only
// paths that map to indexed notes.
type resultSink struct {
	corpus  Corpus
	src     index.Source
	limit   int
	seen    map[string]struct{}
	results []Result
}

func newResultSink(corpus Corpus, src index.Source, limit int) *resultSink {
	return &resultSink{corpus: corpus, src: src, limit: limit, seen: make(map[string]struct{})}
}

// noteID maps a tool path to an indexed identifier.
func (s *resultSink) noteID(path string) (string, bool) {
	id, ok := noteid.FromPath(s.src.Name, s.src.Root, path)
	if !ok {
		return "", false
	}
	if _, err := s.corpus.Lookup(id); err != nil {
		return "", false
	}
	return id, true
}

// known reports whether path is an indexed note of the source.
func (s *resultSink) known(path string) bool {
	_, ok := s.noteID(path)
	return ok
}

// emit records a result. It returns false once the limit is reached.
func (s *resultSink) emit(path string, lineNumber int, text string) bool {
	id, ok := s.noteID(path)
	if !ok {
		return true
	}
	if _, dup := s.seen[id]; dup {
		return true
	}
	s.seen[id] = struct{}{}
	s.results = append(s.results, Result{NoteID: id, LineNumber: lineNumber, Context: text})
	return len(s.results) < s.limit
}
