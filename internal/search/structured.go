package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Aman-CERP/notemcp/internal/index"
)

// Structured searches with ripgrep's JSON output, one invocation per source.
type Structured struct {
	runner *toolRunner
	scope  Scope
	pool   Pool
	logger *slog.Logger
}

// NewStructured creates the ripgrep backend for the executable at path.
func NewStructured(path string, cfg Config, logger *slog.Logger) *Structured {
	return &Structured{
		runner: &toolRunner{backend: BackendRipgrep, path: path, timeout: cfg.Timeout, logger: logger},
		scope:  cfg.Scope,
		pool:   cfg.Pool,
		logger: logger,
	}
}

// Name implements Backend.
func (b *Structured) Name() string { return BackendRipgrep }

// Run implements Backend.
func (b *Structured) Run(ctx context.Context, corpus Corpus, req Request) ([]Result, error) {
	exts := corpus.Extensions()
	if len(exts) == 0 {
		return nil, nil
	}
	return runSources(ctx, corpus.Sources(), req.MaxResults, b.pool, func(ctx context.Context, src index.Source, limit int) ([]Result, error) {
		return b.searchSource(ctx, corpus, src, exts, req, limit)
	})
}

// args builds the ripgrep command line for one source. Files in links are
// searched after the traversal of root.
func (b *Structured) args(root string, links, exts []string, req Request) []string {
	args := []string{
		"--json",
		"--no-config",
		"--fixed-strings",
		"--sort", "path",
		"--max-count", "1",
		"--context", strconv.Itoa(req.ContextLines),
		"--color", "never",
		"--hidden",
		"--no-ignore",
		"--no-messages",
	}
	if !req.CaseSensitive {
		args = append(args, "--ignore-case")
	}
	if b.scope.MaxDepth > 0 {
		args = append(args, "--max-depth", strconv.Itoa(b.scope.MaxDepth))
	}
	for _, ext := range exts {
		args = append(args, "--iglob", "*."+ext)
	}
	for _, pattern := range b.scope.Exclude {
		args = append(args, "--glob", "!"+pattern)
	}
	args = append(args, "--", req.Query, root)
	return append(args, links...)
}

func (b *Structured) searchSource(ctx context.Context, corpus Corpus, src index.Source, exts []string, req Request, limit int) ([]Result, error) {
	sink := newResultSink(corpus, src, limit)
	asm := &rgAssembler{emit: sink.emit}
	fold := newRecordFold(BackendRipgrep, src.Name, b.logger, asm.add)

	args := b.args(src.Root, linkedNotes(corpus, src.Name, ""), exts, req)
	out, err := b.runner.run(ctx, args, func(line []byte) bool {
		return fold.step(parseWith(line, decodeRgRecord))
	})
	fold.done()
	if err != nil {
		return nil, err
	}
	if out.skipped() {
		b.logger.Debug("skipping source", slog.String("backend", BackendRipgrep),
			slog.String("source", src.Name), slog.String("outcome", out.String()))
		return nil, nil
	}
	if out != outcomeStopped {
		asm.flush()
	}
	return capResults(sink.results, limit), nil
}

// rgRecord is one line of `rg --json` output.
type rgRecord struct {
	Type string `json:"type"`
	Data struct {
		Path       rgText `json:"path"`
		Lines      rgText `json:"lines"`
		LineNumber int    `json:"line_number"`
	} `json:"data"`
}

// rgText holds either UTF-8 text or base64 bytes.
type rgText struct {
	Text  *string `json:"text"`
	Bytes *string `json:"bytes"`
}

func decodeRgRecord(line []byte) (rgRecord, error) {
	var rec rgRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return rec, err
	}

	switch rec.Type {
	case "begin", "end":
		if rec.Data.Path.Text == nil {
			return rec, fmt.Errorf("%s record without a UTF-8 path", rec.Type)
		}
	case "match", "context":
		if rec.Data.Path.Text == nil {
			return rec, fmt.Errorf("%s record without a UTF-8 path", rec.Type)
		}
		if rec.Data.Lines.Text == nil {
			return rec, fmt.Errorf("%s record without UTF-8 lines", rec.Type)
		}
		if rec.Data.LineNumber <= 0 {
			return rec, fmt.Errorf("%s record without a line number", rec.Type)
		}
	}
	return rec, nil
}

// rgAssembler folds the begin/context/match/end records of each file into
// one result: the match's line number plus the surrounding context text.
type rgAssembler struct {
	emit func(path string, lineNumber int, text string) bool

	path       string
	open       bool
	lineNumber int
	text       strings.Builder
}

func (a *rgAssembler) add(rec rgRecord) bool {
	switch rec.Type {
	case "begin":
		if !a.flush() {
			return false
		}
		a.start(*rec.Data.Path.Text)
	case "context", "match":
		path := *rec.Data.Path.Text
		if !a.open || path != a.path {
			if !a.flush() {
				return false
			}
			a.start(path)
		}
		if rec.Type == "match" && a.lineNumber == 0 {
			a.lineNumber = rec.Data.LineNumber
		}
		a.text.WriteString(*rec.Data.Lines.Text)
	case "end":
		return a.flush()
	}
	return true
}

func (a *rgAssembler) start(path string) {
	a.path = path
	a.open = true
	a.lineNumber = 0
	a.text.Reset()
}

// flush emits the open file if it had a match. It returns false when the
// consumer wants no more results.
func (a *rgAssembler) flush() bool {
	if !a.open {
		return true
	}
	a.open = false
	if a.lineNumber == 0 {
		return true
	}
	return a.emit(a.path, a.lineNumber, a.text.String())
}
