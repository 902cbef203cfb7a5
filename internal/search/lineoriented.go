package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/Aman-CERP/notemcp/internal/index"
)

// LineOriented searches with grep, one invocation per (source, extension)
// pair, parsing its interleaved header and context lines.
type LineOriented struct {
	runner *toolRunner
	scope  Scope
	pool   Pool
	logger *slog.Logger
}

// NewLineOriented creates the grep backend for the executable at path.
func NewLineOriented(path string, cfg Config, logger *slog.Logger) *LineOriented {
	return &LineOriented{
		runner: &toolRunner{backend: BackendGrep, path: path, timeout: cfg.Timeout, logger: logger},
		scope:  cfg.Scope,
		pool:   cfg.Pool,
		logger: logger,
	}
}

// Name implements Backend.
func (b *LineOriented) Name() string { return BackendGrep }

// Run implements Backend.
func (b *LineOriented) Run(ctx context.Context, corpus Corpus, req Request) ([]Result, error) {
	exts := corpus.Extensions()
	if len(exts) == 0 {
		return nil, nil
	}
	return runSources(ctx, corpus.Sources(), req.MaxResults, b.pool, func(ctx context.Context, src index.Source, limit int) ([]Result, error) {
		var out []Result
		for _, ext := range exts {
			if len(out) >= limit || ctx.Err() != nil {
				break
			}
			res, err := b.searchPair(ctx, corpus, src, ext, req, limit-len(out))
			if err != nil {
				return nil, err
			}
			out = append(out, res...)
		}
		return out, nil
	})
}

// args builds the grep command line for one (source, extension) pair. Files
// in links are searched after the traversal of root.
func (b *LineOriented) args(root, ext string, links []string, req Request) []string {
	args := []string{
		"-r", "-n", "-H", "-I", "-F",
		"--color=never",
		"--max-count=1",
	}
	if req.ContextLines > 0 {
		n := strconv.Itoa(req.ContextLines)
		args = append(args, "-A", n, "-B", n)
	}
	if !req.CaseSensitive {
		args = append(args, "-i")
	}
	args = append(args, "--include=*."+foldGlob(ext))
	for _, dir := range excludedDirNames(b.scope.Exclude) {
		args = append(args, "--exclude-dir="+dir)
	}
	args = append(args, "--", req.Query, root)
	return append(args, links...)
}

// foldGlob turns ext into a glob matching it in any letter case, so "md"
// becomes "[mM][dD]". Other characters are kept, with glob metacharacters
// escaped.
func foldGlob(ext string) string {
	var sb strings.Builder
	for _, r := range ext {
		upper, lower := unicode.ToUpper(r), unicode.ToLower(r)
		switch {
		case upper != lower:
			sb.WriteByte('[')
			sb.WriteRune(lower)
			sb.WriteRune(upper)
			sb.WriteByte(']')
		case strings.ContainsRune(`*?[]\`, r):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// excludedDirNames extracts NAME from "**/NAME/**" patterns, the only form
// grep's --exclude-dir can express.
func excludedDirNames(patterns []string) []string {
	var names []string
	for _, p := range patterns {
		inner, ok := strings.CutPrefix(p, "**/")
		if !ok {
			continue
		}
		inner, ok = strings.CutSuffix(inner, "/**")
		if !ok || inner == "" || strings.ContainsAny(inner, "/*?[{") {
			continue
		}
		names = append(names, inner)
	}
	return names
}

func (b *LineOriented) searchPair(ctx context.Context, corpus Corpus, src index.Source, ext string, req Request, limit int) ([]Result, error) {
	sink := newResultSink(corpus, src, limit)
	asm := &grepAssembler{ext: ext, known: sink.known, emit: sink.emit}
	fold := newRecordFold(BackendGrep, src.Name, b.logger, asm.add)

	args := b.args(src.Root, ext, linkedNotes(corpus, src.Name, ext), req)
	out, err := b.runner.run(ctx, args, func(line []byte) bool {
		return fold.step(parseWith(line, asm.classify))
	})
	fold.done()
	if err != nil {
		return nil, err
	}
	if out.skipped() {
		b.logger.Debug("skipping source/extension pair", slog.String("backend", BackendGrep),
			slog.String("source", src.Name), slog.String("ext", ext), slog.String("outcome", out.String()))
		return nil, nil
	}
	if out != outcomeStopped {
		asm.flush()
	}
	return capResults(sink.results, limit), nil
}

// grepLineKind tags a line of grep output.
type grepLineKind int

const (
	grepHeader grepLineKind = iota
	grepSeparator
	grepContext
)

// grepLine is one classified line of grep output.
type grepLine struct {
	kind       grepLineKind
	path       string
	lineNumber int
	text       string
}

// grepAssembler groups grep output into results. A result starts at a
// header line "path:N:content" and collects context lines until a "--"
// separator, the next header, or the end of output. Context lines that
// precede a header belong to the result it starts.
type grepAssembler struct {
	ext   string
	known func(path string) bool // nil accepts every path
	emit  func(path string, lineNumber int, text string) bool

	open       bool
	path       string
	lineNumber int
	lines      []string

	before []string
}

// classify decodes one output line. Header lines fail when their line
// number is malformed; any other line is separator or context.
func (a *grepAssembler) classify(raw []byte) (grepLine, error) {
	line := string(raw)
	if line == "--" {
		return grepLine{kind: grepSeparator}, nil
	}

	path, n, text, delim, err := splitPrefixed(line, a.ext, a.known)
	header := err == nil && delim == ':' && a.known != nil && a.known(path)
	if a.open && !header {
		if body, ok := stripContextPrefix(line, a.path); ok {
			return grepLine{kind: grepContext, text: body}, nil
		}
	}

	switch {
	case err != nil:
		return grepLine{}, err
	case delim == ':':
		return grepLine{kind: grepHeader, path: path, lineNumber: n, text: text}, nil
	default:
		return grepLine{kind: grepContext, path: path, text: line}, nil
	}
}

// prefix is one way to read a line as "<path>.<ext>" followed by ":N:" (a
// header) or "-N-" (a context line).
type prefix struct {
	path  string
	n     int
	text  string
	delim byte
}

// prefixes returns every reading of line, earliest first. malformed reports
// a "<path>.<ext>:" with no valid line number after it.
func prefixes(line, ext string) (found []prefix, malformed bool) {
	suffix := "." + ext
	for i := 0; i+len(suffix) <= len(line); i++ {
		if line[i] != '.' || !strings.EqualFold(line[i:i+len(suffix)], suffix) {
			continue
		}
		end := i + len(suffix)
		if end >= len(line) || (line[end] != ':' && line[end] != '-') {
			continue
		}
		d := line[end]
		rest := line[end+1:]
		digits := 0
		for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
			digits++
		}
		if digits > 0 && digits < len(rest) && rest[digits] == d {
			num, convErr := strconv.Atoi(rest[:digits])
			if convErr == nil && num > 0 {
				found = append(found, prefix{path: line[:end], n: num, text: rest[digits+1:], delim: d})
				continue
			}
		}
		if d == ':' {
			malformed = true
		}
	}
	return found, malformed
}

// splitPrefixed picks the reading of line to use. A header of a known path
// wins, then a context line of a known path, then the earliest header, then
// the earliest context line. delim is 0 when no reading exists. The
// extension is matched case-insensitively; a nil known accepts every path.
func splitPrefixed(line, ext string, known func(string) bool) (path string, n int, text string, delim byte, err error) {
	found, malformed := prefixes(line, ext)
	if len(found) == 0 {
		if malformed {
			return "", 0, "", 0, fmt.Errorf("header line with malformed line number: %q", truncate(line, 80))
		}
		return "", 0, "", 0, nil
	}

	pick := func(d byte, check bool) (prefix, bool) {
		for _, p := range found {
			if p.delim == d && (!check || known == nil || known(p.path)) {
				return p, true
			}
		}
		return prefix{}, false
	}
	for _, try := range []struct {
		delim byte
		check bool
	}{{':', true}, {'-', true}, {':', false}, {'-', false}} {
		if p, ok := pick(try.delim, try.check); ok {
			return p.path, p.n, p.text, p.delim, nil
		}
	}
	return "", 0, "", 0, nil
}

// stripContextPrefix removes "path-N-" from a context line.
func stripContextPrefix(line, path string) (string, bool) {
	rest, ok := strings.CutPrefix(line, path+"-")
	if !ok {
		return "", false
	}
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits >= len(rest) || rest[digits] != '-' {
		return "", false
	}
	return rest[digits+1:], true
}

func (a *grepAssembler) add(l grepLine) bool {
	switch l.kind {
	case grepSeparator:
		a.before = a.before[:0]
		return a.flush()
	case grepHeader:
		if !a.flush() {
			return false
		}
		a.open = true
		a.path = l.path
		a.lineNumber = l.lineNumber
		a.lines = a.lines[:0]
		for _, raw := range a.before {
			if text, ok := stripContextPrefix(raw, l.path); ok {
				a.lines = append(a.lines, text)
			}
		}
		a.before = a.before[:0]
		a.lines = append(a.lines, l.text)
	case grepContext:
		// A context line of another file ends the open result.
		if a.open && l.path != "" && l.path != a.path {
			if !a.flush() {
				return false
			}
		}
		if a.open {
			a.lines = append(a.lines, l.text)
		} else {
			a.before = append(a.before, l.text)
		}
	}
	return true
}

// flush emits the open result. It returns false when the consumer wants no
// more results.
func (a *grepAssembler) flush() bool {
	if !a.open {
		return true
	}
	a.open = false
	var sb strings.Builder
	for _, line := range a.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return a.emit(a.path, a.lineNumber, sb.String())
}
