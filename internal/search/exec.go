package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	noteerrors "github.com/Aman-CERP/notemcp/internal/errors"
)

// DefaultTimeout bounds one external tool invocation.
const DefaultTimeout = 30 * time.Second

// outcome classifies how an invocation ended.
type outcome int

const (
	outcomeMatched   outcome = iota // exit 0
	outcomeNoMatches                // exit 1
	outcomeStopped                  // consumer stopped reading
	outcomeTimeout                  // per-invocation timeout expired
	outcomeFailed                   // any other exit status
)

func (o outcome) String() string {
	switch o {
	case outcomeMatched:
		return "matched"
	case outcomeNoMatches:
		return "no_matches"
	case outcomeStopped:
		return "stopped"
	case outcomeTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

// skipped reports whether the invocation's source should be skipped.
func (o outcome) skipped() bool {
	return o == outcomeTimeout || o == outcomeFailed
}

// toolRunner runs one external search tool and streams its stdout by line.
type toolRunner struct {
	backend string
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

// run invokes the tool with args and calls onLine for each stdout line
// (without its trailing "\n"; a "\r" before it is content). onLine returns false to stop early, which
// kills the process.
//
// A returned error is always a BackendExecution error: the tool could not be
// started or its output could not be read. Exit statuses are reported
// through the outcome.
func (r *toolRunner) run(ctx context.Context, args []string, onLine func(line []byte) bool) (outcome, error) {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.path, args...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return outcomeFailed, noteerrors.BackendExecution(r.backend, err)
	}
	if err := cmd.Start(); err != nil {
		return outcomeFailed, noteerrors.BackendExecution(r.backend, err)
	}

	stopped := false
	var readErr error
	reader := bufio.NewReaderSize(stdout, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 && !stopped {
			if !onLine(bytes.TrimSuffix(line, []byte("\n"))) {
				stopped = true
				cancel()
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && runCtx.Err() == nil {
				readErr = err
			}
			break
		}
	}

	waitErr := cmd.Wait()

	switch {
	case stopped:
		return outcomeStopped, nil
	case ctx.Err() != nil:
		return outcomeStopped, nil
	case runCtx.Err() != nil:
		r.logger.Debug("search tool timed out",
			slog.String("backend", r.backend),
			slog.Duration("timeout", timeout))
		return outcomeTimeout, nil
	case readErr != nil:
		return outcomeFailed, noteerrors.BackendExecution(r.backend, fmt.Errorf("read output: %w", readErr))
	}

	if waitErr == nil {
		return outcomeMatched, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return outcomeFailed, noteerrors.BackendExecution(r.backend, waitErr)
	}
	if exitErr.ExitCode() == 1 {
		return outcomeNoMatches, nil
	}

	r.logger.Debug("search tool exited abnormally",
		slog.String("backend", r.backend),
		slog.Int("exit_code", exitErr.ExitCode()),
		slog.String("stderr", truncate(stderr.String(), 512)))
	return outcomeFailed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
