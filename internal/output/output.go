// Package output formats short status messages for CLI commands.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Writer prints one-line status messages, optionally colored.
type Writer struct {
	out     io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
}

// New creates a Writer without color.
func New(out io.Writer) *Writer {
	return NewWriter(out, true)
}

// NewWriter creates a Writer. noColor disables all styling.
func NewWriter(out io.Writer, noColor bool) *Writer {
	w := &Writer{
		out:     out,
		success: lipgloss.NewStyle(),
		warning: lipgloss.NewStyle(),
		failure: lipgloss.NewStyle(),
		dim:     lipgloss.NewStyle(),
	}
	if !noColor {
		w.success = w.success.Foreground(lipgloss.Color("2")).Bold(true)
		w.warning = w.warning.Foreground(lipgloss.Color("3")).Bold(true)
		w.failure = w.failure.Foreground(lipgloss.Color("1")).Bold(true)
		w.dim = w.dim.Foreground(lipgloss.Color("8"))
	}
	return w
}

// Status prints msg after a label. An empty label indents the message.
// Write errors are ignored for console output.
func (w *Writer) Status(label, msg string) {
	if label == "" {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
		return
	}
	_, _ = fmt.Fprintf(w.out, "%s %s\n", label, msg)
}

// Statusf prints a formatted status message.
func (w *Writer) Statusf(label, format string, args ...any) {
	w.Status(label, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.failure.Render("✗"), msg)
}

// Hint prints an indented, dimmed suggestion.
func (w *Writer) Hint(msg string) {
	w.Status("", w.dim.Render(msg))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
