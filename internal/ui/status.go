package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// StatusInfo describes the index and the search backends.
type StatusInfo struct {
	ServerName  string         `json:"server_name"`
	TotalNotes  int            `json:"total_notes"`
	Extensions  []string       `json:"extensions"`
	Sources     []SourceStatus `json:"sources"`
	Capability  string         `json:"capability"`
	Chain       []string       `json:"chain"`
	RipgrepPath string         `json:"ripgrep_path,omitempty"`
	GrepPath    string         `json:"grep_path,omitempty"`
	IndexedAt   time.Time      `json:"indexed_at"`
}

// SourceStatus is one registered source.
type SourceStatus struct {
	Name  string `json:"name"`
	Root  string `json:"root"`
	Notes int    `json:"notes"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to the terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status: "+info.ServerName))

	_, _ = fmt.Fprintf(r.out, "  Notes:      %d\n", info.TotalNotes)
	_, _ = fmt.Fprintf(r.out, "  Extensions: %s\n", strings.Join(info.Extensions, ", "))
	if !info.IndexedAt.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Indexed:    %s\n", formatTime(info.IndexedAt))
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Sources:")
	if len(info.Sources) == 0 {
		_, _ = fmt.Fprintf(r.out, "    %s\n", r.styles.Dim.Render("(none)"))
	}
	for _, s := range info.Sources {
		_, _ = fmt.Fprintf(r.out, "    %-16s %5d  %s\n", s.Name, s.Notes, r.styles.Label.Render(s.Root))
	}
	_, _ = fmt.Fprintln(r.out)

	return r.RenderBackends(info)
}

// RenderBackends displays the probed search capability and fallback chain.
func (r *StatusRenderer) RenderBackends(info StatusInfo) error {
	_, _ = fmt.Fprintln(r.out, "  Search:")
	_, _ = fmt.Fprintf(r.out, "    Capability: %s\n", r.renderCapability(info.Capability))
	_, _ = fmt.Fprintf(r.out, "    Chain:      %s\n", strings.Join(info.Chain, " → "))
	_, _ = fmt.Fprintf(r.out, "    rg:         %s\n", r.renderPath(info.RipgrepPath))
	_, _ = fmt.Fprintf(r.out, "    grep:       %s\n", r.renderPath(info.GrepPath))
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) renderCapability(c string) string {
	switch c {
	case "fast":
		return r.styles.Success.Render(c)
	case "basic":
		return r.styles.Warning.Render(c)
	default:
		return r.styles.Error.Render(c)
	}
}

func (r *StatusRenderer) renderPath(path string) string {
	if path == "" {
		return r.styles.Dim.Render("not found")
	}
	return path
}

// formatTime formats a time relative to now.
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
