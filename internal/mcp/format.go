package mcp

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/internal/search"
)

// FormatSearchResults formats search results as markdown, one fenced
// context block per match.
func FormatSearchResults(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for \"%s\"", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search Results for \"%s\"\n\n", query)
	fmt.Fprintf(&sb, "Found %d result", len(results))
	if len(results) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, r := range results {
		fmt.Fprintf(&sb, "### %d. %s (line %d)\n\n", i+1, r.NoteID, r.LineNumber)
		sb.WriteString("```\n")
		sb.WriteString(r.Context)
		if !strings.HasSuffix(r.Context, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n")
	}

	return sb.String()
}

// FormatInfo renders the index summary served as notes://info.
func FormatInfo(info index.Info) string {
	lines := []string{
		fmt.Sprintf("total notes: %d", info.TotalNotes),
		fmt.Sprintf("extensions: %s", strings.Join(info.Extensions, ", ")),
		"sources:",
	}
	for _, s := range info.Sources {
		lines = append(lines, fmt.Sprintf("  - %s: %d notes (%s)", s.Name, s.NoteCount, s.Root))
	}
	return strings.Join(lines, "\n")
}
