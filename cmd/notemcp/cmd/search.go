package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notemcp/internal/mcp"
	"github.com/Aman-CERP/notemcp/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	sources      sourceFlags
	limit        int
	contextLines int
	format       string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search notes for a literal phrase",
		Long: `Search every note for a literal, case-insensitive phrase (set
search.case_sensitive in the config to change that). Each note yields at
most one result: its first match with surrounding lines.

Examples:
  notemcp search "quarterly plan" --dir ~/notes
  notemcp search TODO -d ~/notes -d ~/work -n 20 -C 0
  notemcp search "meeting" --dir ~/notes --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	opts.sources.register(cmd)
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", mcp.DefaultMaxResults, "Maximum number of results")
	cmd.Flags().IntVarP(&opts.contextLines, "context", "C", mcp.DefaultContextLines, "Lines of context around each match")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

// searchJSON is the --format json document.
type searchJSON struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("invalid format %q: use text or json", opts.format)
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query cannot be empty")
	}

	nb, err := openNotebook(ctx, opts.sources.dirs, opts.sources.exts, nil)
	if err != nil {
		return err
	}

	slog.Info("search_started", slog.String("query", query), slog.Int("limit", opts.limit))
	results, err := nb.Search(ctx, query, max(opts.limit, 0), max(opts.contextLines, 0))
	if err != nil {
		return err
	}
	slog.Info("search_complete", slog.Int("results", len(results)))

	w := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(searchJSON{Query: query, Results: results})
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(mcp.FormatSearchResults(query, results), "\n"))
	return err
}
