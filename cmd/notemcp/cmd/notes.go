package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notemcp/internal/ui"
)

func newListCmd() *cobra.Command {
	var sources sourceFlags

	cmd := &cobra.Command{
		Use:   "list [filter]",
		Short: "List note ids",
		Long: `List the ids of all indexed notes in index order. With a filter, only
ids containing it (case-insensitive) are printed.`,
		Example: `  notemcp list --dir ~/notes
  notemcp list daily --dir ~/notes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := openNotebook(cmd.Context(), sources.dirs, sources.exts, nil)
			if err != nil {
				return err
			}
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}
			ids := nb.List(filter)
			if len(ids) == 0 {
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ids, "\n"))
			return err
		},
	}

	sources.register(cmd)
	return cmd
}

func newReadCmd() *cobra.Command {
	var sources sourceFlags

	cmd := &cobra.Command{
		Use:     "read <note-id>",
		Short:   "Print a note's content",
		Example: `  notemcp read notes:projects/plan.md --dir ~/notes`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := openNotebook(cmd.Context(), sources.dirs, sources.exts, nil)
			if err != nil {
				return err
			}
			content, err := nb.Read(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}

	sources.register(cmd)
	return cmd
}

func newInfoCmd() *cobra.Command {
	var (
		sources    sourceFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Summarize indexed notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			nb, err := openNotebook(cmd.Context(), sources.dirs, sources.exts, nil)
			if err != nil {
				return err
			}
			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor())
			if jsonOutput {
				return renderer.RenderJSON(statusInfo(nb))
			}
			return renderer.Render(statusInfo(nb))
		},
	}

	sources.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
