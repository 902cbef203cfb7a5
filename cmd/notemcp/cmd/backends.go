package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notemcp/internal/ui"
)

func newBackendsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "backends",
		Short: "Show detected search tools and the fallback chain",
		Long: `Show which external search tool notemcp found on PATH and the order
in which search backends are tried: ripgrep, then grep, then the
in-memory scan, which is always available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			nb := newNotebook(cfg, slog.Default())
			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor())
			if jsonOutput {
				return renderer.RenderJSON(statusInfo(nb))
			}
			return renderer.RenderBackends(statusInfo(nb))
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
