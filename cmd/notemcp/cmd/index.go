package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var (
		noTUI bool
		exts  string
	)

	cmd := &cobra.Command{
		Use:   "index [dirs...]",
		Short: "Index note directories and show a summary",
		Long: `Register and scan note directories with progress display, then print
what was indexed and which search backends would be used.

Useful for checking a configuration before pointing an MCP client at
'notemcp serve'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIndex(ctx, cmd, args, exts, noTUI)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable TUI mode, use plain text output")
	cmd.Flags().StringVar(&exts, "exts", "", "Comma-separated note extensions (default: md,org,txt)")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, dirs []string, exts string, noTUI bool) error {
	out := cmd.OutOrStdout()
	noColor := ui.DetectNoColor()

	renderer := ui.NewRenderer(ui.NewConfig(out, ui.WithForcePlain(noTUI), ui.WithNoColor(noColor)))
	if err := renderer.Start(ctx); err != nil {
		return err
	}
	stopped := false
	stop := func() {
		if !stopped {
			stopped = true
			_ = renderer.Stop()
		}
	}
	defer stop()

	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageScanning, Message: "Scanning sources..."})

	start := time.Now()
	nb, err := openNotebook(ctx, dirs, exts, func(p index.Progress) {
		renderer.UpdateProgress(ui.ProgressEvent{
			Stage:   ui.StageIndexing,
			Current: p.Indexed,
			Total:   p.Total,
			NoteID:  p.NoteID,
		})
	})
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		return err
	}

	info := nb.Info()
	renderer.Complete(ui.CompletionStats{
		Sources:    len(info.Sources),
		Notes:      info.TotalNotes,
		Extensions: info.Extensions,
		Duration:   time.Since(start),
	})
	stop()

	return ui.NewStatusRenderer(out, noColor).Render(statusInfo(nb))
}
