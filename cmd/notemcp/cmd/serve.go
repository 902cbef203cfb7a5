package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	noteerrors "github.com/Aman-CERP/notemcp/internal/errors"
	"github.com/Aman-CERP/notemcp/internal/logging"
	"github.com/Aman-CERP/notemcp/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var (
		exts string
		name string
	)

	cmd := &cobra.Command{
		Use:   "serve [dirs...]",
		Short: "Start the MCP server over stdio",
		Long: `Register each directory as a note source, index it, and serve the
note_search, note_list, note_read, and note_info tools over stdio.

stdout carries JSON-RPC only. Logs go to ~/.notemcp/logs/server.log;
view them with 'notemcp logs'.

Without arguments the sources listed in the config file are served.`,
		Example: `  notemcp serve ~/notes
  notemcp serve ~/notes ~/work/journal --exts md,org
  notemcp serve --name "Work Notes" ~/work`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, args, exts, name)
		},
	}

	cmd.Flags().StringVar(&exts, "exts", "", "Comma-separated note extensions (default: md,org,txt)")
	cmd.Flags().StringVar(&name, "name", "", "Server name reported to MCP clients (default: Notebook)")

	return cmd
}

func runServe(ctx context.Context, dirs []string, exts, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sources, err := resolve(cfg, dirs, exts)
	if err != nil {
		return err
	}
	if name != "" {
		cfg.Server.Name = name
	}

	level := cfg.Server.LogLevel
	if debugMode || verbosity > 0 || quiet {
		level = logLevel()
	}
	logger, cleanup, err := logging.Setup(logging.ServeConfig(level))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()
	slog.SetDefault(logger)

	nb := newNotebook(cfg, logger)
	srv, err := mcp.NewServer(nb, mcp.WithLogger(logger))
	if err != nil {
		return err
	}

	if err := srv.Setup(ctx, sources, nil); err != nil {
		logger.Error("failed to index sources", noteerrors.LogAttrs(err)...)
		return err
	}
	info := nb.Info()
	logger.Info("notes ready",
		slog.Int("notes", info.TotalNotes),
		slog.Int("sources", len(info.Sources)),
		slog.Any("chain", nb.Chain()))

	err = srv.Serve(ctx, cfg.Server.Transport)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
