// Package cmd provides the CLI commands for notemcp.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notemcp/internal/config"
	noteerrors "github.com/Aman-CERP/notemcp/internal/errors"
	"github.com/Aman-CERP/notemcp/internal/logging"
	"github.com/Aman-CERP/notemcp/internal/profiling"
	"github.com/Aman-CERP/notemcp/internal/search"
	"github.com/Aman-CERP/notemcp/pkg/version"
)

// Global flags
var (
	verbosity      int
	quiet          bool
	debugMode      bool
	configPath     string
	loggingCleanup func()
)

// Profiling flags
var (
	profileCfg profiling.Config
	profiler   *profiling.Session
)

// lookPath finds the external search tools. Tests replace it.
var lookPath search.LookPathFunc

// NewRootCmd creates the root command for the notemcp CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notemcp",
		Short: "Search and read plain-text notes over MCP",
		Long: `notemcp indexes directories of plain-text notes (Markdown, Org, text)
and exposes literal search, listing, and reading to AI assistants over the
Model Context Protocol.

Search uses ripgrep when installed, then grep, and always falls back to an
in-memory scan.

Run 'notemcp serve ~/notes' to start the MCP server over stdio.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("notemcp version {{.Version}}\n")

	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.notemcp/logs/")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a configuration file")

	cmd.PersistentFlags().StringVar(&profileCfg.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileCfg.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileCfg.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newBackendsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// printError writes structured errors with their hint and code, others as is.
func printError(w io.Writer, err error) {
	if noteerrors.GetCode(err) != "" {
		_, _ = fmt.Fprint(w, noteerrors.FormatForCLI(err))
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}

// logLevel maps the global flags to a level name. -q wins over -v.
func logLevel() string {
	switch {
	case debugMode:
		return "debug"
	case quiet:
		return "error"
	case verbosity >= 2:
		return "debug"
	case verbosity == 1:
		return "info"
	default:
		return "warn"
	}
}

// startProfilingAndLogging starts any requested profiles and installs the
// default logger for interactive commands. The serve command keeps stdout and
// stderr clean and sets up its own file logger.
func startProfilingAndLogging(cmd *cobra.Command, _ []string) error {
	if profileCfg.Enabled() {
		session, err := profiling.Start(profileCfg)
		if err != nil {
			return err
		}
		profiler = session
	}

	if cmd.Name() == "serve" {
		return nil
	}

	logCfg := logging.StderrConfig(logLevel())
	logCfg.Stderr = cmd.ErrOrStderr()
	if debugMode {
		logCfg.FilePath = logging.DefaultLogPath()
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	if debugMode {
		slog.Debug("Debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	}
	return nil
}

// stopProfilingAndLogging flushes profiles and closes the log file.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	err := profiler.Stop()
	profiler = nil

	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// loadConfig loads --config when given, otherwise the user and project
// configuration for the working directory.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(config.ExpandPath(configPath))
	}
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return config.Load(dir)
}
