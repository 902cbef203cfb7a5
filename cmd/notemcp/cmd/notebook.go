package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notemcp/internal/config"
	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/internal/ui"
	"github.com/Aman-CERP/notemcp/pkg/notebook"
)

// sourceFlags are shared by every command that opens notes.
type sourceFlags struct {
	dirs []string
	exts string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.dirs, "dir", "d", nil, "Source directory (repeatable; default: sources from config)")
	cmd.Flags().StringVar(&f.exts, "exts", "", "Comma-separated note extensions (default: md,org,txt)")
}

// errNoSources is returned when neither arguments nor config name a source.
var errNoSources = errors.New("no source directories: pass directories or set 'sources' in the config file")

// resolve applies the flags over cfg and returns the sources to register.
func resolve(cfg *config.Config, dirs []string, exts string) ([]config.SourceConfig, error) {
	if list := config.SplitList(exts); len(list) > 0 {
		cfg.Extensions = list
	}

	sources := cfg.Sources
	if len(dirs) > 0 {
		sources = make([]config.SourceConfig, 0, len(dirs))
		for _, dir := range dirs {
			sources = append(sources, config.SourceConfig{Path: dir})
		}
	}
	if len(sources) == 0 {
		return nil, errNoSources
	}
	return sources, nil
}

// newNotebook builds an unscanned notebook from cfg with the CLI's logger
// and tool lookup.
func newNotebook(cfg *config.Config, logger *slog.Logger) *notebook.Notebook {
	opts := []notebook.Option{notebook.WithLogger(logger)}
	if lookPath != nil {
		opts = append(opts, notebook.WithLookPath(lookPath))
	}
	return notebook.New(cfg, opts...)
}

// openNotebook loads the config, registers dirs, and scans them.
func openNotebook(ctx context.Context, dirs []string, exts string, progress index.ProgressFunc) (*notebook.Notebook, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	sources, err := resolve(cfg, dirs, exts)
	if err != nil {
		return nil, err
	}

	nb := newNotebook(cfg, slog.Default())
	if err := nb.Setup(ctx, sources, progress); err != nil {
		return nil, err
	}
	return nb, nil
}

// statusInfo collects what the status renderer shows about nb.
func statusInfo(nb *notebook.Notebook) ui.StatusInfo {
	info := nb.Info()
	probe := nb.Probe()

	sources := make([]ui.SourceStatus, 0, len(info.Sources))
	for _, s := range info.Sources {
		sources = append(sources, ui.SourceStatus{Name: s.Name, Root: s.Root, Notes: s.NoteCount})
	}

	return ui.StatusInfo{
		ServerName:  nb.Config().Server.Name,
		TotalNotes:  info.TotalNotes,
		Extensions:  info.Extensions,
		Sources:     sources,
		Capability:  probe.Capability.String(),
		Chain:       nb.Chain(),
		RipgrepPath: probe.RipgrepPath,
		GrepPath:    probe.GrepPath,
		IndexedAt:   nb.IndexedAt(),
	}
}
