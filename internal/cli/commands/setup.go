// Package commands implements the meshlint subcommands.
package commands

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chazu/meshlint/internal/app"
	"github.com/chazu/meshlint/internal/cli/output"
	"github.com/chazu/meshlint/internal/config"
	"github.com/chazu/meshlint/pkg/logging"
	"github.com/chazu/meshlint/pkg/metrics"
)

// ErrLintFound is returned by commands that found lint, so the process
// exits non-zero.
var ErrLintFound = errors.New("lint issues found")

// configKey is used to store config in context.
type configKey struct{}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *log.Logger
	App      *app.App
	Renderer *output.Renderer
}

// getConfig returns the config stored by the root command, or loads one
// from defaults and the environment when the command runs standalone.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return cfg, nil
		}
	}
	return config.Load("", nil)
}

// NewCommandContext builds the logger, renderer and app for cmd. m may be
// nil.
func NewCommandContext(cmd *cobra.Command, m *metrics.Metrics) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}

	lintCfg, err := cfg.LintConfig()
	if err != nil {
		return nil, err
	}

	a := app.New(app.Options{
		Lint:      lintCfg,
		MeshCells: cfg.MeshCells,
		Workers:   cfg.Workers,
		Logger:    logger,
		Metrics:   m,
	})

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		App:      a,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}, nil
}
