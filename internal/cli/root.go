// Package cli provides the command-line interface for meshlint.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chazu/meshlint/internal/cli/commands"
	"github.com/chazu/meshlint/internal/config"
	"github.com/chazu/meshlint/pkg/lint"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "meshlint",
		Short: "meshlint - mesh topology linter",
		Long: `meshlint checks the meshes of a scene against modeling conventions:
tris, ngons, nonmanifold elements, interior faces, poles, default names and
unapplied scale.

Scenes are YAML files or scene source evaluated by the built-in scene DSL.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// cmd.Flags() holds the persistent flags plus the command's own.
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(commands.WithConfig(cmd.Context(), cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}} (%s)\n", GitCommit))

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./meshlint.yaml)")
	pf.String("mode", "", "Scan mode: first (stop at first lint) or sweep")
	pf.Int("workers", 0, "Parallel evaluations in sweep mode")
	pf.StringP("output", "o", "", "Output format (table|json)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.Float64("scale-epsilon", 0, "Tolerance for unapplied scale")
	pf.String("name-pattern", "", "Regular expression matching default object names")
	pf.Int("mesh-cells", 0, "Marching cubes resolution for solids")
	pf.StringSlice("enable", nil, "Check IDs to enable")
	pf.StringSlice("disable", nil, "Check IDs to disable")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"first", "sweep"}, cobra.ShellCompDirectiveNoFileComp
	})
	checkIDs := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var ids []string
		for _, chk := range lint.All() {
			if !chk.AlwaysOn {
				ids = append(ids, chk.ID)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
	_ = rootCmd.RegisterFlagCompletionFunc("enable", checkIDs)
	_ = rootCmd.RegisterFlagCompletionFunc("disable", checkIDs)

	// Add subcommands
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewDeselectCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())

	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrLintFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}
