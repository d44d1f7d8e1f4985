package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/meshlint/internal/app"
	"github.com/chazu/meshlint/pkg/lint"
	"github.com/chazu/meshlint/pkg/scan"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Path   string // Scene file
	Source string // Inline scene source, instead of a file
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [scene]",
		Short: "Scan a scene for mesh lint",
		Long: `Scan every object in a scene and report mesh lint.

Scenes are YAML files (.yaml, .yml) or scene source files evaluated by the
scene DSL. The active object is scanned first, then the rest in scene order.

In "first" mode the scan stops at the first object with lint and reports the
elements to select on it. In "sweep" mode every object is scanned and a
scene-wide summary is printed.

Exits non-zero when lint is found or the scene fails to load.`,
		Example: `  # Stop at the first object with lint
  meshlint check scene.yaml

  # Scan every object
  meshlint check --mode sweep scene.lisp

  # Lint inline scene source
  meshlint check --eval '(object "Widget" :mesh (cube))'

  # Machine-readable output
  meshlint check -o json scene.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "eval", "e", "", "Scene source to lint instead of a file")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	if opts.Path == "" && opts.Source == "" {
		return errors.New("a scene file or --eval source is required")
	}

	cc, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}

	res, err := lintScene(cmd, cc, opts, cc.Cfg.ScanMode())
	if err != nil {
		return err
	}
	if err := renderResult(cc.Renderer, res); err != nil {
		return err
	}
	if n := len(res.Errors); n > 0 {
		return fmt.Errorf("scene check failed with %d %s", n, lint.Depluralize(n, "errors"))
	}
	if res.HasLint() {
		return ErrLintFound
	}
	return nil
}

// lintScene lints the file or inline source in opts. Scan failures are
// folded into the result; only a scene that cannot be read is an error.
func lintScene(cmd *cobra.Command, cc *CommandContext, opts *CheckOptions, mode scan.Mode) (app.LintResult, error) {
	if opts.Source != "" {
		return cc.App.Evaluate(cmd.Context(), opts.Source, mode), nil
	}
	res, err := cc.App.LintFile(cmd.Context(), opts.Path, mode)
	if err != nil {
		if res.State == scan.Idle.String() {
			return res, err
		}
		res.Errors = append(res.Errors, app.ErrorData{Message: err.Error()})
	}
	return res, nil
}
