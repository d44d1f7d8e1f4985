package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/chazu/meshlint/internal/cli/output"
	"github.com/chazu/meshlint/pkg/scan"
)

// DeselectOutput is the JSON form of the deselect command.
type DeselectOutput struct {
	Source   string   `json:"source,omitempty"`
	LintFree []string `json:"lint_free"`
}

// NewDeselectCommand creates the deselect command.
func NewDeselectCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "deselect [scene]",
		Short: "List the lint-free objects of a scene",
		Long: `Sweep the whole scene and print the objects without lint, one per line,
for the caller to deselect. Objects that failed to evaluate or carry no
mesh are never listed.`,
		Example: `  meshlint deselect scene.yaml
  meshlint deselect -o json scene.lisp`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runDeselect(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "eval", "e", "", "Scene source to scan instead of a file")

	return cmd
}

func runDeselect(cmd *cobra.Command, opts *CheckOptions) error {
	if opts.Path == "" && opts.Source == "" {
		return errors.New("a scene file or --eval source is required")
	}

	cc, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}

	res, err := lintScene(cmd, cc, opts, scan.FullSweep)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.Mode() == output.ModeJSON {
		return r.JSON(DeselectOutput{Source: res.Source, LintFree: res.LintFree})
	}
	for _, e := range res.Errors {
		r.Error(formatError(e))
	}
	for _, name := range res.LintFree {
		r.Println(name)
	}
	if len(res.LintFree) == 0 {
		r.Muted("no lint-free objects")
	}
	if len(res.Errors) > 0 {
		return errors.New("scene failed to load")
	}
	return nil
}
