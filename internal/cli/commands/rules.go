package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/meshlint/internal/cli/output"
	"github.com/chazu/meshlint/pkg/lint"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Verbose bool // Show check descriptions
}

// RuleOutput is the JSON form of one check.
type RuleOutput struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Description    string `json:"description"`
	Scope          string `json:"scope"`
	DefaultEnabled bool   `json:"default_enabled"`
	AlwaysOn       bool   `json:"always_on"`
	Enabled        bool   `json:"enabled"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [check-id]",
		Short: "List the available lint checks",
		Long: `List every lint check with its state under the current configuration.

Checks are enabled or disabled in meshlint.yaml under "checks", with
MESHLINT_CHECKS__<ID> environment variables, or with --enable/--disable.
Unapplied Scale is always on.`,
		Example: `  # List all checks
  meshlint rules

  # Show one check
  meshlint rules nonmanifold

  # Include descriptions
  meshlint rules -V`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show check descriptions")

	return cmd
}

// ruleOutputs describes checks against the configured lint settings.
func ruleOutputs(cmd *cobra.Command, checks []lint.Check) ([]RuleOutput, *output.Renderer, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	lc, err := cfg.LintConfig()
	if err != nil {
		return nil, nil, err
	}
	out := make([]RuleOutput, 0, len(checks))
	for _, chk := range checks {
		out = append(out, RuleOutput{
			ID:             chk.ID,
			Label:          chk.Label,
			Description:    chk.Description,
			Scope:          chk.Scope.String(),
			DefaultEnabled: chk.DefaultEnabled,
			AlwaysOn:       chk.AlwaysOn,
			Enabled:        lc.IsEnabled(chk.ID),
		})
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
	return out, r, nil
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	rules, r, err := ruleOutputs(cmd, lint.All())
	if err != nil {
		return err
	}
	if r.Mode() == output.ModeJSON {
		return r.JSON(rules)
	}

	styles := r.Styles()
	enabled := 0
	for _, rule := range rules {
		if rule.Enabled {
			enabled++
		}
	}

	r.Println("")
	r.Header(1, fmt.Sprintf("Lint Checks (%d of %d enabled)", enabled, len(rules)))
	r.Println("")

	currentScope := ""
	for _, rule := range rules {
		if rule.Scope != currentScope {
			currentScope = rule.Scope
			label := "Geometry Checks"
			if currentScope == lint.ScopeObject.String() {
				label = "Object Checks"
			}
			r.Header(2, label)
		}
		r.Printf("  %s  %-16s %s\n",
			ruleState(styles, rule),
			styles.Bold.Render(rule.Label),
			styles.Muted.Render(rule.ID),
		)
		if opts.Verbose {
			r.Println(styles.Muted.Render("        " + rule.Description))
		}
	}

	r.Println("")
	r.Muted("Use 'meshlint rules <check-id>' for the full description")
	r.Println("")
	return nil
}

func showRule(cmd *cobra.Command, id string) error {
	chk, ok := lint.Lookup(id)
	if !ok {
		return fmt.Errorf("check %q not found", id)
	}
	rules, r, err := ruleOutputs(cmd, []lint.Check{chk})
	if err != nil {
		return err
	}
	rule := rules[0]
	if r.Mode() == output.ModeJSON {
		return r.JSON(rule)
	}

	styles := r.Styles()
	r.Header(1, rule.Label)
	r.Printf("%s %s\n", styles.Muted.Render("id:     "), rule.ID)
	r.Printf("%s %s\n", styles.Muted.Render("scope:  "), rule.Scope)
	r.Printf("%s %s\n", styles.Muted.Render("state:  "), ruleState(styles, rule))
	r.Println("")
	r.Println(rule.Description)
	return nil
}

func ruleState(styles output.Styles, rule RuleOutput) string {
	switch {
	case rule.AlwaysOn:
		return styles.Success.Render("always")
	case rule.Enabled:
		return styles.Success.Render("on    ")
	default:
		return styles.Muted.Render("off   ")
	}
}
