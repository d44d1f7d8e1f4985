package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshlint/internal/app"
	"github.com/chazu/meshlint/internal/cli/commands"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "meshlint", cmd.Use)

	flags := []string{"config", "mode", "workers", "output", "log-level", "scale-epsilon",
		"name-pattern", "mesh-cells", "enable", "disable"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"check", "deselect", "watch", "rules"})
}

func TestFlagsReachCommands(t *testing.T) {
	out, err := run(t, "rules", "-o", "json", "--disable", "tris", "--enable", "three_poles")
	require.NoError(t, err)

	var rules []commands.RuleOutput
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	enabled := make(map[string]bool)
	for _, r := range rules {
		enabled[r.ID] = r.Enabled
	}
	assert.False(t, enabled["tris"])
	assert.True(t, enabled["three_poles"])
}

func TestCheckExampleScene(t *testing.T) {
	out, err := run(t, "check", "--mode", "sweep", "--mesh-cells", "16", "-o", "json", "../../examples/scene.lisp")
	require.ErrorIs(t, err, commands.ErrLintFound)

	var res app.LintResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "sweep", res.Mode)
	assert.Equal(t, []string{"Tile"}, res.LintFree)
}

func TestInvalidConfigFails(t *testing.T) {
	_, err := run(t, "--mode", "sideways", "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode")

	_, err = run(t, "--disable", "quads", "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown check")
}
