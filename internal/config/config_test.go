package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshlint/pkg/lint"
	"github.com/chazu/meshlint/pkg/scan"
)

// testFlags mirrors the flags the CLI registers.
func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("mode", "", "")
	fs.Int("workers", 0, "")
	fs.String("output", "", "")
	fs.String("log-level", "", "")
	fs.Float64("scale-epsilon", 0, "")
	fs.String("name-pattern", "", "")
	fs.Int("mesh-cells", 0, "")
	fs.Int("debounce", 0, "")
	fs.String("metrics-addr", "", "")
	fs.StringSlice("enable", nil, "")
	fs.StringSlice("disable", nil, "")
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshlint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultMode, cfg.Mode)
	assert.Equal(t, scan.StopAtFirstLint, cfg.ScanMode())
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultMeshCells, cfg.MeshCells)
	assert.Equal(t, lint.DefaultScaleEpsilon, cfg.ScaleEpsilon)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce())
	assert.Empty(t, cfg.File)

	assert.True(t, cfg.Checks[lint.CheckTris])
	assert.False(t, cfg.Checks[lint.CheckSixplusPoles])
	_, present := cfg.Checks[lint.CheckUnappliedScale]
	assert.False(t, present, "always-on checks are not configurable")
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
mode: sweep
workers: 4
output: json
checks:
  tris: false
  sixplus_poles: true
default_name_pattern: "^Thing\\d*$"
watch:
  debounce_ms: 100
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, scan.FullSweep, cfg.ScanMode())
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce())

	lc, err := cfg.LintConfig()
	require.NoError(t, err)
	assert.False(t, lc.IsEnabled(lint.CheckTris))
	assert.True(t, lc.IsEnabled(lint.CheckSixplusPoles))
	assert.True(t, lc.IsEnabled(lint.CheckNgons), "unlisted checks keep their default")
	assert.True(t, lint.IsDefaultName(lc.NamePattern, "Thing12"))
	assert.False(t, lint.IsDefaultName(lc.NamePattern, "Cube.001"))
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "mode: sweep\nworkers: 2\noutput: json\n")
	t.Setenv("MESHLINT_WORKERS", "3")
	t.Setenv("MESHLINT_CHECKS__TRIS", "false")
	t.Setenv("MESHLINT_WATCH__METRICS_ADDR", ":9100")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--mode", "first", "--debounce", "40"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "first", cfg.Mode, "flag beats file")
	assert.Equal(t, 3, cfg.Workers, "env beats file")
	assert.Equal(t, "json", cfg.Output, "file beats default")
	assert.False(t, cfg.Checks[lint.CheckTris])
	assert.Equal(t, ":9100", cfg.Watch.MetricsAddr)
	assert.Equal(t, 40, cfg.Watch.DebounceMS)
}

func TestUnsetFlagsDoNotOverride(t *testing.T) {
	path := writeConfig(t, "workers: 6\n")
	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
}

func TestEnableDisableFlags(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{
		"--enable", "three_poles,five_poles",
		"--disable", "tris",
	}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	lc, err := cfg.LintConfig()
	require.NoError(t, err)
	assert.True(t, lc.IsEnabled(lint.CheckThreePoles))
	assert.True(t, lc.IsEnabled(lint.CheckFivePoles))
	assert.False(t, lc.IsEnabled(lint.CheckTris))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		errSubstr string
	}{
		{"bad mode", "mode: sideways\n", "mode"},
		{"bad output", "output: xml\n", "output format"},
		{"zero workers", "workers: 0\n", "workers"},
		{"zero cells", "mesh_cells: 0\n", "mesh_cells"},
		{"negative debounce", "watch:\n  debounce_ms: -1\n", "debounce_ms"},
		{"bad log level", "log_level: loud\n", "log level"},
		{"unknown check", "checks:\n  quads: true\n", "unknown check"},
		{"bad pattern", "default_name_pattern: \"(\"\n", "default name pattern"},
		{"negative epsilon", "scale_epsilon: -0.5\n", "scale epsilon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
