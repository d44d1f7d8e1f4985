package config

import "github.com/chazu/meshlint/pkg/lint"

// Default configuration values.
const (
	DefaultMode       = "first"
	DefaultWorkers    = 1
	DefaultOutput     = "table"
	DefaultLogLevel   = "info"
	DefaultMeshCells  = 64
	DefaultDebounceMS = 250
	DefaultEnvPrefix  = "MESHLINT_"
)

// configFileNames are searched in the working directory when no explicit
// config file is given.
var configFileNames = []string{"meshlint.yaml", "meshlint.yml"}

// defaults returns the flat koanf default map. Every configurable check
// gets an explicit entry so the loaded config documents the full set.
func defaults() map[string]interface{} {
	m := map[string]interface{}{
		"scale_epsilon":        lint.DefaultScaleEpsilon,
		"default_name_pattern": "",
		"mode":                 DefaultMode,
		"workers":              DefaultWorkers,
		"output":               DefaultOutput,
		"log_level":            DefaultLogLevel,
		"mesh_cells":           DefaultMeshCells,
		"watch.debounce_ms":    DefaultDebounceMS,
		"watch.metrics_addr":   "",
	}
	for _, chk := range lint.All() {
		if chk.AlwaysOn {
			continue
		}
		m["checks."+chk.ID] = chk.DefaultEnabled
	}
	return m
}
