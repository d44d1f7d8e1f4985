// Package config loads meshlint configuration.
//
// Precedence (highest to lowest): explicitly set flags > MESHLINT_* env
// vars > meshlint.yaml > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/chazu/meshlint/pkg/lint"
	"github.com/chazu/meshlint/pkg/logging"
	"github.com/chazu/meshlint/pkg/scan"
)

// Config is the resolved configuration.
type Config struct {
	Checks             map[string]bool `koanf:"checks"`
	ScaleEpsilon       float64         `koanf:"scale_epsilon"`
	DefaultNamePattern string          `koanf:"default_name_pattern"`
	Mode               string          `koanf:"mode"`
	Workers            int             `koanf:"workers"`
	Output             string          `koanf:"output"`
	LogLevel           string          `koanf:"log_level"`
	MeshCells          int             `koanf:"mesh_cells"`
	Watch              WatchConfig     `koanf:"watch"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	DebounceMS  int    `koanf:"debounce_ms"`
	MetricsAddr string `koanf:"metrics_addr"`
}

// Debounce returns the debounce interval.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// flagKeys maps flag names onto config keys where they differ from the
// kebab-to-snake default.
var flagKeys = map[string]string{
	"name-pattern": "default_name_pattern",
	"debounce":     "watch.debounce_ms",
	"metrics-addr": "watch.metrics_addr",
}

// flagsNotConfig are flags that never map onto config keys. enable and
// disable are folded into checks after loading.
var flagsNotConfig = map[string]bool{
	"config":  true,
	"enable":  true,
	"disable": true,
	"eval":    true,
	"verbose": true,
	"help":    true,
}

// findConfigFile finds the config file to use.
// Priority: explicit path > meshlint.yaml > meshlint.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, the config file, environment
// variables and flags. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: MESHLINT_WATCH__DEBOUNCE_MS -> watch.debounce_ms
	if err := k.Load(env.Provider(DefaultEnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, DefaultEnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || flagsNotConfig[f.Name] {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	if cfg.Checks == nil {
		cfg.Checks = make(map[string]bool)
	}

	if flags != nil {
		if err := applyCheckFlags(&cfg, flags); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyCheckFlags folds --enable and --disable into the check map. A check
// named in both is disabled.
func applyCheckFlags(cfg *Config, flags *pflag.FlagSet) error {
	for _, name := range []string{"enable", "disable"} {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		ids, err := flags.GetStringSlice(name)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
		for _, id := range ids {
			cfg.Checks[strings.TrimSpace(id)] = name == "enable"
		}
	}
	return nil
}

// Validate checks every field that can be checked without building the
// lint configuration.
func (c *Config) Validate() error {
	if _, err := scan.ParseMode(c.Mode); err != nil {
		return err
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", c.Output)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MeshCells < 1 {
		return fmt.Errorf("mesh_cells must be at least 1, got %d", c.MeshCells)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	_, err := c.LintConfig()
	return err
}

// ScanMode returns the configured scan mode.
func (c *Config) ScanMode() scan.Mode {
	m, _ := scan.ParseMode(c.Mode)
	return m
}

// LintConfig converts the check settings into a lint configuration,
// rejecting unknown check IDs and invalid patterns.
func (c *Config) LintConfig() (*lint.Config, error) {
	lc := lint.DefaultConfig()
	for id, on := range c.Checks {
		if on {
			lc.Enable(id)
		} else {
			lc.Disable(id)
		}
	}
	lc.ScaleEpsilon = c.ScaleEpsilon
	if c.DefaultNamePattern != "" {
		if err := lc.SetNamePattern(c.DefaultNamePattern); err != nil {
			return nil, err
		}
	}
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	return lc, nil
}
