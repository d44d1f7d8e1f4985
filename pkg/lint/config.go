package lint

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultScaleEpsilon is the tolerance for treating a scale component as 1.
const DefaultScaleEpsilon = 1e-6

// DefaultNames are the names a host assigns to freshly added primitives.
var DefaultNames = []string{
	"BezierCircle", "BezierCurve", "Circle", "Cone", "Cube", "CurvePath",
	"Cylinder", "Grid", "Icosphere", "Mball", "Monkey", "NurbsCircle",
	"NurbsCurve", "NurbsPath", "Plane", "Sphere", "Surface", "SurfCircle",
	"SurfCurve", "SurfCylinder", "SurfPatch", "SurfSphere", "SurfTorus",
	"Text", "Torus",
}

// DefaultNamePattern matches a default name with an optional numeric
// suffix, e.g. "Cube", "Cube.002" or "Sphere7".
var DefaultNamePattern = `^(` + strings.Join(DefaultNames, "|") + `)\.?\d*$`

var defaultNameRe = regexp.MustCompile(DefaultNamePattern)

// Config is the check configuration for one evaluation. It is read-only
// while an evaluation runs.
type Config struct {
	// Enabled maps check IDs to their state. Checks absent from the map use
	// their default.
	Enabled map[string]bool

	// ScaleEpsilon is the tolerance of the unapplied scale check.
	ScaleEpsilon float64

	// NamePattern is matched against object names by the default name check.
	NamePattern *regexp.Regexp
}

// DefaultConfig creates a configuration with every check at its default.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      make(map[string]bool),
		ScaleEpsilon: DefaultScaleEpsilon,
		NamePattern:  defaultNameRe,
	}
}

// IsEnabled returns true if the check should run. Always-on checks are
// enabled whatever the configuration says. A nil config means defaults.
func (c *Config) IsEnabled(id string) bool {
	chk, ok := Lookup(id)
	if !ok {
		return false
	}
	if chk.AlwaysOn {
		return true
	}
	if c != nil {
		if on, set := c.Enabled[id]; set {
			return on
		}
	}
	return chk.DefaultEnabled
}

// Enable turns a check on.
func (c *Config) Enable(id string) *Config {
	c.set(id, true)
	return c
}

// Disable turns a check off. Disabling an always-on check has no effect.
func (c *Config) Disable(id string) *Config {
	c.set(id, false)
	return c
}

// DisableAll turns every configurable check off.
func (c *Config) DisableAll() *Config {
	for _, chk := range All() {
		c.set(chk.ID, false)
	}
	return c
}

func (c *Config) set(id string, on bool) {
	if c.Enabled == nil {
		c.Enabled = make(map[string]bool)
	}
	c.Enabled[id] = on
}

// SetNamePattern compiles and installs the default-name pattern.
func (c *Config) SetNamePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("default name pattern: %w", err)
	}
	c.NamePattern = re
	return nil
}

// Validate rejects unknown check IDs and negative tolerances.
func (c *Config) Validate() error {
	for id := range c.Enabled {
		if _, ok := Lookup(id); !ok {
			return fmt.Errorf("unknown check %q", id)
		}
	}
	if c.ScaleEpsilon < 0 {
		return fmt.Errorf("scale epsilon must not be negative, got %g", c.ScaleEpsilon)
	}
	return nil
}

// Key returns a stable string describing the configuration, suitable for
// cache keys.
func (c *Config) Key() string {
	var b strings.Builder
	for _, chk := range All() {
		if c.IsEnabled(chk.ID) {
			b.WriteString(chk.ID)
			b.WriteByte(',')
		}
	}
	fmt.Fprintf(&b, "|%g|%s", c.scaleEpsilon(), c.namePattern().String())
	return b.String()
}

func (c *Config) scaleEpsilon() float64 {
	if c == nil {
		return DefaultScaleEpsilon
	}
	return c.ScaleEpsilon
}

func (c *Config) namePattern() *regexp.Regexp {
	if c == nil || c.NamePattern == nil {
		return defaultNameRe
	}
	return c.NamePattern
}
