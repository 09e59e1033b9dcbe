package config

import "sort"

// Presets are named variants applied on top of the defaults.
var presets = map[string]func(*Config){
	"snappy": func(c *Config) {
		c.Physics.Stiffness = 0.8
		c.Physics.TrailingStiffness = 0.5
		c.Physics.Damping = 0.55
		c.Physics.MaxLength = 12
		c.Particles.Enabled = false
	},
	"fluid": func(c *Config) {
		c.Physics.Stiffness = 0.45
		c.Physics.TrailingStiffness = 0.2
		c.Physics.Damping = 0.75
		c.Physics.MaxLength = 40
		c.Planner.Gradient = 1.2
	},
	"inky": func(c *Config) {
		c.Physics.TrailingStiffness = 0.15
		c.Physics.TrailingExponent = 0.3
		c.Planner.Gradient = 2.0
		c.Particles.SpawnPerCell = 0.8
		c.Particles.Gravity = 14
		c.Particles.MaxLife = 1.8
	},
	"minimal": func(c *Config) {
		c.Particles.Enabled = false
		c.Planner.Gradient = 0
		c.Color.Levels = 4
		c.Pool.MaxKeptOverlays = 16
	},
}

// Preset returns a fresh config for the named preset, or nil when the
// name is unknown.
func Preset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := Default()
	fn(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
