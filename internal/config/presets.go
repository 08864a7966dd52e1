package config

import "sort"

func preset(model string, edit func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	if edit != nil {
		edit(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"state": {
		"paillard98": preset("state", nil),
		"short-growth": preset("state", func(c *Config) {
			c.Params = map[string]float64{"tg": 20000}
		}),
		"deep-threshold": preset("state", func(c *Config) {
			c.Params = map[string]float64{"i2": -0.5, "i3": 0.5}
		}),
		"ramp-i0": preset("state", func(c *Config) {
			c.Schedules = map[string][]Breakpoint{
				"i0": {{Step: 0, Value: -0.75}, {Step: 800, Value: -0.5}},
			}
		}),
	},
	"ice_volume": {
		"paillard98": preset("ice_volume", nil),
		"truncated": preset("ice_volume", func(c *Config) {
			c.Forcing.Truncate = true
		}),
		"fast-deglaciation": preset("ice_volume", func(c *Config) {
			c.Params = map[string]float64{"tau_r.i": 5}
		}),
		"long-growth": preset("ice_volume", func(c *Config) {
			c.Params = map[string]float64{"tau_r.g": 80, "tau_r.G": 80, "vmax": 1.2}
		}),
		"euler": preset("ice_volume", func(c *Config) {
			c.Integrator = "euler"
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
