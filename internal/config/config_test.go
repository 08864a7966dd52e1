package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "ice_volume" {
		t.Errorf("expected model ice_volume, got %s", cfg.Model)
	}
	if cfg.Forcing.Step <= 0 {
		t.Error("forcing step should be positive")
	}
	if !cfg.Forcing.Normalize {
		t.Error("forcing should be normalized by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("state", "short-growth")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params["tg"] != 20000 {
		t.Errorf("expected tg 20000, got %f", cfg.Params["tg"])
	}

	cfg.Params["tg"] = 1
	if again := GetPreset("state", "short-growth"); again.Params["tg"] != 20000 {
		t.Error("preset was mutated through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("state", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "paillard98")
	if cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("ice_volume")
	if len(presets) == 0 {
		t.Fatal("expected presets for ice_volume")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsValid(t *testing.T) {
	for model, set := range Presets {
		for name, cfg := range set {
			if cfg.Model != model {
				t.Errorf("%s/%s: model %q", model, name, cfg.Model)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"no model", func(c *Config) { c.Model = "" }},
		{"plateau", func(c *Config) { c.Plateau = "wide" }},
		{"source", func(c *Config) { c.Forcing.Source = "netcdf" }},
		{"zero step", func(c *Config) { c.Forcing.Step = 0 }},
		{"reversed range", func(c *Config) { c.Forcing.Start, c.Forcing.End = 0, -10 }},
		{"csv without path", func(c *Config) { c.Forcing.Source = SourceCSV }},
		{"truncate a", func(c *Config) { c.Forcing.Truncate, c.Forcing.TruncateA = true, 0 }},
		{"empty schedule", func(c *Config) { c.Schedules = map[string][]Breakpoint{"i0": nil} }},
		{"unordered schedule", func(c *Config) {
			c.Schedules = map[string][]Breakpoint{"i0": {{Step: 5}, {Step: 5}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("state", "ramp-i0")
	cfg.InitState = "g"
	cfg.Params = map[string]float64{"tg": 1000}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model != "state" || loaded.InitState != "g" {
		t.Errorf("unexpected model/state: %s/%s", loaded.Model, loaded.InitState)
	}
	if loaded.Params["tg"] != 1000 {
		t.Errorf("expected tg 1000, got %f", loaded.Params["tg"])
	}
	points := loaded.Schedules["i0"]
	if len(points) != 2 || points[1].Step != 800 || points[1].Value != -0.5 {
		t.Errorf("schedule not round-tripped: %+v", points)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("model: state\nparams:\n  i0: -0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Integrator != DefaultIntegrator || cfg.Forcing.Source != SourceSynthetic {
		t.Error("missing fields should keep defaults")
	}
	if cfg.Params["i0"] != -0.5 {
		t.Errorf("expected i0 -0.5, got %f", cfg.Params["i0"])
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("forcing:\n  source: netcdf\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
