package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel      = "ice_volume"
	DefaultIntegrator = "rk4"
	DefaultPlateau    = "strict"

	// Synthetic forcing spans the last 800 kyr at 1 kyr resolution.
	DefaultStart = -800.0
	DefaultEnd   = 0.0
	DefaultStep  = 1.0

	DefaultTruncateA = 1.0
)

const (
	SourceSynthetic = "synthetic"
	SourceCSV       = "csv"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Model      string        `yaml:"model"`
	Integrator string        `yaml:"integrator"`
	Forcing    ForcingConfig `yaml:"forcing"`
	Plateau    string        `yaml:"plateau"`

	// InitState is a regime label or name; empty keeps the model default.
	InitState   string  `yaml:"init_state,omitempty"`
	InitElapsed float64 `yaml:"init_elapsed,omitempty"`
	V0          float64 `yaml:"v0,omitempty"`

	Params    map[string]float64      `yaml:"params,omitempty"`
	Schedules map[string][]Breakpoint `yaml:"schedules,omitempty"`
}

type ForcingConfig struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path,omitempty"`

	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Step  float64 `yaml:"step"`

	Truncate  bool    `yaml:"truncate"`
	TruncateA float64 `yaml:"truncate_a"`
	Normalize bool    `yaml:"normalize"`
}

// Breakpoint pins a parameter value at a simulation step.
type Breakpoint struct {
	Step  int     `yaml:"step"`
	Value float64 `yaml:"value"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		Plateau:    DefaultPlateau,
		Forcing: ForcingConfig{
			Source:    SourceSynthetic,
			Start:     DefaultStart,
			End:       DefaultEnd,
			Step:      DefaultStep,
			TruncateA: DefaultTruncateA,
			Normalize: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that do not need a model to interpret.
// Parameter and schedule names are checked when the model is built.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalid)
	}
	switch c.Plateau {
	case "", "strict", "midpoint":
	default:
		return fmt.Errorf("%w: unknown plateau mode %q", ErrInvalid, c.Plateau)
	}

	f := c.Forcing
	switch f.Source {
	case SourceSynthetic:
		if f.Step <= 0 {
			return fmt.Errorf("%w: forcing step must be positive", ErrInvalid)
		}
		if f.End <= f.Start {
			return fmt.Errorf("%w: forcing end %g is not after start %g", ErrInvalid, f.End, f.Start)
		}
	case SourceCSV:
		if f.Path == "" {
			return fmt.Errorf("%w: csv forcing needs a path", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown forcing source %q", ErrInvalid, f.Source)
	}
	if f.Truncate && f.TruncateA <= 0 {
		return fmt.Errorf("%w: truncate_a must be positive", ErrInvalid)
	}

	for name, points := range c.Schedules {
		if len(points) == 0 {
			return fmt.Errorf("%w: schedule %q has no breakpoints", ErrInvalid, name)
		}
		for i := 1; i < len(points); i++ {
			if points[i].Step <= points[i-1].Step {
				return fmt.Errorf("%w: schedule %q steps must increase", ErrInvalid, name)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	if c.Schedules != nil {
		out.Schedules = make(map[string][]Breakpoint, len(c.Schedules))
		for k, v := range c.Schedules {
			out.Schedules[k] = append([]Breakpoint(nil), v...)
		}
	}
	return &out
}
