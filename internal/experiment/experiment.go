// Package experiment turns a config file into a ready-to-run simulation.
package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/glacialsim/internal/config"
	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/forcing"
	"github.com/san-kum/glacialsim/internal/peaks"
	"github.com/san-kum/glacialsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	model     dynamo.Model
	simulator *sim.Simulator
	forcing   forcing.Series
	simCfg    sim.Config
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

// Setup builds the forcing series, the model and the simulator.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	series, err := LoadForcing(e.cfg.Forcing)
	if err != nil {
		return err
	}

	init := Init{Elapsed: e.cfg.InitElapsed, V0: e.cfg.V0}
	if e.cfg.InitState != "" {
		if init.State, err = dynamo.ParseGlacialState(e.cfg.InitState); err != nil {
			return fmt.Errorf("init_state: %w", err)
		}
	}

	stepper, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	model, err := e.registry.GetModel(e.cfg.Model, init, stepper)
	if err != nil {
		return err
	}
	if err := ApplyParams(model, e.cfg.Params); err != nil {
		return err
	}

	plateau, err := peaks.ParsePlateauMode(e.cfg.Plateau)
	if err != nil {
		return err
	}
	simCfg := sim.DefaultConfig()
	simCfg.Plateau = plateau
	simCfg.Schedules = Schedules(e.cfg.Schedules)
	simCfg.Peaks = peaks.New(series.Values, plateau)

	e.simulator = sim.New(model)
	for _, m := range e.registry.DefaultMetrics(model) {
		e.simulator.AddMetric(m)
	}

	e.model = model
	e.forcing = series
	e.simCfg = simCfg
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.forcing.Times, e.forcing.Values, e.simCfg)
}

// Session starts a step-by-step run over the prepared forcing. It shares the
// experiment's model, so it must not overlap with Run.
func (e *Experiment) Session() (*sim.Session, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return sim.NewSession(e.model, e.forcing.Times, e.forcing.Values, e.simCfg)
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Model() dynamo.Model       { return e.model }
func (e *Experiment) Forcing() forcing.Series   { return e.forcing }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) SimConfig() sim.Config     { return e.simCfg }

// LoadForcing reads or generates the series described by fc and applies its
// preprocessing.
func LoadForcing(fc config.ForcingConfig) (forcing.Series, error) {
	var (
		raw forcing.Series
		err error
	)
	switch fc.Source {
	case config.SourceCSV:
		raw, err = forcing.LoadCSV(fc.Path)
	default:
		var times []float64
		times, err = forcing.Times(fc.Start, fc.End, fc.Step)
		if err == nil {
			raw = forcing.Synthetic(times, forcing.Orbital)
		}
	}
	if err != nil {
		return forcing.Series{}, err
	}
	return forcing.Prepare(raw, fc.Truncate, fc.TruncateA, fc.Normalize)
}

// ApplyParams sets overrides in name order so failures are reproducible.
func ApplyParams(model dynamo.Configurable, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := model.SetParam(name, params[name]); err != nil {
			return fmt.Errorf("params: %w", err)
		}
	}
	return nil
}

func Schedules(in map[string][]config.Breakpoint) map[string]sim.Schedule {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]sim.Schedule, len(in))
	for name, points := range in {
		bp := make([]sim.Breakpoint, len(points))
		for i, p := range points {
			bp[i] = sim.Breakpoint{Step: p.Step, Value: p.Value}
		}
		out[name] = sim.PiecewiseLinear(bp)
	}
	return out
}
