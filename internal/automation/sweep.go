// Package automation runs a configuration repeatedly while stepping one
// parameter across a range.
package automation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/glacialsim/internal/analysis"
	"github.com/san-kum/glacialsim/internal/config"
	"github.com/san-kum/glacialsim/internal/experiment"
)

// ParameterSweep runs Base once per value of Param in [Min, Max].
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

// SweepResult summarizes one run of a sweep.
type SweepResult struct {
	Value          float64
	Transitions    int
	Terminations   int
	MeanCycle      float64
	DominantPeriod float64
	MaxVolume      float64
}

func (s *ParameterSweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	out := make([]float64, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)
	for i := range out {
		out[i] = s.Min + float64(i)*step
	}
	return out
}

// RunSweep executes the sweep in order. Any failing run aborts the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("sweep: no base config")
	}
	if sweep.Param == "" {
		return nil, fmt.Errorf("sweep: no parameter")
	}
	if registry == nil {
		registry = experiment.NewRegistry()
	}

	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	for i, value := range values {
		cfg := sweep.Base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[sweep.Param] = value

		exp := experiment.New(cfg, registry)
		if err := exp.Setup(); err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", sweep.Param, value, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", sweep.Param, value, err)
		}

		cycles := analysis.Cycles(result.Times, result.States())
		r := SweepResult{
			Value:        value,
			Transitions:  int(result.Metrics["transitions"]),
			Terminations: len(cycles.Terminations),
			MeanCycle:    cycles.Mean,
			MaxVolume:    result.Metrics["v.max"],
		}
		if len(result.Times) > 1 {
			dt := result.Times[1] - result.Times[0]
			r.DominantPeriod = analysis.Dominant(analysis.Spectrum(result.Series(seriesFor(result.Snapshots[0].Vars)), dt), 0, 0).Period
		}
		results = append(results, r)

		slog.Info("sweep step", "step", i+1, "of", len(values), "param", sweep.Param, "value", value, "terminations", r.Terminations)
	}

	return results, nil
}

func seriesFor(vars map[string]float64) string {
	if _, ok := vars["v"]; ok {
		return "v"
	}
	return "tc"
}
