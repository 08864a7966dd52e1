// Package metrics provides run summaries fed by the simulator.
package metrics

import (
	"github.com/san-kum/glacialsim/internal/dynamo"
)

// Regime returns occupancy for every regime plus transition counters.
func Regime() []dynamo.Metric {
	out := make([]dynamo.Metric, 0, dynamo.NumStates+2)
	for s := dynamo.GlacialState(0); s < dynamo.NumStates; s++ {
		out = append(out, NewOccupancy(s))
	}
	return append(out, NewTransitions(), NewCycleViolations())
}

// Volume returns mean, spread and extremes of the ice volume "v".
func Volume() []dynamo.Metric {
	return []dynamo.Metric{
		NewVariable("v", Mean),
		NewVariable("v", StdDev),
		NewVariable("v", Max),
		NewVariable("v", Min),
	}
}

// For picks the metric set matching the variables in snap.
func For(snap dynamo.Snapshot) []dynamo.Metric {
	out := Regime()
	if _, ok := snap.Vars["v"]; ok {
		out = append(out, Volume()...)
	}
	return out
}
