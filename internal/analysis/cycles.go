package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

// Terminations returns the steps at which a full glacial gives way to an
// interglacial.
func Terminations(states []dynamo.GlacialState) []int {
	var out []int
	for i := 1; i < len(states); i++ {
		if states[i-1] == dynamo.FullGlacial && states[i] == dynamo.Interglacial {
			out = append(out, i)
		}
	}
	return out
}

type CycleStats struct {
	Terminations []int
	// Lengths are the time spans between consecutive terminations.
	Lengths []float64
	Mean    float64
	StdDev  float64
}

// Cycles measures the spacing of terminations in units of times.
func Cycles(times []float64, states []dynamo.GlacialState) CycleStats {
	cs := CycleStats{Terminations: Terminations(states)}
	for i := 1; i < len(cs.Terminations); i++ {
		cs.Lengths = append(cs.Lengths, times[cs.Terminations[i]]-times[cs.Terminations[i-1]])
	}
	switch len(cs.Lengths) {
	case 0:
	case 1:
		cs.Mean = cs.Lengths[0]
	default:
		cs.Mean, cs.StdDev = stat.MeanStdDev(cs.Lengths, nil)
	}
	return cs
}
