package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

type Aggregate int

const (
	Mean Aggregate = iota
	StdDev
	Max
	Min
)

func (a Aggregate) String() string {
	switch a {
	case Mean:
		return "mean"
	case StdDev:
		return "std"
	case Max:
		return "max"
	case Min:
		return "min"
	}
	return "unknown"
}

// Variable aggregates one snapshot variable over a run. Steps that do not
// report the variable are skipped.
type Variable struct {
	name    string
	key     string
	agg     Aggregate
	samples []float64
}

func NewVariable(key string, agg Aggregate) *Variable {
	return &Variable{
		name: key + "." + agg.String(),
		key:  key,
		agg:  agg,
	}
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Observe(step int, t float64, snap dynamo.Snapshot) {
	x, ok := snap.Vars[v.key]
	if !ok || math.IsNaN(x) {
		return
	}
	v.samples = append(v.samples, x)
}

func (v *Variable) Value() float64 {
	if len(v.samples) == 0 {
		return 0
	}
	switch v.agg {
	case StdDev:
		if len(v.samples) < 2 {
			return 0
		}
		return stat.StdDev(v.samples, nil)
	case Max:
		return floats.Max(v.samples)
	case Min:
		return floats.Min(v.samples)
	default:
		return stat.Mean(v.samples, nil)
	}
}

func (v *Variable) Reset() {
	v.samples = v.samples[:0]
}
