package forcing

import (
	"fmt"
	"math"
)

// Component is one sinusoid of an orbital forcing signal. Period is in the
// same unit as the sample times.
type Component struct {
	Period    float64
	Amplitude float64
	Phase     float64
}

// Orbital holds the two precession bands and the obliquity band, periods in kyr.
var Orbital = []Component{
	{Period: 19, Amplitude: 0.6, Phase: 0.3},
	{Period: 23, Amplitude: 1.0, Phase: 0},
	{Period: 41, Amplitude: 0.5, Phase: 1.1},
}

// Times samples [start, end] at the given step.
func Times(start, end, step float64) ([]float64, error) {
	if step <= 0 || !finite(step) {
		return nil, fmt.Errorf("forcing: step must be positive, got %g", step)
	}
	if end < start {
		return nil, fmt.Errorf("forcing: end %g before start %g", end, start)
	}
	n := int(math.Floor((end-start)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// Synthetic sums components over the given times.
func Synthetic(times []float64, components []Component) Series {
	values := make([]float64, len(times))
	for i, t := range times {
		for _, c := range components {
			values[i] += c.Amplitude * math.Sin(2*math.Pi*t/c.Period+c.Phase)
		}
	}
	return Series{Times: times, Values: values}
}
