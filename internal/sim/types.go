package sim

import (
	"github.com/san-kum/glacialsim/internal/peaks"
)

// Schedule yields a parameter value for a step index.
type Schedule func(step int) float64

type Config struct {
	// Schedules override model parameters by name after each step's
	// result is recorded.
	Schedules map[string]Schedule
	// Peaks is an index precomputed over the same forcing series. When nil
	// the simulator builds one using Plateau.
	Peaks         *peaks.Index
	Plateau       peaks.PlateauMode
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Plateau:       peaks.PlateauStrict,
		ValidateState: true,
	}
}

// Constant is a schedule that always yields v.
func Constant(v float64) Schedule {
	return func(int) float64 { return v }
}

// Breakpoint pins a schedule value at a step.
type Breakpoint struct {
	Step  int
	Value float64
}

// PiecewiseLinear interpolates between breakpoints sorted by step and holds
// the end values outside their range.
func PiecewiseLinear(points []Breakpoint) Schedule {
	pts := make([]Breakpoint, len(points))
	copy(pts, points)

	return func(step int) float64 {
		if len(pts) == 0 {
			return 0
		}
		if step <= pts[0].Step {
			return pts[0].Value
		}
		for i := 1; i < len(pts); i++ {
			if step <= pts[i].Step {
				a, b := pts[i-1], pts[i]
				frac := float64(step-a.Step) / float64(b.Step-a.Step)
				return a.Value + frac*(b.Value-a.Value)
			}
		}
		return pts[len(pts)-1].Value
	}
}
