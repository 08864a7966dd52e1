package integrators

// Derivative is a scalar right-hand side dv/dt = f(v, t).
type Derivative func(v, t float64) float64

// Stepper advances a scalar value by one fixed step.
type Stepper interface {
	Step(f Derivative, v, t, dt float64) float64
}
