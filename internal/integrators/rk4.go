package integrators

// RK4 is the four-stage Runge-Kutta stepper used by the glacial models.
//
// It is deliberately non-standard: the third stage reuses k1 for its half-step
// slope (so k3 == k2), and the fourth stage steps along k2. Results produced by
// existing model runs depend on this layout. Use ClassicRK4 for the textbook
// scheme.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f Derivative, v, t, dt float64) float64 {
	half := dt * 0.5

	k1 := f(v, t)
	k2 := f(v+half*k1, t+half)
	k3 := f(v+half*k1, t+half)
	k4 := f(v+dt*k2, t+dt)

	return v + dt/6.0*(k1+2*k2+2*k3+k4)
}

// ClassicRK4 is the textbook fourth-order Runge-Kutta stepper.
type ClassicRK4 struct{}

func NewClassicRK4() *ClassicRK4 {
	return &ClassicRK4{}
}

func (r *ClassicRK4) Step(f Derivative, v, t, dt float64) float64 {
	half := dt * 0.5

	k1 := f(v, t)
	k2 := f(v+half*k1, t+half)
	k3 := f(v+half*k2, t+half)
	k4 := f(v+dt*k3, t+dt)

	return v + dt/6.0*(k1+2*k2+2*k3+k4)
}
