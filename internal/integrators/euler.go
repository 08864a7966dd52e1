package integrators

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f Derivative, v, t, dt float64) float64 {
	return v + dt*f(v, t)
}
