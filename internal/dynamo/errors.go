package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a regime outside the enumeration or a
	// snapshot holding NaN/Inf.
	ErrInvalidState = errors.New("dynamo: invalid state")

	// ErrNonFinite indicates a NaN or Inf where a finite number is required.
	ErrNonFinite = errors.New("dynamo: non-finite value")

	// ErrInvalidParam indicates a parameter value outside its domain, such as
	// a non-positive time step or time constant.
	ErrInvalidParam = errors.New("dynamo: invalid parameter value")

	// ErrUnknownParam indicates a parameter name the model does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrLengthMismatch indicates time and forcing series of different lengths.
	ErrLengthMismatch = errors.New("dynamo: time and forcing length mismatch")

	// ErrEmptySeries indicates a run over zero time steps.
	ErrEmptySeries = errors.New("dynamo: empty time series")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   Snapshot
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// UnknownParam builds an ErrUnknownParam for model and name.
func UnknownParam(model, name string) error {
	return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParam, model, name)
}
