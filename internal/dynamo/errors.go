package dynamo

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Codespace groups the registered error kinds of the solver.
const Codespace = "oscsim"

// Error kinds. Every error returned by the core unwraps to exactly one of these.
var (
	// ErrInvalidParameter indicates a non-physical model constant or input.
	ErrInvalidParameter = errorsmod.Register(Codespace, 2, "invalid parameter")

	// ErrInvalidStep indicates a non-positive step size or time span.
	ErrInvalidStep = errorsmod.Register(Codespace, 3, "invalid step")

	// ErrNonFiniteState indicates the integration produced NaN or Inf.
	ErrNonFiniteState = errorsmod.Register(Codespace, 4, "non-finite state")

	// ErrDomain indicates an argument outside the domain of an analytical formula.
	ErrDomain = errorsmod.Register(Codespace, 5, "domain error")

	// ErrInsufficientData indicates a trajectory too short to estimate from.
	ErrInsufficientData = errorsmod.Register(Codespace, 6, "insufficient data")
)

// ParamError carries the name and value of an offending input.
type ParamError struct {
	Name  string
	Value float64
	Kind  error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s = %g", e.Kind, e.Name, e.Value)
}

func (e *ParamError) Unwrap() error {
	return e.Kind
}

// InvalidParam reports a rejected model constant.
func InvalidParam(name string, value float64) error {
	return &ParamError{Name: name, Value: value, Kind: ErrInvalidParameter}
}

// InvalidStep reports a rejected step size or time span.
func InvalidStep(name string, value float64) error {
	return &ParamError{Name: name, Value: value, Kind: ErrInvalidStep}
}

// OutOfDomain reports an argument outside a formula's domain.
func OutOfDomain(name string, value float64) error {
	return &ParamError{Name: name, Value: value, Kind: ErrDomain}
}

// SimulationError wraps an error with the integration context it was observed in.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s %v", e.Step, e.Time, e.Wrapped, []float64(e.State))
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
