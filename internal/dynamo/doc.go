// Package dynamo provides the primitives shared by the oscillator solvers.
//
//   - [State]: (position, velocity) pair
//   - [VectorField]: first-order ODE system dx/dt = f(t, x)
//   - [EnergyModel]: kinetic/potential split used by diagnostics
//   - [Trajectory]: immutable integration output
//
// # Errors
//
// Every failure unwraps to one registered kind ([ErrInvalidParameter],
// [ErrInvalidStep], [ErrNonFiniteState], [ErrDomain], [ErrInsufficientData]).
// The offending value is available through [ParamError] or [SimulationError]:
//
//	var pe *dynamo.ParamError
//	if errors.As(err, &pe) {
//	    fmt.Println(pe.Name, pe.Value)
//	}
//
// # Thread Safety
//
// Trajectories are never mutated after construction and may be shared freely.
package dynamo
