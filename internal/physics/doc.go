// Package physics provides the oscillator models.
//
// Each model implements [dynamo.VectorField] and [dynamo.EnergyModel]:
//
//   - [Pendulum]: nonlinear damped pendulum, state (theta, omega)
//   - [SpringMass]: mass-spring-damper with optional [Forcing], state (x, v)
//
// Parameters are validated once, at construction. A constructed model is
// immutable and safe to share between concurrent integrations.
//
//	p, err := physics.NewPendulum(physics.DefaultPendulumParams())
//	if errors.Is(err, dynamo.ErrInvalidParameter) {
//	    // non-physical constant
//	}
package physics
