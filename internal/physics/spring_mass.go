package physics

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 1.0
)

// SpringParams are the constants of a single mass-spring-damper.
// A nil Forcing means the oscillator is free.
type SpringParams struct {
	Mass      float64
	Damping   float64
	Stiffness float64
	Forcing   Forcing
}

func DefaultSpringParams() SpringParams {
	return SpringParams{
		Mass:      DefaultMass,
		Damping:   0,
		Stiffness: DefaultStiffness,
	}
}

func (s SpringParams) Validate() error {
	if err := requirePositive("mass", s.Mass); err != nil {
		return err
	}
	if err := requireNonNegative("damping", s.Damping); err != nil {
		return err
	}
	return requirePositive("stiffness", s.Stiffness)
}

// SpringMass is m*x'' + c*x' + k*x = F(t).
type SpringMass struct {
	p SpringParams
}

func NewSpringMass(p SpringParams) (*SpringMass, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &SpringMass{p: p}, nil
}

func (s *SpringMass) Params() SpringParams   { return s.p }
func (s *SpringMass) Kind() dynamo.ModelKind { return dynamo.ModelSpring }
func (s *SpringMass) StateDim() int          { return 2 }
func (s *SpringMass) Driven() bool           { return s.p.Forcing != nil }

func (s *SpringMass) Force(t float64) float64 {
	if s.p.Forcing == nil {
		return 0
	}
	return s.p.Forcing(t)
}

func (s *SpringMass) Derive(t float64, x dynamo.State) dynamo.State {
	pos, vel := x[0], x[1]
	acc := (s.Force(t) - s.p.Damping*vel - s.p.Stiffness*pos) / s.p.Mass
	return dynamo.State{vel, acc}
}

func (s *SpringMass) Energies(x dynamo.State) (kinetic, potential float64) {
	kinetic = 0.5 * s.p.Mass * x[1] * x[1]
	potential = 0.5 * s.p.Stiffness * x[0] * x[0]
	return kinetic, potential
}

// Conservative is false for a driven oscillator; its total energy is only reported.
func (s *SpringMass) Conservative() bool { return !s.Driven() }

// NaturalFrequency is sqrt(k/m) in rad/s.
func (s *SpringMass) NaturalFrequency() float64 {
	return math.Sqrt(s.p.Stiffness / s.p.Mass)
}

// DampingRatio is c / (2*sqrt(k*m)).
func (s *SpringMass) DampingRatio() float64 {
	return s.p.Damping / (2 * math.Sqrt(s.p.Stiffness*s.p.Mass))
}

func (s *SpringMass) NaturalPeriod() float64 {
	return 2 * math.Pi / s.NaturalFrequency()
}

func (s *SpringMass) ParamMap() map[string]float64 {
	return map[string]float64{
		"mass":      s.p.Mass,
		"damping":   s.p.Damping,
		"stiffness": s.p.Stiffness,
	}
}
