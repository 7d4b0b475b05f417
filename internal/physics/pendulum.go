package physics

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

const (
	DefaultGravity = 9.81
	DefaultLength  = 1.0
)

// PendulumParams are the constants of a simple pendulum. Mass only scales
// the reported energies; the motion does not depend on it.
type PendulumParams struct {
	Length  float64
	Gravity float64
	Damping float64
	Mass    float64
}

func DefaultPendulumParams() PendulumParams {
	return PendulumParams{
		Length:  DefaultLength,
		Gravity: DefaultGravity,
		Damping: 0,
		Mass:    1.0,
	}
}

func (p PendulumParams) Validate() error {
	if err := requirePositive("length", p.Length); err != nil {
		return err
	}
	if err := requirePositive("gravity", p.Gravity); err != nil {
		return err
	}
	if err := requireNonNegative("damping", p.Damping); err != nil {
		return err
	}
	return requirePositive("mass", p.Mass)
}

// Pendulum is the nonlinear damped pendulum
//
//	theta'' = -gamma*theta' - (g/L)*sin(theta)
//
// The small-angle regime is reached only through small initial angles.
type Pendulum struct {
	p PendulumParams
}

func NewPendulum(p PendulumParams) (*Pendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Pendulum{p: p}, nil
}

func (p *Pendulum) Params() PendulumParams { return p.p }
func (p *Pendulum) Kind() dynamo.ModelKind  { return dynamo.ModelPendulum }
func (p *Pendulum) StateDim() int           { return 2 }

func (p *Pendulum) Derive(t float64, x dynamo.State) dynamo.State {
	theta, omega := x[0], x[1]
	alpha := -p.p.Damping*omega - (p.p.Gravity/p.p.Length)*math.Sin(theta)
	return dynamo.State{omega, alpha}
}

func (p *Pendulum) Energies(x dynamo.State) (kinetic, potential float64) {
	// KE = 0.5 * m * (L*omega)^2
	// PE = m * g * L * (1 - cos(theta))
	v := p.p.Length * x[1]
	kinetic = 0.5 * p.p.Mass * v * v
	potential = p.p.Mass * p.p.Gravity * p.p.Length * (1.0 - math.Cos(x[0]))
	return kinetic, potential
}

func (p *Pendulum) Conservative() bool { return true }

// NaturalFrequency is sqrt(g/L) in rad/s.
func (p *Pendulum) NaturalFrequency() float64 {
	return math.Sqrt(p.p.Gravity / p.p.Length)
}

// DampingRatio maps gamma onto the linearized oscillator: gamma = 2*zeta*omega_n.
func (p *Pendulum) DampingRatio() float64 {
	return p.p.Damping / (2 * p.NaturalFrequency())
}

// SmallAnglePeriod is 2*pi*sqrt(L/g).
func (p *Pendulum) SmallAnglePeriod() float64 {
	return 2 * math.Pi * math.Sqrt(p.p.Length/p.p.Gravity)
}

func (p *Pendulum) ParamMap() map[string]float64 {
	return map[string]float64{
		"length":  p.p.Length,
		"gravity": p.p.Gravity,
		"damping": p.p.Damping,
		"mass":    p.p.Mass,
	}
}
