package dynamo

import "math"

// State is a generalized (position, velocity) pair.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Position() float64 { return s[0] }
func (s State) Velocity() float64 { return s[1] }

// VectorField is a first-order ODE system dx/dt = f(t, x).
// Implementations must be pure: no side effects, no hidden state.
type VectorField interface {
	Derive(t float64, x State) State
	StateDim() int
}

// EnergyModel splits the mechanical energy of a state.
type EnergyModel interface {
	Energies(x State) (kinetic, potential float64)
	// Conservative is false when an external force does work on the system.
	Conservative() bool
}

// ModelKind identifies a physical model.
type ModelKind int

const (
	ModelPendulum ModelKind = iota + 1
	ModelSpring
)

func (k ModelKind) String() string {
	switch k {
	case ModelPendulum:
		return "pendulum"
	case ModelSpring:
		return "spring"
	default:
		return "unknown"
	}
}

type Sample struct {
	T float64
	X State
}

// Trajectory is an immutable sequence of samples produced by one integration.
type Trajectory struct {
	step   float64
	times  []float64
	states []State
}

// NewTrajectory takes ownership of times and states; callers must not retain them.
func NewTrajectory(step float64, times []float64, states []State) *Trajectory {
	if len(times) != len(states) {
		panic("dynamo: trajectory times and states differ in length")
	}
	return &Trajectory{step: step, times: times, states: states}
}

func (tr *Trajectory) Len() int { return len(tr.times) }

// Step is the nominal step size; the final interval may be shorter.
func (tr *Trajectory) Step() float64 { return tr.step }

func (tr *Trajectory) Time(i int) float64 { return tr.times[i] }

func (tr *Trajectory) At(i int) Sample {
	return Sample{T: tr.times[i], X: tr.states[i].Clone()}
}

func (tr *Trajectory) Final() Sample { return tr.At(tr.Len() - 1) }

func (tr *Trajectory) Times() []float64 {
	c := make([]float64, len(tr.times))
	copy(c, tr.times)
	return c
}

// Component returns the i-th state component of every sample.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.states))
	for n, s := range tr.states {
		out[n] = s[i]
	}
	return out
}

func (tr *Trajectory) Positions() []float64  { return tr.Component(0) }
func (tr *Trajectory) Velocities() []float64 { return tr.Component(1) }

// Uniform returns how many leading samples are spaced exactly one step apart.
// Only the clamped final interval can break uniformity.
func (tr *Trajectory) Uniform() int {
	n := len(tr.times)
	if n < 2 {
		return n
	}
	last := tr.times[n-1] - tr.times[n-2]
	if math.Abs(last-tr.step) > 1e-9*tr.step {
		return n - 1
	}
	return n
}

// Equal reports bit-identical samples.
func (tr *Trajectory) Equal(other *Trajectory) bool {
	if tr.Len() != other.Len() || tr.step != other.step {
		return false
	}
	for i := range tr.times {
		if math.Float64bits(tr.times[i]) != math.Float64bits(other.times[i]) {
			return false
		}
		a, b := tr.states[i], other.states[i]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if math.Float64bits(a[j]) != math.Float64bits(b[j]) {
				return false
			}
		}
	}
	return true
}
