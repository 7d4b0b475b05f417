package integrators

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// MaxSteps bounds a single integration run.
const MaxSteps = 1 << 28

// RK4 is the classical fixed-step fourth-order Runge-Kutta scheme.
// It holds no per-run state, so one value may serve concurrent runs.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

type workspace struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func newWorkspace(n int) *workspace {
	return &workspace{
		k1:      make(dynamo.State, n),
		k2:      make(dynamo.State, n),
		k3:      make(dynamo.State, n),
		k4:      make(dynamo.State, n),
		scratch: make(dynamo.State, n),
	}
}

func (w *workspace) step(f dynamo.VectorField, t float64, x dynamo.State, dt float64) dynamo.State {
	n := len(x)

	copy(w.k1, f.Derive(t, x))

	for i := 0; i < n; i++ {
		w.scratch[i] = x[i] + dt*0.5*w.k1[i]
	}
	copy(w.k2, f.Derive(t+dt*0.5, w.scratch))

	for i := 0; i < n; i++ {
		w.scratch[i] = x[i] + dt*0.5*w.k2[i]
	}
	copy(w.k3, f.Derive(t+dt*0.5, w.scratch))

	for i := 0; i < n; i++ {
		w.scratch[i] = x[i] + dt*w.k3[i]
	}
	copy(w.k4, f.Derive(t+dt, w.scratch))

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(w.k1[i]+2*w.k2[i]+2*w.k3[i]+w.k4[i])
	}

	return result
}

// Step advances x by a single step of width dt starting at time t.
func (r *RK4) Step(f dynamo.VectorField, t float64, x dynamo.State, dt float64) dynamo.State {
	return newWorkspace(len(x)).step(f, t, x, dt)
}

// Integrate advances x0 from t0 to tEnd with step h and returns every sample,
// the initial condition included. The run takes ceil((tEnd-t0)/h) steps; the
// last one is shortened so the final sample lands exactly on tEnd.
func (r *RK4) Integrate(f dynamo.VectorField, x0 dynamo.State, t0, tEnd, h float64) (*dynamo.Trajectory, error) {
	if f == nil {
		return nil, errorsmod.Wrap(dynamo.ErrInvalidParameter, "nil vector field")
	}
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return nil, dynamo.InvalidStep("step", h)
	}
	span := tEnd - t0
	if math.IsNaN(span) || math.IsInf(span, 0) || span <= 0 {
		return nil, dynamo.InvalidStep("span", span)
	}
	if len(x0) != f.StateDim() {
		return nil, dynamo.InvalidParam("state dimension", float64(len(x0)))
	}
	if !x0.IsValid() {
		return nil, &dynamo.SimulationError{Step: 0, Time: t0, State: x0.Clone(), Wrapped: dynamo.ErrNonFiniteState}
	}

	if h < ulp(math.Max(math.Abs(t0), math.Abs(tEnd))) {
		return nil, errorsmod.Wrapf(dynamo.ErrInvalidStep, "step %g is below the time resolution at t=%g", h, tEnd)
	}

	steps, err := StepCount(t0, tEnd, h)
	if err != nil {
		return nil, err
	}

	times := make([]float64, 0, steps+1)
	states := make([]dynamo.State, 0, steps+1)

	ws := newWorkspace(len(x0))
	x := x0.Clone()
	t := t0

	times = append(times, t)
	states = append(states, x)

	for i := 0; i < steps; i++ {
		next := t0 + float64(i+1)*h
		if i == steps-1 {
			next = tEnd
		}

		x = ws.step(f, t, x, next-t)
		if !x.IsValid() {
			return nil, &dynamo.SimulationError{Step: i + 1, Time: next, State: x, Wrapped: dynamo.ErrNonFiniteState}
		}
		t = next

		times = append(times, t)
		states = append(states, x)
	}

	return dynamo.NewTrajectory(h, times, states), nil
}

// StepCount is ceil((tEnd-t0)/h). A ratio that sits within floating-point
// rounding of an integer is taken as that integer so representation error in
// the span cannot add a sliver step. Any larger remainder gets its own
// shortened step.
func StepCount(t0, tEnd, h float64) (int, error) {
	ratio := (tEnd - t0) / h
	if ratio > MaxSteps {
		return 0, dynamo.InvalidStep("step", h)
	}

	n := math.Round(ratio)
	tol := 4*ulp(ratio) + (ulp(t0)+ulp(tEnd))/h
	if n >= 1 && math.Abs(ratio-n) <= tol {
		return int(n), nil
	}
	return int(math.Ceil(ratio)), nil
}

// ulp is the gap between |x| and the next larger float64.
func ulp(x float64) float64 {
	x = math.Abs(x)
	return math.Nextafter(x, math.Inf(1)) - x
}
