package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/analytic"
	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/diagnostics"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/physics"
)

// parallelSamples is the trajectory length from which diagnostics are
// evaluated in parallel chunks.
const parallelSamples = 1 << 16

type Experiment struct {
	cfg        *config.Config
	model      Model
	integrator *integrators.RK4
}

type Result struct {
	Config     *config.Config
	Model      Model
	Trajectory *dynamo.Trajectory
	Series     diagnostics.Series
}

// New builds the model named by cfg. The config is copied.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	cfg = cfg.Clone()
	model, err := reg.GetModel(cfg)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:        cfg,
		model:      model,
		integrator: integrators.NewRK4(),
	}, nil
}

func (e *Experiment) Model() Model { return e.model }

// Run integrates the configured span. The context is only checked before the
// integration starts.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x0 := dynamo.State(e.cfg.GetInitState())
	t0 := e.cfg.Start
	tr, err := e.integrator.Integrate(e.model, x0, t0, t0+e.cfg.Duration, e.cfg.Dt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.cfg.Model, err)
	}

	var series diagnostics.Series
	if tr.Len() >= parallelSamples {
		series = diagnostics.ComputeParallel(tr, e.model, runtime.GOMAXPROCS(0))
	} else {
		series = diagnostics.Compute(tr, e.model)
	}

	return &Result{
		Config:     e.cfg,
		Model:      e.model,
		Trajectory: tr,
		Series:     series,
	}, nil
}

// Report is the scalar summary of a run. Periods holds only the estimates
// that could be formed; keys are "exact", "linear", "zero_crossing", "peak"
// and "spectral". ClosedFormError is the largest deviation of an unforced
// spring run from its analytic free response.
type Report struct {
	Model           string              `json:"model"`
	Params          map[string]float64  `json:"params"`
	Dt              float64             `json:"dt"`
	Duration        float64             `json:"duration"`
	Samples         int                 `json:"samples"`
	Conservative    bool                `json:"conservative"`
	Regime          string              `json:"regime"`
	Energy          diagnostics.Summary `json:"energy"`
	Amplitude       float64             `json:"amplitude"`
	Periods         map[string]float64  `json:"periods"`
	ClosedFormError float64             `json:"closed_form_error,omitempty"`
	Drive           *DriveReport        `json:"drive,omitempty"`
}

// DriveReport describes the steady-state response to a sine drive.
// Resonance is omitted when the damping is too heavy for a peak.
type DriveReport struct {
	Frequency       float64 `json:"frequency"`
	SteadyAmplitude float64 `json:"steady_amplitude"`
	PhaseLag        float64 `json:"phase_lag"`
	Resonance       float64 `json:"resonance,omitempty"`
}

func (r *Result) Report() Report {
	rep := Report{
		Model:        r.Config.Model,
		Params:       r.Model.ParamMap(),
		Dt:           r.Config.Dt,
		Duration:     r.Config.Duration,
		Samples:      r.Trajectory.Len(),
		Conservative: r.Series.Conservative,
		Energy:       r.Series.Summary(),
		Amplitude:    analysis.Amplitude(r.Trajectory),
		Periods:      make(map[string]float64),
	}

	if p, err := analysis.ZeroCrossingPeriod(r.Trajectory); err == nil {
		rep.Periods["zero_crossing"] = p
	}
	if p, err := analysis.PeakPeriod(r.Trajectory); err == nil {
		rep.Periods["peak"] = p
	}
	if p, err := analysis.SpectralPeriod(r.Trajectory); err == nil {
		rep.Periods["spectral"] = p
	}

	switch m := r.Model.(type) {
	case *physics.Pendulum:
		rep.Regime = analytic.Classify(m.DampingRatio()).String()
		rep.Periods["linear"] = m.SmallAnglePeriod()
		if p, err := ExactPeriod(m, r.Trajectory.At(0).X); err == nil {
			rep.Periods["exact"] = p
		}
	case *physics.SpringMass:
		rep.Regime = analytic.Classify(m.DampingRatio()).String()
		rep.Periods["linear"] = m.NaturalPeriod()
		if !m.Driven() {
			if e, err := closedFormError(r.Trajectory, m); err == nil {
				rep.ClosedFormError = e
			}
		}
		if drive, err := steadyDrive(m.Params(), r.Config.Spring.Forcing); err == nil {
			rep.Drive = drive
		}
	}
	return rep
}

func closedFormError(tr *dynamo.Trajectory, m *physics.SpringMass) (float64, error) {
	start := tr.At(0)
	exact, err := analytic.FreeResponse(m.NaturalFrequency(), m.DampingRatio(), start.X.Position(), start.X.Velocity())
	if err != nil {
		return 0, err
	}

	worst := 0.0
	times, xs := tr.Times(), tr.Positions()
	for i, t := range times {
		worst = math.Max(worst, math.Abs(xs[i]-exact(t-start.T)))
	}
	return worst, nil
}

// steadyDrive returns nil, nil when the forcing is not a sine drive.
func steadyDrive(p physics.SpringParams, fc config.ForcingConfig) (*DriveReport, error) {
	if _, ok := fc.Period(); !ok {
		return nil, nil
	}

	amp, lag, err := analytic.SteadyState(p.Mass, p.Damping, p.Stiffness, fc.Amplitude, fc.Frequency)
	if err != nil {
		return nil, err
	}
	drive := &DriveReport{Frequency: fc.Frequency, SteadyAmplitude: amp, PhaseLag: lag}

	res, ok, err := analytic.ResonanceFrequency(p.Mass, p.Damping, p.Stiffness)
	if err != nil {
		return nil, err
	}
	if ok {
		drive.Resonance = res
	}
	return drive, nil
}

// ExactPeriod is the elliptic-integral period of an undamped pendulum
// started from x0.
func ExactPeriod(p *physics.Pendulum, x0 dynamo.State) (float64, error) {
	params := p.Params()
	if params.Damping != 0 {
		return 0, dynamo.OutOfDomain("damping", params.Damping)
	}
	amp, err := analytic.TurningAngle(x0.Position(), x0.Velocity(), params.Length, params.Gravity)
	if err != nil {
		return 0, err
	}
	return analytic.ExactPeriod(amp, params.Length, params.Gravity)
}
