package analytic

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// CriticalTolerance is how close zeta must be to 1 to be treated as critical.
const CriticalTolerance = 1e-9

type Regime int

const (
	Undamped Regime = iota
	Underdamped
	CriticallyDamped
	Overdamped
)

func (r Regime) String() string {
	switch r {
	case Undamped:
		return "undamped"
	case Underdamped:
		return "underdamped"
	case CriticallyDamped:
		return "critically damped"
	case Overdamped:
		return "overdamped"
	default:
		return "unknown"
	}
}

// Classify maps a damping ratio onto its regime.
func Classify(zeta float64) Regime {
	switch {
	case zeta == 0:
		return Undamped
	case math.Abs(zeta-1) <= CriticalTolerance:
		return CriticallyDamped
	case zeta < 1:
		return Underdamped
	default:
		return Overdamped
	}
}

// FreeResponse returns x(t) for x'' + 2*zeta*omegaN*x' + omegaN^2*x = 0 with
// x(0) = x0, x'(0) = v0.
func FreeResponse(omegaN, zeta, x0, v0 float64) (func(t float64) float64, error) {
	if math.IsNaN(omegaN) || math.IsInf(omegaN, 0) || omegaN <= 0 {
		return nil, dynamo.InvalidParam("omegaN", omegaN)
	}
	if math.IsNaN(zeta) || math.IsInf(zeta, 0) || zeta < 0 {
		return nil, dynamo.InvalidParam("zeta", zeta)
	}

	switch Classify(zeta) {
	case CriticallyDamped:
		b := v0 + omegaN*x0
		return func(t float64) float64 {
			return math.Exp(-omegaN*t) * (x0 + b*t)
		}, nil

	case Overdamped:
		root := math.Sqrt(zeta*zeta - 1)
		s1 := -omegaN * (zeta - root)
		s2 := -omegaN * (zeta + root)
		a := (v0 - s2*x0) / (s1 - s2)
		b := x0 - a
		return func(t float64) float64 {
			return a*math.Exp(s1*t) + b*math.Exp(s2*t)
		}, nil

	default:
		decay := zeta * omegaN
		omegaD := omegaN * math.Sqrt(1-zeta*zeta)
		b := (v0 + decay*x0) / omegaD
		return func(t float64) float64 {
			return math.Exp(-decay*t) * (x0*math.Cos(omegaD*t) + b*math.Sin(omegaD*t))
		}, nil
	}
}

// SteadyState is the long-time response of m*x'' + c*x' + k*x = F0*cos(omega*t),
// x(t) = amplitude * cos(omega*t - phase).
func SteadyState(m, c, k, f0, omega float64) (amplitude, phase float64, err error) {
	if err := checkSpring(m, c, k); err != nil {
		return 0, 0, err
	}

	re := k - m*omega*omega
	im := c * omega
	denom := math.Hypot(re, im)
	if denom == 0 {
		return 0, 0, dynamo.OutOfDomain("omega", omega)
	}

	return f0 / denom, math.Atan2(im, re), nil
}

// ResonanceFrequency is the driving frequency of peak steady-state amplitude,
// omegaN*sqrt(1-2*zeta^2). ok is false when zeta >= 1/sqrt(2) and the
// response has no peak.
func ResonanceFrequency(m, c, k float64) (omega float64, ok bool, err error) {
	if err := checkSpring(m, c, k); err != nil {
		return 0, false, err
	}

	omegaN := math.Sqrt(k / m)
	zeta := c / (2 * math.Sqrt(k*m))
	r := 1 - 2*zeta*zeta
	if r <= 0 {
		return 0, false, nil
	}
	return omegaN * math.Sqrt(r), true, nil
}

func checkSpring(m, c, k float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		return dynamo.InvalidParam("mass", m)
	}
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return dynamo.InvalidParam("damping", c)
	}
	if math.IsNaN(k) || math.IsInf(k, 0) || k <= 0 {
		return dynamo.InvalidParam("stiffness", k)
	}
	return nil
}
