package analytic

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

const (
	// AGMTolerance is the relative agreement of the AGM terms at which
	// CompleteK stops iterating.
	AGMTolerance = 1e-12

	maxAGMIterations = 64
)

// CompleteK is the complete elliptic integral of the first kind, K(m), with
// parameter m = k^2. It is evaluated as pi / (2 * AGM(1, sqrt(1-m))).
// The domain is 0 <= m < 1.
func CompleteK(m float64) (float64, error) {
	if math.IsNaN(m) || m < 0 || m >= 1 {
		return 0, dynamo.OutOfDomain("m", m)
	}

	a, b := 1.0, math.Sqrt(1-m)
	for i := 0; i < maxAGMIterations && math.Abs(a-b) > AGMTolerance*a; i++ {
		a, b = (a+b)/2, math.Sqrt(a*b)
	}

	return math.Pi / (a + b), nil
}

// SmallAnglePeriod is 2*pi*sqrt(L/g).
func SmallAnglePeriod(length, gravity float64) (float64, error) {
	if err := checkPendulum(length, gravity); err != nil {
		return 0, err
	}
	return 2 * math.Pi * math.Sqrt(length/gravity), nil
}

// ExactPeriod is the period of an undamped pendulum released from rest at
// amplitude thetaMax:
//
//	T = 4 * sqrt(L/g) * K(sin^2(thetaMax/2))
//
// thetaMax must lie in [0, pi); the period diverges at the inversion point.
func ExactPeriod(thetaMax, length, gravity float64) (float64, error) {
	if err := checkPendulum(length, gravity); err != nil {
		return 0, err
	}

	k, err := kForAmplitude(thetaMax)
	if err != nil {
		return 0, err
	}

	return 4 * math.Sqrt(length/gravity) * k, nil
}

// PeriodRatio is T/T0, the stretch of the exact period over the small-angle
// one. It does not depend on L or g.
func PeriodRatio(thetaMax float64) (float64, error) {
	k, err := kForAmplitude(thetaMax)
	if err != nil {
		return 0, err
	}
	return 2 * k / math.Pi, nil
}

func kForAmplitude(thetaMax float64) (float64, error) {
	if math.IsNaN(thetaMax) || thetaMax < 0 || thetaMax >= math.Pi {
		return 0, dynamo.OutOfDomain("thetaMax", thetaMax)
	}

	s := math.Sin(thetaMax / 2)
	k, err := CompleteK(s * s)
	if err != nil {
		// sin^2 rounds to 1 just below pi
		return 0, dynamo.OutOfDomain("thetaMax", thetaMax)
	}
	return k, nil
}

func checkPendulum(length, gravity float64) error {
	if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
		return dynamo.InvalidParam("length", length)
	}
	if math.IsNaN(gravity) || math.IsInf(gravity, 0) || gravity <= 0 {
		return dynamo.InvalidParam("gravity", gravity)
	}
	return nil
}

// TurningAngle is the amplitude an undamped pendulum reaches from state
// (theta, omega), found by equating energies at the turning point. States at
// or above the separatrix never turn and are a DomainError.
func TurningAngle(theta, omega, length, gravity float64) (float64, error) {
	if err := checkPendulum(length, gravity); err != nil {
		return 0, err
	}
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return 0, dynamo.OutOfDomain("theta", theta)
	}
	if math.IsNaN(omega) || math.IsInf(omega, 0) {
		return 0, dynamo.OutOfDomain("omega", omega)
	}

	c := 1 - math.Cos(theta) + length*omega*omega/(2*gravity)
	if c >= 2 {
		return 0, dynamo.OutOfDomain("energy", c)
	}
	return math.Acos(1 - c), nil
}
