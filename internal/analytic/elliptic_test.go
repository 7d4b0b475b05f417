package analytic

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mathext"

	"github.com/san-kum/oscsim/internal/dynamo"
)

func TestCompleteKMatchesReference(t *testing.T) {
	g := NewWithT(t)

	for _, m := range []float64{0, 1e-9, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99, 0.999999} {
		k, err := CompleteK(m)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(k).To(BeNumerically("~", mathext.CompleteK(m), 1e-10*mathext.CompleteK(m)), "m=%g", m)
	}
}

func TestCompleteKKnownValues(t *testing.T) {
	g := NewWithT(t)

	k0, _ := CompleteK(0)
	g.Expect(k0).To(BeNumerically("~", math.Pi/2, 1e-15))

	kHalf, _ := CompleteK(0.5)
	g.Expect(kHalf).To(BeNumerically("~", 1.8540746773013719, 1e-14))
}

func TestCompleteKDomain(t *testing.T) {
	g := NewWithT(t)

	for _, m := range []float64{-0.1, 1, 1.5, math.NaN()} {
		_, err := CompleteK(m)
		g.Expect(err).To(MatchError(dynamo.ErrDomain), "m=%g", m)
	}
}

func TestExactPeriodQuarterTurn(t *testing.T) {
	g := NewWithT(t)

	t0, err := SmallAnglePeriod(1, 9.81)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(t0).To(BeNumerically("~", 2.0060, 1e-4))

	period, err := ExactPeriod(math.Pi/2, 1, 9.81)
	g.Expect(err).NotTo(HaveOccurred())

	ratio, err := PeriodRatio(math.Pi / 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ratio).To(BeNumerically("~", 1.1804, 1e-4))
	g.Expect(period).To(BeNumerically("~", ratio*t0, 1e-12))
	g.Expect(period).To(BeNumerically("~", 2.3679, 1e-4))
}

func TestExactPeriodSmallAngleLimit(t *testing.T) {
	g := NewWithT(t)
	t0, _ := SmallAnglePeriod(2.5, 9.81)

	for _, theta := range []float64{1e-2, 1e-3, 1e-4, 0} {
		period, err := ExactPeriod(theta, 2.5, 9.81)
		g.Expect(err).NotTo(HaveOccurred())
		// T/T0 = 1 + theta^2/16 + ...
		g.Expect(math.Abs(period-t0) / t0).To(BeNumerically("<=", theta*theta/16*(1+theta*theta)+1e-12))
	}

	tiny, _ := ExactPeriod(1e-3, 2.5, 9.81)
	g.Expect(math.Abs(tiny-t0) / t0).To(BeNumerically("<", 1e-6))
}

func TestExactPeriodMonotonicInAmplitude(t *testing.T) {
	prev := 0.0
	for theta := 0.0; theta < math.Pi-0.01; theta += 0.1 {
		period, err := ExactPeriod(theta, 1, 9.81)
		if err != nil {
			t.Fatal(err)
		}
		if period <= prev {
			t.Fatalf("period not increasing at theta=%.2f: %f <= %f", theta, period, prev)
		}
		prev = period
	}
}

func TestExactPeriodErrors(t *testing.T) {
	tests := []struct {
		name   string
		theta  float64
		length float64
		g      float64
		kind   error
	}{
		{"inversion point", math.Pi, 1, 9.81, dynamo.ErrDomain},
		{"beyond inversion", 4, 1, 9.81, dynamo.ErrDomain},
		{"negative amplitude", -0.1, 1, 9.81, dynamo.ErrDomain},
		{"NaN amplitude", math.NaN(), 1, 9.81, dynamo.ErrDomain},
		{"rounds onto inversion", math.Nextafter(math.Pi, 0), 1, 9.81, dynamo.ErrDomain},
		{"zero length", 0.5, 0, 9.81, dynamo.ErrInvalidParameter},
		{"negative gravity", 0.5, 1, -9.81, dynamo.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NewWithT(t).Expect(ExactPeriod(tt.theta, tt.length, tt.g)).Error().To(MatchError(tt.kind))
		})
	}
}

func TestTurningAngle(t *testing.T) {
	g := NewWithT(t)

	// released from rest the amplitude is the release angle, wrapped into [0, pi)
	a, err := TurningAngle(-1.2, 0, 1, 9.81)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(a).To(BeNumerically("~", 1.2, 1e-12))

	// from the bottom with speed omega: 1-cos(a) = L omega^2 / 2g
	a, err = TurningAngle(0, 2, 2, 9.81)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(1 - math.Cos(a)).To(BeNumerically("~", 2*4/(2*9.81), 1e-12))

	// enough speed to go over the top
	_, err = TurningAngle(0, 10, 1, 9.81)
	g.Expect(err).To(MatchError(dynamo.ErrDomain))

	_, err = TurningAngle(0, 1, 0, 9.81)
	g.Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
}
