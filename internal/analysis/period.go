package analysis

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// ZeroCrossingPeriod is the mean spacing of upward crossings of the
// position through zero, located by linear interpolation.
func ZeroCrossingPeriod(tr *dynamo.Trajectory) (float64, error) {
	return CrossingPeriod(tr.Times(), tr.Positions(), 0)
}

// CrossingPeriod is the mean spacing of upward crossings of level.
func CrossingPeriod(times, xs []float64, level float64) (float64, error) {
	crossings := make([]float64, 0)
	for i := 1; i < len(xs); i++ {
		a, b := xs[i-1]-level, xs[i]-level
		if a < 0 && b >= 0 {
			frac := a / (a - b)
			crossings = append(crossings, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return meanSpacing(crossings, "crossings")
}

// PeakPeriod is the mean spacing of local maxima of the position, each
// refined by a parabola through the peak sample and its neighbours.
func PeakPeriod(tr *dynamo.Trajectory) (float64, error) {
	times, xs := tr.Times(), tr.Positions()

	peaks := make([]float64, 0)
	for i := 1; i < len(xs)-1; i++ {
		if !(xs[i] > xs[i-1] && xs[i] >= xs[i+1]) {
			continue
		}
		t := times[i]
		curv := xs[i-1] - 2*xs[i] + xs[i+1]
		if curv != 0 {
			h := (times[i+1] - times[i-1]) / 2
			t += 0.5 * (xs[i-1] - xs[i+1]) / curv * h
		}
		peaks = append(peaks, t)
	}
	return meanSpacing(peaks, "peaks")
}

// Amplitude is the largest absolute position reached.
func Amplitude(tr *dynamo.Trajectory) float64 {
	xs := tr.Positions()
	return math.Max(math.Abs(floats.Min(xs)), math.Abs(floats.Max(xs)))
}

func meanSpacing(events []float64, what string) (float64, error) {
	if len(events) < 2 {
		return 0, errorsmod.Wrapf(dynamo.ErrInsufficientData, "need at least two %s, found %d", what, len(events))
	}

	gaps := make([]float64, len(events)-1)
	for i := range gaps {
		gaps[i] = events[i+1] - events[i]
	}
	return stat.Mean(gaps, nil), nil
}
