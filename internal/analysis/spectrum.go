package analysis

import (
	"math/cmplx"

	errorsmod "cosmossdk.io/errors"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// after removing its mean. Empty input yields an empty spectrum.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return []float64{}
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// SpectralPeriod is the period of the dominant frequency of the position.
// Only the uniformly spaced samples are used; the peak bin is refined by
// parabolic interpolation.
func SpectralPeriod(tr *dynamo.Trajectory) (float64, error) {
	n := tr.Uniform()
	if n < 8 {
		return 0, errorsmod.Wrapf(dynamo.ErrInsufficientData, "need at least 8 uniform samples, found %d", n)
	}

	ps := PowerSpectrum(tr.Positions()[:n])

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0, errorsmod.Wrap(dynamo.ErrInsufficientData, "signal has no oscillating component")
	}

	bin := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			bin += 0.5 * (a - c) / denom
		}
	}

	return float64(n) * tr.Step() / bin, nil
}
