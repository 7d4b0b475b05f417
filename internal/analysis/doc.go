// Package analysis estimates oscillation properties from a trajectory.
//
//   - [ZeroCrossingPeriod], [PeakPeriod], [SpectralPeriod]: numerical period
//   - [PhasePortrait]: (position, velocity) plane of a diagnostic series
//   - [StroboscopicSection]: samples once per drive period
//
// The numerical period of an undamped pendulum can be compared against
// analytic.ExactPeriod:
//
//	measured, _ := analysis.ZeroCrossingPeriod(tr)
//	exact, _ := analytic.ExactPeriod(analysis.Amplitude(tr), L, g)
package analysis
