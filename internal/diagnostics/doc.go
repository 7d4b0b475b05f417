// Package diagnostics derives energy and phase-space series from a trajectory.
//
// A [Series] is a pure function of a [dynamo.Trajectory] and the
// [dynamo.EnergyModel] that produced it; recomputing it always yields the
// same values. Samples are independent, so [ComputeParallel] splits the work
// across goroutines without changing the result.
//
// For a driven model [Series.Conservative] is false: the total energy is
// reported but is not expected to stay constant.
package diagnostics
