package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Point is one diagnostic sample. Position and Velocity are the phase-space
// coordinates copied verbatim from the trajectory.
type Point struct {
	T         float64 `json:"t"`
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
	Position  float64 `json:"x"`
	Velocity  float64 `json:"v"`
}

// Series is aligned index-for-index with the trajectory it was computed from.
type Series struct {
	Kind         dynamo.ModelKind
	Conservative bool
	points       []Point
}

type kinded interface {
	Kind() dynamo.ModelKind
}

// Compute evaluates the energies of every sample of tr under model.
func Compute(tr *dynamo.Trajectory, model dynamo.EnergyModel) Series {
	s := newSeries(tr, model)
	fill(s.points, tr, model, 0, tr.Len())
	return s
}

// ComputeParallel is Compute with samples evaluated in parallel chunks.
// The result is identical to Compute.
func ComputeParallel(tr *dynamo.Trajectory, model dynamo.EnergyModel, workers int) Series {
	s := newSeries(tr, model)
	dynamo.ParallelFor(tr.Len(), 1024, workers, func(start, end int) {
		fill(s.points, tr, model, start, end)
	})
	return s
}

func newSeries(tr *dynamo.Trajectory, model dynamo.EnergyModel) Series {
	s := Series{
		Conservative: model.Conservative(),
		points:       make([]Point, tr.Len()),
	}
	if k, ok := model.(kinded); ok {
		s.Kind = k.Kind()
	}
	return s
}

func fill(dst []Point, tr *dynamo.Trajectory, model dynamo.EnergyModel, start, end int) {
	for i := start; i < end; i++ {
		sample := tr.At(i)
		ke, pe := model.Energies(sample.X)
		dst[i] = Point{
			T:         sample.T,
			Kinetic:   ke,
			Potential: pe,
			Total:     ke + pe,
			Position:  sample.X[0],
			Velocity:  sample.X[1],
		}
	}
}

func (s Series) Len() int         { return len(s.points) }
func (s Series) At(i int) Point   { return s.points[i] }
func (s Series) Times() []float64 { return s.column(func(p Point) float64 { return p.T }) }

func (s Series) Points() []Point {
	c := make([]Point, len(s.points))
	copy(c, s.points)
	return c
}

func (s Series) Totals() []float64    { return s.column(func(p Point) float64 { return p.Total }) }
func (s Series) Kinetic() []float64   { return s.column(func(p Point) float64 { return p.Kinetic }) }
func (s Series) Potential() []float64 { return s.column(func(p Point) float64 { return p.Potential }) }
func (s Series) Positions() []float64 { return s.column(func(p Point) float64 { return p.Position }) }
func (s Series) Velocities() []float64 {
	return s.column(func(p Point) float64 { return p.Velocity })
}

func (s Series) column(get func(Point) float64) []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = get(p)
	}
	return out
}

// Drift is the largest deviation of the total energy from the first sample,
// relative to it. When the initial energy is zero the deviation is absolute.
func (s Series) Drift() float64 {
	if len(s.points) == 0 {
		return 0
	}

	e0 := s.points[0].Total
	maxDrift := 0.0
	for _, p := range s.points {
		drift := math.Abs(p.Total - e0)
		if e0 != 0 {
			drift /= math.Abs(e0)
		}
		maxDrift = math.Max(maxDrift, drift)
	}
	return maxDrift
}

// Decreasing reports whether the total energy strictly decreases between
// every pair of consecutive samples.
func (s Series) Decreasing() bool {
	for i := 1; i < len(s.points); i++ {
		if s.points[i].Total >= s.points[i-1].Total {
			return false
		}
	}
	return true
}

type Summary struct {
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	Initial float64
	Final   float64
	Drift   float64
}

// Summary describes the total-energy column.
func (s Series) Summary() Summary {
	if len(s.points) == 0 {
		return Summary{}
	}

	totals := s.Totals()
	sum := Summary{
		Mean:    stat.Mean(totals, nil),
		Min:     floats.Min(totals),
		Max:     floats.Max(totals),
		Initial: totals[0],
		Final:   totals[len(totals)-1],
		Drift:   s.Drift(),
	}
	if len(totals) > 1 {
		sum.StdDev = stat.StdDev(totals, nil)
	}
	return sum
}
