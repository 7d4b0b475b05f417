package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/oscsim/internal/diagnostics"
	"github.com/san-kum/oscsim/internal/dynamo"
)

type PhasePoint struct{ X, Y float64 }

// PhasePortrait2D holds the points of a (position, velocity) plot.
type PhasePortrait2D struct {
	Points []PhasePoint
}

// PhasePortrait reads the phase-space points of a diagnostic series.
func PhasePortrait(series diagnostics.Series) *PhasePortrait2D {
	portrait := &PhasePortrait2D{Points: make([]PhasePoint, series.Len())}
	for i := range portrait.Points {
		p := series.At(i)
		portrait.Points[i] = PhasePoint{X: p.Position, Y: p.Velocity}
	}
	return portrait
}

// StroboscopicSection samples the trajectory at t0 + n*period, interpolating
// linearly between samples. For a driven oscillator with the drive period this
// is the Poincaré section: a steady periodic response collapses to one point.
func StroboscopicSection(tr *dynamo.Trajectory, period float64) *PhasePortrait2D {
	section := &PhasePortrait2D{Points: make([]PhasePoint, 0)}
	if period <= 0 || tr.Len() < 2 {
		return section
	}

	times, xs, vs := tr.Times(), tr.Positions(), tr.Velocities()
	t0, tEnd := times[0], times[len(times)-1]

	j := 1
	for n := 0; ; n++ {
		t := t0 + float64(n)*period
		if t > tEnd {
			break
		}
		for j < len(times)-1 && times[j] < t {
			j++
		}
		frac := 0.0
		if span := times[j] - times[j-1]; span > 0 {
			frac = (t - times[j-1]) / span
		}
		frac = math.Max(0, math.Min(1, frac))
		section.Points = append(section.Points, PhasePoint{
			X: xs[j-1] + frac*(xs[j]-xs[j-1]),
			Y: vs[j-1] + frac*(vs[j]-vs[j-1]),
		})
	}

	return section
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
