package export

import (
	"fmt"
	"math"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG draws every set braille dot as a circle, scale pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.DotWidth())*scale, float64(canvas.DotHeight())*scale)
	sb.WriteString(`<g fill="#00ff00">` + "\n")

	r := scale * 0.4
	for y := 0; y < canvas.DotHeight(); y++ {
		for x := 0; x < canvas.DotWidth(); x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// PortraitSVG rasterizes a phase portrait onto a cols x rows braille canvas,
// with the same margins as PathSVG, and renders it with CanvasToSVG.
func PortraitSVG(portrait *analysis.PhasePortrait2D, cols, rows int, scale float64) (string, error) {
	if cols < 1 || rows < 1 {
		return "", errorsmod.Wrapf(dynamo.ErrInvalidParameter, "canvas %dx%d", cols, rows)
	}
	if portrait == nil || len(portrait.Points) == 0 {
		return "", errorsmod.Wrap(dynamo.ErrInsufficientData, "empty phase portrait")
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, rangeX := paddedRange(xs)
	minY, rangeY := paddedRange(ys)

	canvas := viz.NewCanvas(cols, rows)
	maxX, maxY := float64(canvas.DotWidth()-1), float64(canvas.DotHeight()-1)
	for i := range xs {
		x := int(math.Round((xs[i] - minX) / rangeX * maxX))
		y := int(maxY - math.Round((ys[i]-minY)/rangeY*maxY))
		canvas.Set(x, y)
	}
	return CanvasToSVG(canvas, scale), nil
}

// PathSVG plots ys against xs as one polyline with a 10% margin around the
// data. A flat axis is given unit range.
func PathSVG(xs, ys []float64, width, height int, stroke string) (string, error) {
	if len(xs) != len(ys) {
		return "", errorsmod.Wrapf(dynamo.ErrInvalidParameter, "%d x values for %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return "", errorsmod.Wrapf(dynamo.ErrInsufficientData, "%d points", len(xs))
	}

	minX, rangeX := paddedRange(xs)
	minY, rangeY := paddedRange(ys)
	w, h := float64(width), float64(height)

	var sb strings.Builder
	header(&sb, w, h)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i := range xs {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, (xs[i]-minX)/rangeX*w, h-(ys[i]-minY)/rangeY*h)
	}
	sb.WriteString("\"/>\n</svg>\n")
	return sb.String(), nil
}

func paddedRange(v []float64) (lo, span float64) {
	lo, hi := floats.Min(v), floats.Max(v)
	span = hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.1*span, 1.2 * span
}
