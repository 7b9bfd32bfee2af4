// Package canvas maps device coordinates onto the fixed virtual canvas.
//
// Every pointer event arrives in viewport coordinates (pixels, terminal
// cells, whatever the host surface uses). The [Viewport] transform converts
// those into virtual-canvas units, the only space the layout model knows.
// The transform is stateless: hosts must rebuild it from the surface's
// current bounding box on every event, because the surface can move or
// resize under scroll at any time.
package canvas

import (
	"math"

	"github.com/matzehuels/floorplan/pkg/plan"
)

// Point is a position in virtual-canvas units. Gesture math runs on floats;
// geometry is snapped back to integers before it touches the model.
type Point struct {
	X, Y float64
}

// Viewport is the on-screen bounding box of the rendering surface, in the
// host's own coordinates.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
}

// FullCanvas returns a viewport that renders the canvas 1:1, useful for
// tests and for hosts whose surface is already in canvas units.
func FullCanvas() Viewport {
	return Viewport{Width: plan.CanvasWidth, Height: plan.CanvasHeight}
}

// ToCanvas converts a point in viewport coordinates to canvas units.
// A degenerate viewport (zero or negative size) maps everything to the
// canvas origin rather than dividing by zero.
func (v Viewport) ToCanvas(clientX, clientY float64) Point {
	if v.Width <= 0 || v.Height <= 0 {
		return Point{}
	}
	return Point{
		X: (clientX - v.Left) / v.Width * plan.CanvasWidth,
		Y: (clientY - v.Top) / v.Height * plan.CanvasHeight,
	}
}

// Snap rounds a coordinate to the nearest multiple of the grid pitch.
func Snap(v float64) int {
	return int(math.Round(v/plan.Grid)) * plan.Grid
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
