// Package render rasterizes explorer frames into a terminal canvas. A
// Viewport maps canvas coordinates to character cells and carries the zoom
// and pan state of the view.
package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Zoom limits.
const (
	MinZoom = 0.2
	MaxZoom = 5
)

// Default cell size in canvas units. Terminal cells are about twice as tall
// as they are wide.
const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 20
)

// Viewport is a scale-then-translate transform from canvas coordinates to
// cells: screen = canvas*Zoom + Offset, with screen measured in canvas
// units at zoom 1.
type Viewport struct {
	Cols, Rows int
	CellWidth  float64
	CellHeight float64
	Zoom       float64
	Offset     r2.Vec
}

// NewViewport creates an identity view of cols×rows cells.
func NewViewport(cols, rows int) Viewport {
	return Viewport{
		Cols:       cols,
		Rows:       rows,
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
		Zoom:       1,
	}
}

// CanvasSize is the canvas area the view covers at zoom 1. The explorer
// centers new maps in it.
func (v Viewport) CanvasSize() (width, height float64) {
	return float64(v.Cols) * v.CellWidth, float64(v.Rows) * v.CellHeight
}

// ToCell maps a canvas point to the cell containing it. The cell may be
// outside the view.
func (v Viewport) ToCell(p r2.Vec) (col, row int) {
	s := r2.Add(r2.Scale(v.Zoom, p), v.Offset)
	return int(math.Floor(s.X / v.CellWidth)), int(math.Floor(s.Y / v.CellHeight))
}

// ToCanvas maps the center of a cell back to canvas coordinates.
func (v Viewport) ToCanvas(col, row int) r2.Vec {
	s := r2.Vec{
		X: (float64(col) + 0.5) * v.CellWidth,
		Y: (float64(row) + 0.5) * v.CellHeight,
	}
	return r2.Scale(1/v.Zoom, r2.Sub(s, v.Offset))
}

// Visible reports whether a cell lies inside the view.
func (v Viewport) Visible(col, row int) bool {
	return col >= 0 && col < v.Cols && row >= 0 && row < v.Rows
}

// ZoomAt scales the view by factor, keeping the canvas point under the
// given cell fixed. The zoom is clamped to [MinZoom, MaxZoom].
func (v *Viewport) ZoomAt(factor float64, col, row int) {
	next := math.Max(MinZoom, math.Min(MaxZoom, v.Zoom*factor))
	if next == v.Zoom {
		return
	}
	anchor := v.ToCanvas(col, row)
	screen := r2.Add(r2.Scale(v.Zoom, anchor), v.Offset)
	v.Zoom = next
	v.Offset = r2.Sub(screen, r2.Scale(next, anchor))
}

// ZoomBy scales the view about its middle.
func (v *Viewport) ZoomBy(factor float64) {
	v.ZoomAt(factor, v.Cols/2, v.Rows/2)
}

// Pan shifts the view by whole cells.
func (v *Viewport) Pan(cols, rows int) {
	v.Offset = r2.Add(v.Offset, r2.Vec{
		X: float64(cols) * v.CellWidth,
		Y: float64(rows) * v.CellHeight,
	})
}

// Reset restores zoom 1 with no pan.
func (v *Viewport) Reset() {
	v.Zoom = 1
	v.Offset = r2.Vec{}
}

// Resize changes the view's size in cells.
func (v *Viewport) Resize(cols, rows int) {
	v.Cols, v.Rows = cols, rows
}
