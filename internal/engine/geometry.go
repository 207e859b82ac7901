package engine

import (
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// Geometry maps grid cells to terminal cells. Margin is the gap left on the
// right and bottom of every widget; Padding is the blank space a widget
// keeps between its border and its content.
type Geometry struct {
	OriginX int
	OriginY int
	Columns int
	CellW   int
	RowH    int
	Margin  int
	Padding int
}

// FitGeometry sizes cells so that cols columns fill view. A zero viewport
// falls back to the default cell dimensions.
func FitGeometry(view ui.Bounds, cols int, p widget.GridPolicy) Geometry {
	g := Geometry{
		OriginX: view.X,
		OriginY: view.Y,
		Columns: max(cols, 1),
		RowH:    p.RowHeight,
		Margin:  p.Margin,
		Padding: p.Padding,
	}
	if view.Width > 0 {
		g.CellW = view.Width / g.Columns
	}
	if g.RowH <= 0 && view.Height > 0 && p.AutoRows > 0 {
		g.RowH = view.Height / p.AutoRows
	}
	return g.normalized()
}

func (g Geometry) normalized() Geometry {
	if g.Columns < 1 {
		g.Columns = widget.DefaultWideCols
	}
	if g.CellW < 1 {
		g.CellW = widget.DefaultCellWidth
	}
	if g.RowH < 1 {
		g.RowH = widget.DefaultRowHeight
	}
	// A margin that would swallow a whole cell is ignored.
	if g.Margin < 0 || g.Margin >= g.CellW || g.Margin >= g.RowH {
		g.Margin = 0
	}
	g.Padding = max(g.Padding, 0)
	return g
}

// Scrolled returns g with the grid moved up by dy terminal lines.
func (g Geometry) Scrolled(dy int) Geometry {
	g.OriginY -= dy
	return g
}

// Width returns the width of the grid in terminal cells.
func (g Geometry) Width() int { return g.Columns * g.CellW }

// CellRect returns the screen bounds of a grid rectangle.
func (g Geometry) CellRect(r widget.Rect) ui.Bounds {
	return ui.Bounds{
		X:      g.OriginX + r.X*g.CellW,
		Y:      g.OriginY + r.Y*g.RowH,
		Width:  max(r.W*g.CellW-g.Margin, 1),
		Height: max(r.H*g.RowH-g.Margin, 1),
	}
}

// PointToCell returns the grid cell under the screen cell (x, y). It
// reports false outside the grid's columns or above its first row.
func (g Geometry) PointToCell(x, y int) (layout.Point, bool) {
	if x < g.OriginX || y < g.OriginY {
		return layout.Point{}, false
	}
	col := (x - g.OriginX) / g.CellW
	if col >= g.Columns {
		return layout.Point{}, false
	}
	return layout.Point{X: col, Y: (y - g.OriginY) / g.RowH}, true
}

// SetGeometry records where the grid is drawn. Columns is taken from the
// engine.
func (e *Engine) SetGeometry(g Geometry) {
	e.geom = g
}

// Geometry returns the current geometry, falling back to the default cell
// dimensions when no viewport has been set.
func (e *Engine) Geometry() Geometry {
	g := e.geom
	g.Columns = e.cols
	return g.normalized()
}
