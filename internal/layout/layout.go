// Package layout computes collision-free, compacted widget arrangements.
//
// Everything here is pure: functions take a widget or node list and return a
// new one, never touching their input. The same input always yields the same
// output, in the same order as the input.
package layout

import (
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// Config is the part of the grid policy the solver needs for one breakpoint.
type Config struct {
	Columns     int
	Compact     widget.CompactMode
	MaxRows     int
	Breakpoint  widget.Breakpoint
	Constraints widget.ConstraintLookup
}

// NewConfig derives a solver config from a grid policy.
func NewConfig(p widget.GridPolicy, bp widget.Breakpoint, lookup widget.ConstraintLookup) Config {
	return Config{
		Columns:     p.ColumnsFor(bp),
		Compact:     p.Compact,
		MaxRows:     p.MaxRows,
		Breakpoint:  bp,
		Constraints: lookup,
	}
}

func (c Config) columns() int {
	if c.Columns < 1 {
		return widget.DefaultWideCols
	}
	return c.Columns
}

func (c Config) compact() widget.CompactMode {
	if c.Compact == "" {
		return widget.CompactVertical
	}
	return c.Compact
}

// Point is a grid cell.
type Point struct {
	X, Y int
}

// Size is a width and height in cells.
type Size struct {
	W, H int
}

// Node is the solver's view of a widget: its rectangle plus size limits.
type Node struct {
	ID   string
	X, Y int
	W, H int

	MinW, MaxW int
	MinH, MaxH int
}

// Rect returns the node's rectangle.
func (n Node) Rect() widget.Rect {
	return widget.Rect{X: n.X, Y: n.Y, W: n.W, H: n.H}
}

// Constraints returns the node's normalized size limits.
func (n Node) Constraints() widget.Constraints {
	return widget.Constraints{MinW: n.MinW, MaxW: n.MaxW, MinH: n.MinH, MaxH: n.MaxH}.Normalize()
}

func (n Node) setRect(r widget.Rect) Node {
	n.X, n.Y, n.W, n.H = r.X, r.Y, r.W, r.H
	return n
}

// Fit clamps the node's size into its constraints and the column count and
// keeps it inside the grid. Columns win over a minimum width wider than the
// grid.
func (n Node) Fit(columns int) Node {
	n.W, n.H = n.Constraints().Clamp(n.W, n.H)
	if columns > 0 && n.W > columns {
		n.W = columns
	}
	if n.X+n.W > columns {
		n.X = columns - n.W
	}
	n.X = max(n.X, 0)
	n.Y = max(n.Y, 0)
	return n
}

// Project converts widgets into nodes for the configured breakpoint. Sizes
// are clamped to each type's constraints and positions into the grid.
func Project(widgets []widget.Widget, cfg Config) []Node {
	cols := cfg.columns()
	nodes := make([]Node, len(widgets))
	for i, w := range widgets {
		c := widget.Lookup(cfg.Constraints, w.Type)
		r := w.LayoutFor(cfg.Breakpoint, cols)
		n := Node{
			ID:   w.ID,
			MinW: c.MinW, MaxW: c.MaxW,
			MinH: c.MinH, MaxH: c.MaxH,
		}
		nodes[i] = n.setRect(r).Fit(cols)
	}
	return nodes
}

// Apply writes node rectangles back onto the widgets they were projected
// from. nodes must be in the same order as widgets.
func Apply(widgets []widget.Widget, nodes []Node, cfg Config) []widget.Widget {
	out := make([]widget.Widget, len(widgets))
	for i, w := range widgets {
		if i < len(nodes) && nodes[i].ID == w.ID {
			out[i] = w.WithLayout(cfg.Breakpoint, nodes[i].Rect())
			continue
		}
		out[i] = w.Clone()
	}
	return out
}

// Rows returns the number of rows the nodes occupy.
func Rows(nodes []Node) int {
	rows := 0
	for _, n := range nodes {
		rows = max(rows, n.Y+n.H)
	}
	return rows
}

// IndexOf returns the position of the node with id, or -1.
func IndexOf(nodes []Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}
