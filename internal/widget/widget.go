// Package widget defines the declarative dashboard model: widgets, their
// grid rectangles, per-type size constraints, the grid policy and the events
// the engine proposes back to the caller.
package widget

import (
	"fmt"
	"maps"
)

// Rect is a rectangle in grid cell coordinates.
type Rect struct {
	X int `toml:"x" json:"x"`
	Y int `toml:"y" json:"y"`
	W int `toml:"w" json:"w"`
	H int `toml:"h" json:"h"`
}

// Right returns the first column to the right of the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Overlaps reports whether r and o share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Widget is a positioned dashboard element. Config is opaque to the engine
// and forwarded untouched to the content renderer.
type Widget struct {
	ID           string         `toml:"id" json:"id"`
	Type         string         `toml:"type" json:"type"`
	Layout       Rect           `toml:"layout" json:"layout"`
	MobileLayout *Rect          `toml:"mobile_layout,omitempty" json:"mobileLayout,omitempty"`
	Config       map[string]any `toml:"config,omitempty" json:"config,omitempty"`
}

// Clone returns a copy that shares no mutable state with w.
func (w Widget) Clone() Widget {
	c := w
	if w.MobileLayout != nil {
		m := *w.MobileLayout
		c.MobileLayout = &m
	}
	if w.Config != nil {
		c.Config = maps.Clone(w.Config)
	}
	return c
}

// LayoutFor returns the widget's rectangle for the given breakpoint. On the
// narrow breakpoint a widget without its own mobile layout is pinned to the
// first column and narrowed to fit; overlaps are left for the layout engine
// to settle.
func (w Widget) LayoutFor(bp Breakpoint, columns int) Rect {
	if bp != Narrow {
		return w.Layout
	}
	if w.MobileLayout != nil {
		return *w.MobileLayout
	}
	r := w.Layout
	r.X = 0
	if columns > 0 && r.W > columns {
		r.W = columns
	}
	return r
}

// WithLayout returns a copy of w with the rectangle for bp replaced.
func (w Widget) WithLayout(bp Breakpoint, r Rect) Widget {
	c := w.Clone()
	if bp == Narrow {
		c.MobileLayout = &r
		return c
	}
	c.Layout = r
	return c
}

// CloneAll deep-copies a widget list.
func CloneAll(ws []Widget) []Widget {
	if ws == nil {
		return nil
	}
	out := make([]Widget, len(ws))
	for i, w := range ws {
		out[i] = w.Clone()
	}
	return out
}

// Index returns the position of the widget with the given id, or -1.
func Index(ws []Widget, id string) int {
	for i := range ws {
		if ws[i].ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the widget ids in list order.
func IDs(ws []Widget) []string {
	ids := make([]string, len(ws))
	for i, w := range ws {
		ids[i] = w.ID
	}
	return ids
}
