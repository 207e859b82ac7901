package layout

import (
	"fmt"

	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// ComputeLayout moves the widget movedID to target and returns a complete,
// overlap-free, compacted widget list. The target is clamped into the grid
// first. Neighbours that collide with the moved widget are pushed down; with
// vertical compaction a direct neighbour is first tried directly above the
// moved widget so the two can swap.
//
// Applying ComputeLayout to its own result with the same arguments returns
// that result unchanged.
func ComputeLayout(widgets []widget.Widget, movedID string, target Point, cfg Config) ([]widget.Widget, error) {
	nodes, err := MoveNode(Project(widgets, cfg), movedID, target, cfg)
	if err != nil {
		return nil, err
	}
	return Apply(widgets, nodes, cfg), nil
}

// MoveNode is ComputeLayout on nodes.
func MoveNode(nodes []Node, id string, target Point, cfg Config) ([]Node, error) {
	cols := cfg.columns()
	cur := make([]Node, len(nodes))
	for i, n := range nodes {
		cur[i] = n.Fit(cols)
	}
	i := IndexOf(cur, id)
	if i < 0 {
		return nil, fmt.Errorf("move %q: %w", id, ErrUnknownWidget)
	}
	cur[i].X, cur[i].Y = target.X, target.Y
	cur[i] = cur[i].Fit(cols)

	out := solve(cur, []pin{{idx: i, rect: cur[i].Rect()}}, cfg)
	if err := Validate(out, cfg); err != nil {
		return nil, fmt.Errorf("move %q to (%d,%d): %w", id, target.X, target.Y, err)
	}
	return out, nil
}

// Resize changes the size of widget id. The size is clamped to the type's
// constraints and to the columns right of the widget; if the minimum width
// still does not fit, the widget shifts left. Neighbours are then resolved
// as for a move that keeps the widget's position.
func Resize(widgets []widget.Widget, id string, size Size, cfg Config) ([]widget.Widget, error) {
	nodes, err := ResizeNode(Project(widgets, cfg), id, size, cfg)
	if err != nil {
		return nil, err
	}
	return Apply(widgets, nodes, cfg), nil
}

// ResizeNode is Resize on nodes.
func ResizeNode(nodes []Node, id string, size Size, cfg Config) ([]Node, error) {
	cols := cfg.columns()
	cur := make([]Node, len(nodes))
	for i, n := range nodes {
		cur[i] = n.Fit(cols)
	}
	i := IndexOf(cur, id)
	if i < 0 {
		return nil, fmt.Errorf("resize %q: %w", id, ErrUnknownWidget)
	}
	cur[i].W = min(size.W, cols-cur[i].X)
	cur[i].H = size.H
	cur[i] = cur[i].Fit(cols)

	out := solve(cur, []pin{{idx: i, rect: cur[i].Rect()}}, cfg)
	if err := Validate(out, cfg); err != nil {
		return nil, fmt.Errorf("resize %q to %dx%d: %w", id, size.W, size.H, err)
	}
	return out, nil
}

// Settle normalizes a widget list without moving anything in particular:
// overlaps are pushed apart in reading order and the result is compacted.
func Settle(widgets []widget.Widget, cfg Config) ([]widget.Widget, error) {
	nodes := Arrange(Project(widgets, cfg), nil, cfg)
	if err := Validate(nodes, cfg); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}
	return Apply(widgets, nodes, cfg), nil
}

// FirstFit returns the first free top-left cell, in reading order, where a
// rectangle of the given size fits without overlapping any node. The width
// is capped at the column count.
func FirstFit(nodes []Node, size Size, cfg Config) Point {
	cols := cfg.columns()
	w := min(max(size.W, 1), cols)
	h := max(size.H, 1)
	for y := 0; ; y++ {
		for x := 0; x+w <= cols; x++ {
			r := widget.Rect{X: x, Y: y, W: w, H: h}
			free := true
			for _, n := range nodes {
				if r.Overlaps(n.Rect()) {
					free = false
					break
				}
			}
			if free {
				return Point{X: x, Y: y}
			}
		}
	}
}

// WideSlot returns the first free rectangle of size among widgets at the
// wide breakpoint. wide must be a wide breakpoint config. Widgets created on
// a narrow screen take it as their wide layout.
func WideSlot(widgets []widget.Widget, size Size, wide Config) widget.Rect {
	size.W = min(max(size.W, 1), wide.columns())
	size.H = max(size.H, 1)
	p := FirstFit(Project(widgets, wide), size, wide)
	return widget.Rect{X: p.X, Y: p.Y, W: size.W, H: size.H}
}
