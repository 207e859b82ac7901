package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownWidget is returned when a move or resize names an id that is
	// not in the list.
	ErrUnknownWidget = errors.New("unknown widget")
	// ErrOverlap is returned when two rectangles share a cell.
	ErrOverlap = errors.New("widgets overlap")
	// ErrOutOfBounds is returned when a rectangle leaves the grid.
	ErrOutOfBounds = errors.New("widget out of bounds")
	// ErrNoArrangement is returned when no arrangement fits within MaxRows.
	ErrNoArrangement = errors.New("no arrangement fits the grid")
)

// Validate checks the arrangement invariants: every node inside the grid,
// inside MaxRows when set, and no two nodes overlapping.
func Validate(nodes []Node, cfg Config) error {
	cols := cfg.columns()
	for _, n := range nodes {
		if n.X < 0 || n.Y < 0 || n.W < 1 || n.H < 1 || n.X+n.W > cols {
			return fmt.Errorf("%s at %v with %d columns: %w", n.ID, n.Rect(), cols, ErrOutOfBounds)
		}
		if cfg.MaxRows > 0 && n.Y+n.H > cfg.MaxRows {
			return fmt.Errorf("%s ends at row %d of %d: %w", n.ID, n.Y+n.H, cfg.MaxRows, ErrNoArrangement)
		}
	}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].Rect().Overlaps(nodes[j].Rect()) {
				return fmt.Errorf("%s and %s: %w", nodes[i].ID, nodes[j].ID, ErrOverlap)
			}
		}
	}
	return nil
}
