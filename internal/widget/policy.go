package widget

import (
	"fmt"
	"slices"
	"time"
)

// Breakpoint is a viewport class with its own column count.
type Breakpoint string

const (
	// Wide is the primary breakpoint.
	Wide Breakpoint = "wide"
	// Narrow is used below GridPolicy.NarrowBelow terminal columns.
	Narrow Breakpoint = "narrow"
)

// CompactMode selects the direction gaps are closed in after a change.
type CompactMode string

const (
	CompactVertical   CompactMode = "vertical"
	CompactHorizontal CompactMode = "horizontal"
	CompactNone       CompactMode = "none"
)

// Next cycles through the compaction modes.
func (m CompactMode) Next() CompactMode {
	switch m {
	case CompactVertical:
		return CompactHorizontal
	case CompactHorizontal:
		return CompactNone
	default:
		return CompactVertical
	}
}

// Handle names a resize handle by compass direction.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// DragActivation controls how a pointer press turns into a drag.
type DragActivation string

const (
	// ActivateImmediate starts dragging on the first motion after a press.
	ActivateImmediate DragActivation = "immediate"
	// ActivateHold requires the press to be held for HoldDelay first, the
	// terminal equivalent of a touch long-press.
	ActivateHold DragActivation = "hold"
)

// AutoScroll names what scrolls when a drag nears the viewport edge.
type AutoScroll string

const (
	AutoScrollNone   AutoScroll = "none"
	AutoScrollGrid   AutoScroll = "grid"
	AutoScrollWindow AutoScroll = "window"
)

// Default cell geometry used when no viewport is known yet.
const (
	DefaultCellWidth   = 8
	DefaultRowHeight   = 3
	DefaultWideCols    = 12
	DefaultNarrowCols  = 4
	DefaultNarrowBelow = 80
)

// GridPolicy describes grid behaviour. It is handed to the adapter on every
// sync together with the widget list.
type GridPolicy struct {
	Columns        map[Breakpoint]int
	NarrowBelow    int // viewport width (terminal columns) below which Narrow applies
	RowHeight      int // terminal lines per row; 0 derives it from AutoRows
	AutoRows       int // rows that fit the viewport when RowHeight is 0
	Margin         int
	Padding        int
	Compact        CompactMode
	MaxRows        int
	DisableDrag    bool
	DisableResize  bool
	ResizeHandles  []Handle
	DragActivation DragActivation
	HoldDelay      time.Duration
	AutoScroll     AutoScroll
}

// DefaultPolicy returns the policy used when the user config is silent.
func DefaultPolicy() GridPolicy {
	return GridPolicy{
		Columns: map[Breakpoint]int{
			Wide:   DefaultWideCols,
			Narrow: DefaultNarrowCols,
		},
		NarrowBelow:    DefaultNarrowBelow,
		RowHeight:      DefaultRowHeight,
		AutoRows:       8,
		Margin:         0,
		Padding:        0,
		Compact:        CompactVertical,
		ResizeHandles:  []Handle{HandleSE},
		DragActivation: ActivateImmediate,
		HoldDelay:      300 * time.Millisecond,
		AutoScroll:     AutoScrollNone,
	}
}

// BreakpointFor picks the breakpoint for a viewport width.
func (p GridPolicy) BreakpointFor(width int) Breakpoint {
	if p.NarrowBelow > 0 && width > 0 && width < p.NarrowBelow {
		return Narrow
	}
	return Wide
}

// ColumnsFor returns the column count for bp, never less than one.
func (p GridPolicy) ColumnsFor(bp Breakpoint) int {
	if n, ok := p.Columns[bp]; ok && n > 0 {
		return n
	}
	if bp == Narrow {
		return DefaultNarrowCols
	}
	return DefaultWideCols
}

// HasHandle reports whether h is an enabled resize handle.
func (p GridPolicy) HasHandle(h Handle) bool {
	return slices.Contains(p.ResizeHandles, h)
}

// Validate reports policy values that cannot be honoured.
func (p GridPolicy) Validate() error {
	for bp, n := range p.Columns {
		if n < 1 {
			return fmt.Errorf("columns for %s must be at least 1, got %d", bp, n)
		}
	}
	switch p.Compact {
	case CompactVertical, CompactHorizontal, CompactNone, "":
	default:
		return fmt.Errorf("unknown compaction mode %q", p.Compact)
	}
	switch p.AutoScroll {
	case AutoScrollNone, AutoScrollGrid, AutoScrollWindow, "":
	default:
		return fmt.Errorf("unknown auto scroll target %q", p.AutoScroll)
	}
	if p.RowHeight < 0 || p.MaxRows < 0 || p.Margin < 0 || p.Padding < 0 {
		return fmt.Errorf("row height, max rows, margin and padding must not be negative")
	}
	return nil
}
