package app

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// autoScrollEvery is how often a gesture held at the viewport edge scrolls
// the grid by one line.
const autoScrollEvery = 50 * time.Millisecond

// maxScroll is how far the grid can scroll: every row below the viewport,
// plus one spare row while a gesture can still grow the grid.
func (b *Board) maxScroll() int {
	rows := b.grid.Rows()
	if b.Interacting() {
		rows++
	}
	return max(rows*b.grid.Geometry().RowH-b.gridViewport().Height, 0)
}

// scrollTo moves the grid to y lines from the top, clamped to the content.
// It reports whether the offset changed.
func (b *Board) scrollTo(y int) bool {
	y = min(max(y, 0), b.maxScroll())
	if y == b.grid.Scroll() {
		return false
	}
	b.grid.SetScroll(y)
	return true
}

func (b *Board) scrollBy(dy int) bool {
	return b.scrollTo(b.grid.Scroll() + dy)
}

// clampScroll pulls the offset back when the grid shrank under it.
func (b *Board) clampScroll() {
	if m := b.maxScroll(); b.grid.Scroll() > m {
		b.grid.SetScroll(m)
	}
}

// page scrolls by a viewport less one row, so a row stays in view.
func (b *Board) page(dir int) {
	rowH := b.grid.Geometry().RowH
	b.scrollBy(dir * max(b.gridViewport().Height-rowH, rowH))
}

// handleWheel scrolls one row per notch. A running gesture follows the
// pointer into the newly visible rows.
func (b *Board) handleWheel(m tea.Mouse) {
	if b.ShowHelp {
		return
	}
	dir := 0
	switch m.Button {
	case tea.MouseWheelUp:
		dir = -1
	case tea.MouseWheelDown:
		dir = 1
	default:
		return
	}
	if b.ShowLogs {
		b.scrollLogs(dir)
		return
	}
	if b.scrollBy(dir*b.grid.Geometry().RowH) && b.gesture != gestureNone {
		b.follow(b.px, b.py)
	}
}

// edgeDirection returns -1 when (x, y) is over the grid within a row of the
// viewport top, 1 within a row of its bottom, and 0 otherwise.
func (b *Board) edgeDirection(x, y int) int {
	view := b.gridViewport()
	if x < view.X || x >= view.X+view.Width {
		return 0
	}
	rowH := b.grid.Geometry().RowH
	switch {
	case y < view.Y+rowH:
		return -1
	case y >= view.Y+view.Height-rowH:
		return 1
	}
	return 0
}

// autoScroll steps the grid one line toward the edge the pointer is held
// at while a drag, resize or drag-in runs, then replays the pointer so the
// gesture tracks the scrolled cells. The grid is the board's only
// scrolling area, so the window target scrolls it too.
func (b *Board) autoScroll() {
	if b.gesture == gestureNone {
		return
	}
	switch b.policy.AutoScroll {
	case widget.AutoScrollGrid, widget.AutoScrollWindow:
	default:
		return
	}
	dir := b.edgeDirection(b.px, b.py)
	if dir == 0 {
		return
	}
	now := b.now()
	if !b.lastAutoScroll.IsZero() && now.Sub(b.lastAutoScroll) < autoScrollEvery {
		return
	}
	if b.scrollBy(dir) {
		b.lastAutoScroll = now
		b.follow(b.px, b.py)
	}
}
