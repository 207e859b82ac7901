package app

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/content"
	"github.com/Gaurav-Gosain/gridboard/internal/dragin"
	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// =============================================================================
// Keyboard
// =============================================================================

func (b *Board) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if b.ShowLogs {
		switch key {
		case "j", "down":
			b.scrollLogs(1)
			return nil
		case "k", "up":
			b.scrollLogs(-1)
			return nil
		}
	}

	switch b.keys.GetAction(key) {
	case "quit":
		return tea.Quit
	case "cancel":
		if b.ShowHelp || b.ShowLogs {
			b.ShowHelp, b.ShowLogs = false, false
			return nil
		}
		b.cancelGesture()
	case "toggle_help":
		b.ShowHelp = !b.ShowHelp
	case "toggle_logs":
		b.ShowLogs = !b.ShowLogs
		if b.ShowLogs {
			b.LogScrollOffset = b.maxLogScroll()
		}
	case "undo":
		if !b.Undo() {
			b.notify("nothing to undo")
		}
	case "redo":
		if !b.Redo() {
			b.notify("nothing to redo")
		}
	case "cycle_compact":
		b.cycleCompact()
	case "add_widget":
		b.addSelected()
	case "scroll_up":
		b.page(-1)
	case "scroll_down":
		b.page(1)
	case "next_card":
		b.selected = (b.selected + 1) % len(content.Types())
	case "prev_card":
		n := len(content.Types())
		b.selected = (b.selected + n - 1) % n
	}
	return nil
}

func (b *Board) cycleCompact() {
	next := b.policy.Compact.Next()
	b.takeSnapshot("")
	b.policy.Compact = next
	b.cfg.Grid.Compact = string(next)
	b.grid.SetCompact(next)
	b.notify("compaction: " + string(next))
}

func (b *Board) addSelected() {
	t := content.Types()[b.selected]
	b.takeSnapshot("")
	if _, err := b.grid.AddWidget(t.Name, content.DefaultConfig(t.Name)); err != nil {
		b.LogWarn("add %s: %v", t.Name, err)
	}
}

// cancelGesture abandons any pointer gesture. Nothing is committed.
func (b *Board) cancelGesture() {
	switch b.gesture {
	case gestureMove, gestureResize:
		b.grid.Cancel()
	case gestureDragIn:
		b.dragin.Cancel()
	}
	b.gesture = gestureNone
	b.pending = nil
	b.lastAutoScroll = time.Time{}
}

// =============================================================================
// Hit testing
// =============================================================================

type part int

const (
	partNone part = iota
	partBody
	partTitle
	partClose
	partHandle
)

// hitTest finds the widget frame under (x, y) and the part of it that was
// hit.
func (b *Board) hitTest(x, y int) (string, part, widget.Handle) {
	if !b.gridViewport().Contains(x, y) {
		return "", partNone, ""
	}
	g := b.grid.Geometry()
	cs := b.grid.Containers()
	for i := len(cs) - 1; i >= 0; i-- {
		bounds := g.CellRect(cs[i].Rect)
		if !bounds.Contains(x, y) {
			continue
		}
		id := cs[i].NodeID
		right := bounds.X + bounds.Width - 1
		if y == bounds.Y && x == right-1 && bounds.Width >= 5 {
			return id, partClose, ""
		}
		if h := b.handleAt(bounds, x, y); h != "" {
			return id, partHandle, h
		}
		if y == bounds.Y {
			return id, partTitle, ""
		}
		return id, partBody, ""
	}
	return "", partNone, ""
}

// handleAt returns the enabled resize handle on the border cell (x, y). The
// top edge is the title bar and only offers its corners.
func (b *Board) handleAt(bounds ui.Bounds, x, y int) widget.Handle {
	if b.policy.DisableResize {
		return ""
	}
	left, right := x == bounds.X, x == bounds.X+bounds.Width-1
	top, bottom := y == bounds.Y, y == bounds.Y+bounds.Height-1
	var h widget.Handle
	switch {
	case bottom && right:
		h = widget.HandleSE
	case bottom && left:
		h = widget.HandleSW
	case top && right:
		h = widget.HandleNE
	case top && left:
		h = widget.HandleNW
	case top:
		return ""
	case bottom:
		h = widget.HandleS
	case right:
		h = widget.HandleE
	case left:
		h = widget.HandleW
	default:
		return ""
	}
	if len(b.policy.ResizeHandles) > 0 && !b.policy.HasHandle(h) {
		return ""
	}
	return h
}

// =============================================================================
// Pointer
// =============================================================================

func (b *Board) handleClick(m tea.Mouse) {
	if m.Button != tea.MouseLeft || b.ShowHelp || b.ShowLogs || b.gesture != gestureNone {
		return
	}
	b.px, b.py = m.X, m.Y

	if i, ok := b.cardAt(m.X, m.Y); ok {
		b.selected = i
		b.startDragIn(i, m.X, m.Y)
		return
	}

	id, hit, h := b.hitTest(m.X, m.Y)
	switch hit {
	case partClose:
		b.takeSnapshot(id)
		if err := b.grid.RemoveWidget(id); err != nil {
			b.LogWarn("remove %s: %v", shortID(id), err)
		}
	case partTitle:
		if !b.policy.DisableDrag {
			b.pending = &press{kind: gestureMove, id: id, at: b.now(), x: m.X, y: m.Y}
		}
	case partHandle:
		b.pending = &press{kind: gestureResize, id: id, handle: h, at: b.now(), x: m.X, y: m.Y}
	}
}

func (b *Board) startDragIn(i, x, y int) {
	t := content.Types()[i]
	b.takeSnapshot("")
	if err := b.dragin.Start(dragin.Source{Type: t.Name, Bounds: b.cardBounds(i)}, x, y); err != nil {
		b.LogWarn("drag %s: %v", t.Name, err)
		return
	}
	b.gesture = gestureDragIn
}

// activate turns the pending press into a gesture once the pointer moves.
// With hold activation a press released or moved before the hold delay is
// only a click.
func (b *Board) activate() {
	p := b.pending
	b.pending = nil
	if b.policy.DragActivation == widget.ActivateHold && b.now().Sub(p.at) < b.policy.HoldDelay {
		return
	}
	r, ok := b.grid.Rect(p.id)
	if !ok {
		return
	}
	switch p.kind {
	case gestureMove:
		if err := b.grid.BeginDrag(p.id); err != nil {
			b.LogWarn("drag %s: %v", shortID(p.id), err)
			return
		}
		bounds := b.grid.Geometry().CellRect(r)
		b.grabX, b.grabY = p.x-bounds.X, p.y-bounds.Y
	case gestureResize:
		if err := b.grid.BeginResize(p.id, p.handle); err != nil {
			b.LogWarn("resize %s: %v", shortID(p.id), err)
			return
		}
		b.resizeStart, b.resizeFrom = r, p.handle
	}
	b.gesture = p.kind
}

func (b *Board) handleMotion(m tea.Mouse) {
	b.px, b.py = m.X, m.Y
	if b.pending != nil {
		b.activate()
	}
	b.follow(m.X, m.Y)
	b.autoScroll()
}

func (b *Board) follow(x, y int) {
	var err error
	switch b.gesture {
	case gestureMove:
		err = b.grid.DragTo(b.dragTarget(x, y))
	case gestureResize:
		err = b.grid.ResizeTo(b.resizeTarget(x, y))
	case gestureDragIn:
		b.dragin.Move(x, y)
	}
	if err != nil {
		b.logger.Debug("gesture frame refused", "err", err)
	}
}

func (b *Board) handleRelease(m tea.Mouse) {
	if b.pending != nil {
		b.pending = nil
		return
	}
	if b.gesture == gestureNone {
		return
	}
	b.px, b.py = m.X, m.Y
	b.follow(m.X, m.Y)

	var err error
	switch b.gesture {
	case gestureMove:
		err = b.grid.EndDrag()
	case gestureResize:
		err = b.grid.EndResize()
	case gestureDragIn:
		if id, ok := b.dragin.Release(); ok {
			b.logger.Debug("dropped", "id", id)
		}
	}
	if err != nil {
		b.LogWarn("gesture: %v", err)
	}
	b.gesture = gestureNone
	b.lastAutoScroll = time.Time{}
}

// dragTarget is the cell nearest to the dragged frame's top-left corner,
// kept inside the columns.
func (b *Board) dragTarget(x, y int) layout.Point {
	g := b.grid.Geometry()
	w := 1
	if a, ok := b.grid.Active(); ok && a.Kind == engine.GestureDrag {
		if r, ok := b.grid.Rect(a.ID); ok {
			w = r.W
		}
	}
	col := floorDiv(x-b.grabX-g.OriginX+g.CellW/2, g.CellW)
	row := floorDiv(y-b.grabY-g.OriginY+g.RowH/2, g.RowH)
	return layout.Point{
		X: min(max(col, 0), max(g.Columns-w, 0)),
		Y: max(row, 0),
	}
}

// resizeTarget stretches the start rectangle so the edges named by the
// handle reach the cell under the pointer.
func (b *Board) resizeTarget(x, y int) widget.Rect {
	g := b.grid.Geometry()
	col := min(max(floorDiv(x-g.OriginX, g.CellW), 0), g.Columns-1)
	row := max(floorDiv(y-g.OriginY, g.RowH), 0)

	r := b.resizeStart
	h := string(b.resizeFrom)
	if strings.Contains(h, "e") {
		r.W = col - r.X + 1
	}
	if strings.Contains(h, "w") {
		right := r.Right()
		r.X = min(col, right-1)
		r.W = right - r.X
	}
	if strings.Contains(h, "s") {
		r.H = row - r.Y + 1
	}
	if strings.Contains(h, "n") {
		bottom := r.Bottom()
		r.Y = min(row, bottom-1)
		r.H = bottom - r.Y
	}
	r.W, r.H = max(r.W, 1), max(r.H, 1)
	return r
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
