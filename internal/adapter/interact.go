package adapter

import (
	"fmt"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/google/uuid"
)

// onChange turns engine notifications from user interactions into lifecycle
// callbacks and commits. Notifications caused by the adapter's own writes
// are ignored.
func (a *Adapter) onChange(c engine.Change) {
	if !c.User {
		if !a.syncing {
			a.logger.Debug("unexpected engine change outside a sync", "kind", c.Kind, "ids", c.IDs)
		}
		return
	}
	var id string
	if len(c.IDs) > 0 {
		id = c.IDs[0]
	}

	switch c.Gesture {
	case engine.GestureDrag:
		switch c.Phase {
		case engine.PhaseStart:
			a.cb.DragStart(id)
		case engine.PhaseStop:
			a.cb.DragStop(id)
			a.interactionCommit(widget.ReasonDrag, id)
		case engine.PhaseCancel:
			a.cb.DragStop(id)
		}
	case engine.GestureResize:
		switch c.Phase {
		case engine.PhaseStart:
			a.cb.ResizeStart(id)
		case engine.PhaseStop:
			a.cb.ResizeStop(id)
			a.interactionCommit(widget.ReasonResize, id)
		case engine.PhaseCancel:
			a.cb.ResizeStop(id)
		}
	case engine.GestureExternal:
		if c.Phase == engine.PhaseStop {
			a.displaced = append(a.displaced[:0], c.IDs...)
		}
	}
}

// interactionCommit proposes the engine's arrangement once a drag or resize
// settles. Nothing is proposed when the gesture changed nothing.
func (a *Adapter) interactionCommit(reason widget.CommitReason, id string) {
	nodes := a.eng.Nodes()
	if err := layout.Validate(nodes, a.layoutConfig()); err != nil {
		a.reject(string(reason), err)
		return
	}
	proposal := a.proposal(nodes)
	if !a.differs(proposal, nil) {
		return
	}
	a.remember(nodes)
	a.commit(reason, id, proposal)
}

// BeginDrag starts dragging widget id.
func (a *Adapter) BeginDrag(id string) error { return a.eng.BeginDrag(id) }

// DragTo moves the dragged widget's top-left to target.
func (a *Adapter) DragTo(target layout.Point) error { return a.eng.DragTo(target) }

// EndDrag drops the dragged widget.
func (a *Adapter) EndDrag() error { return a.eng.EndDrag() }

// BeginResize starts resizing widget id from handle h. Disabled handles are
// refused.
func (a *Adapter) BeginResize(id string, h widget.Handle) error {
	if h != "" && len(a.policy.ResizeHandles) > 0 && !a.policy.HasHandle(h) {
		return fmt.Errorf("resize %q from %s: %w", id, h, engine.ErrResizeDisabled)
	}
	return a.eng.BeginResize(id, h)
}

// ResizeTo gives the resized widget a new rectangle.
func (a *Adapter) ResizeTo(r widget.Rect) error { return a.eng.ResizeTo(r) }

// EndResize keeps the resized widget's new size.
func (a *Adapter) EndResize() error { return a.eng.EndResize() }

// Cancel aborts the interaction in progress.
func (a *Adapter) Cancel() { a.eng.Cancel() }

// SetCompact switches the compaction mode at once and proposes the result.
// The policy passed to the next Sync should carry the same mode.
func (a *Adapter) SetCompact(m widget.CompactMode) {
	a.policy.Compact = m
	a.syncing = true
	a.eng.SetCompact(m)
	a.syncing = false
	if _, busy := a.eng.Active(); !busy {
		a.settle(nil)
	}
}

// =============================================================================
// External items
// =============================================================================

// ExternalSpec returns the size and normalized constraints an item of
// widgetType takes on the grid. A zero size uses the type's default size.
func (a *Adapter) ExternalSpec(widgetType string, size layout.Size) engine.NodeSpec {
	c := widget.Lookup(a.lookup, widgetType)
	w, h := size.W, size.H
	if w <= 0 || h <= 0 {
		w, h = c.DefaultW, c.DefaultH
	}
	w, h = c.Clamp(w, h)
	return engine.NodeSpec{Rect: widget.Rect{W: min(w, a.cols), H: h}, Constraints: c}
}

// ExternalEnter starts an external drag of an item of widgetType.
func (a *Adapter) ExternalEnter(widgetType string, size layout.Size) error {
	return a.eng.ExternalEnter(a.ExternalSpec(widgetType, size))
}

// ExternalMove positions the external item; see engine.ExternalMove.
func (a *Adapter) ExternalMove(x, y int) bool { return a.eng.ExternalMove(x, y) }

// ExternalLeave hides the external placeholder.
func (a *Adapter) ExternalLeave() { a.eng.ExternalLeave() }

// ExternalCancel abandons the external drag.
func (a *Adapter) ExternalCancel() { a.eng.ExternalCancel() }

// ExternalDrop ends an external drag over the grid. The returned cell is
// reserved for newID: newID and every neighbour that moved out of its way
// are protected from corrections until the caller syncs a list containing
// newID, at which point an add commit is proposed.
func (a *Adapter) ExternalDrop(newID string) (widget.Rect, bool) {
	a.displaced = a.displaced[:0]
	r, ok := a.eng.ExternalDrop()
	if !ok {
		return widget.Rect{}, false
	}
	a.Protect(newID)
	for _, id := range a.displaced {
		a.Protect(id)
	}
	a.drops[newID] = r
	a.logger.Debug("external drop", "id", newID, "rect", r, "displaced", a.displaced)
	return r, true
}

// NewID returns a fresh widget id.
func NewID() string { return uuid.NewString() }

// =============================================================================
// Model edits
// =============================================================================

// AddWidget places a new widget of widgetType at the first free cell with
// the type's default size and proposes the list with it added. It returns
// the new id.
func (a *Adapter) AddWidget(widgetType string, config map[string]any) (string, error) {
	cfg := a.layoutConfig()
	c := widget.Lookup(a.lookup, widgetType)
	nodes := a.eng.Nodes()
	size := layout.Size{W: min(c.DefaultW, a.cols), H: c.DefaultH}
	p := layout.FirstFit(nodes, size, cfg)

	id := NewID()
	r := widget.Rect{X: p.X, Y: p.Y, W: size.W, H: size.H}
	w := widget.Widget{ID: id, Type: widgetType, Layout: r, Config: config}
	if a.bp == widget.Narrow {
		w.MobileLayout = &r
		w.Layout = layout.WideSlot(a.model, size, layout.NewConfig(a.policy, widget.Wide, a.lookup))
	}

	node := layout.Node{ID: id, X: r.X, Y: r.Y, W: r.W, H: r.H, MinW: c.MinW, MaxW: c.MaxW, MinH: c.MinH, MaxH: c.MaxH}
	if err := layout.Validate(append(nodes, node), cfg); err != nil {
		a.logger.Warn("no room for new widget", "type", widgetType, "err", err)
		return "", fmt.Errorf("add %s: %w", widgetType, err)
	}

	ws := append(a.proposal(nodes), w)
	a.commit(widget.ReasonAdd, id, ws)
	return id, nil
}

// RemoveWidget proposes the list without id, compacted the way the engine
// will compact it once the caller syncs.
func (a *Adapter) RemoveWidget(id string) error {
	i := widget.Index(a.model, id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrUnknownWidget)
	}
	if _, busy := a.eng.Active(); busy {
		a.eng.Cancel()
	}
	rest := a.proposal(a.eng.Nodes())
	rest = append(rest[:i:i], rest[i+1:]...)

	settled, err := layout.Settle(rest, a.layoutConfig())
	if err != nil {
		a.logger.Warn("remove left an invalid layout", "id", id, "err", err)
		settled = rest
	}
	a.commit(widget.ReasonRemove, id, settled)
	return nil
}
