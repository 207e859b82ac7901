package engine

import (
	"fmt"
	"slices"

	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// Gesture describes the interaction in progress.
type Gesture struct {
	Kind   GestureKind
	ID     string
	Handle widget.Handle
}

type gesture struct {
	kind   GestureKind
	id     string
	handle widget.Handle
	start  []layout.Node
}

// Active returns the interaction in progress, if any.
func (e *Engine) Active() (Gesture, bool) {
	if e.gesture == nil {
		return Gesture{}, false
	}
	return Gesture{Kind: e.gesture.kind, ID: e.gesture.id, Handle: e.gesture.handle}, true
}

func (e *Engine) begin(kind GestureKind, id string, h widget.Handle) error {
	if e.gesture != nil {
		return fmt.Errorf("begin %s on %q: %w", kind, id, ErrBusy)
	}
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("begin %s on %q: %w", kind, id, ErrUnknownNode)
	}
	e.gesture = &gesture{kind: kind, id: id, handle: h, start: e.Nodes()}
	e.logger.Debug("interaction started", "kind", kind, "id", id)

	e.subs.emit(Change{Kind: kindFor(kind), IDs: []string{id}, User: true, Gesture: kind, Phase: PhaseStart})
	e.showPlaceholder(id, e.nodes[i].Rect(), false)
	return nil
}

func kindFor(g GestureKind) ChangeKind {
	if g == GestureResize {
		return ChangeResized
	}
	return ChangeMoved
}

// frame applies one intermediate arrangement of the current interaction.
// Arrangements that cannot fit are dropped and the previous frame stays.
func (e *Engine) frame(next []layout.Node, err error) error {
	if err != nil {
		e.logger.Debug("frame rejected", "id", e.gesture.id, "err", err)
		return err
	}
	before := e.Nodes()
	e.setNodes(next)
	ids := changed(before, next)
	if len(ids) > 0 {
		e.subs.emit(Change{Kind: kindFor(e.gesture.kind), IDs: ids, User: true, Gesture: e.gesture.kind, Phase: PhaseMove})
	}
	i := e.index(e.gesture.id)
	e.showPlaceholder(e.gesture.id, e.nodes[i].Rect(), false)
	return nil
}

func (e *Engine) current(kind GestureKind) (*gesture, error) {
	if e.gesture == nil || e.gesture.kind != kind {
		return nil, fmt.Errorf("%s: %w", kind, ErrNoGesture)
	}
	return e.gesture, nil
}

// BeginDrag starts dragging node id.
func (e *Engine) BeginDrag(id string) error {
	if !e.draggable {
		return fmt.Errorf("drag %q: %w", id, ErrDragDisabled)
	}
	return e.begin(GestureDrag, id, "")
}

// DragTo moves the dragged node so its top-left lands on target. Every frame
// is computed from the layout at drag start, so neighbours return to their
// places once the node moves away again.
func (e *Engine) DragTo(target layout.Point) error {
	g, err := e.current(GestureDrag)
	if err != nil {
		return err
	}
	return e.frame(layout.MoveNode(g.start, g.id, target, e.cfg()))
}

// EndDrag drops the node where it is.
func (e *Engine) EndDrag() error {
	if _, err := e.current(GestureDrag); err != nil {
		return err
	}
	e.end(PhaseStop)
	return nil
}

// BeginResize starts resizing node id from handle h.
func (e *Engine) BeginResize(id string, h widget.Handle) error {
	if !e.resizable {
		return fmt.Errorf("resize %q: %w", id, ErrResizeDisabled)
	}
	if h == "" {
		h = widget.HandleSE
	}
	return e.begin(GestureResize, id, h)
}

// ResizeTo gives the resized node a new rectangle. Handles on the west or
// north edge move the origin as well as the size.
func (e *Engine) ResizeTo(r widget.Rect) error {
	g, err := e.current(GestureResize)
	if err != nil {
		return err
	}
	nodes := slices.Clone(g.start)
	i := layout.IndexOf(nodes, g.id)
	nodes[i].X, nodes[i].Y = r.X, r.Y
	return e.frame(layout.ResizeNode(nodes, g.id, layout.Size{W: r.W, H: r.H}, e.cfg()))
}

// EndResize keeps the node at its new size.
func (e *Engine) EndResize() error {
	if _, err := e.current(GestureResize); err != nil {
		return err
	}
	e.end(PhaseStop)
	return nil
}

// Cancel aborts the interaction in progress and restores the layout it
// started from.
func (e *Engine) Cancel() {
	switch {
	case e.gesture == nil:
		return
	case e.gesture.kind == GestureExternal:
		e.ExternalCancel()
	default:
		e.setNodes(e.gesture.start)
		e.end(PhaseCancel)
	}
}

func (e *Engine) end(phase Phase) {
	g := e.gesture
	e.gesture = nil
	ids := changed(g.start, e.Nodes())
	e.logger.Debug("interaction ended", "kind", g.kind, "id", g.id, "phase", phase, "moved", len(ids))
	e.setPlaceholder(nil)
	if !slices.Contains(ids, g.id) {
		ids = append([]string{g.id}, ids...)
	}
	e.subs.emit(Change{Kind: ChangeSettled, IDs: ids, User: true, Gesture: g.kind, Phase: phase})
}
