package engine

import (
	"fmt"
	"slices"

	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// ExternalID is the id of the temporary node that holds the placeholder
// cell while an item from outside the grid hovers over it.
const ExternalID = "gridboard-external"

type external struct {
	spec  NodeSpec
	temp  *layout.Node
	start []layout.Node
	cell  layout.Point
}

// ExternalEnter starts tracking an item dragged in from outside the grid.
// spec.Rect supplies the size the item takes once it is over the grid.
func (e *Engine) ExternalEnter(spec NodeSpec) error {
	if e.gesture != nil {
		return fmt.Errorf("external drag: %w", ErrBusy)
	}
	spec.ID = ExternalID
	e.gesture = &gesture{kind: GestureExternal, id: ExternalID, start: e.Nodes()}
	e.ext = &external{spec: spec, start: e.Nodes()}
	e.logger.Debug("external drag entered", "w", spec.Rect.W, "h", spec.Rect.H)
	e.subs.emit(Change{Kind: ChangeMoved, User: true, Gesture: GestureExternal, Phase: PhaseStart})
	return nil
}

// ExternalMove positions the external item with its top-left at the screen
// cell (x, y). It reports whether the item is over the grid, in which case
// the temporary node occupies the cell and its neighbours make room.
func (e *Engine) ExternalMove(x, y int) bool {
	if e.ext == nil {
		return false
	}
	cell, ok := e.Geometry().PointToCell(x, y)
	if !ok {
		e.ExternalLeave()
		return false
	}
	if e.ext.temp != nil && cell == e.ext.cell {
		return true
	}

	nodes := append(slices.Clone(e.ext.start), e.ext.spec.node(e.cols))
	next, err := layout.MoveNode(nodes, ExternalID, cell, e.cfg())
	if err != nil {
		e.logger.Debug("external item does not fit", "cell", cell, "err", err)
		e.ExternalLeave()
		return false
	}

	before := e.Nodes()
	temp := next[len(next)-1]
	e.ext.temp = &temp
	e.ext.cell = cell
	e.setNodes(next[:len(next)-1])

	if ids := changed(before, e.Nodes()); len(ids) > 0 {
		e.subs.emit(Change{Kind: ChangeMoved, IDs: ids, User: true, Gesture: GestureExternal, Phase: PhaseMove})
	}
	e.showPlaceholder(ExternalID, temp.Rect(), true)
	return true
}

// ExternalLeave removes the temporary node after the item left the grid.
// Neighbours return to where they were when the drag entered.
func (e *Engine) ExternalLeave() {
	if e.ext == nil || e.ext.temp == nil {
		return
	}
	before := e.Nodes()
	e.ext.temp = nil
	e.setNodes(e.ext.start)
	if ids := changed(before, e.Nodes()); len(ids) > 0 {
		e.subs.emit(Change{Kind: ChangeMoved, IDs: ids, User: true, Gesture: GestureExternal, Phase: PhaseMove})
	}
	e.setPlaceholder(nil)
}

// ExternalDrop ends the external drag. Over the grid it removes the
// temporary node, leaves its cells free and returns them; neighbours keep
// the places they moved to. Off the grid it cancels and reports false.
func (e *Engine) ExternalDrop() (widget.Rect, bool) {
	if e.ext == nil {
		return widget.Rect{}, false
	}
	if e.ext.temp == nil {
		e.ExternalCancel()
		return widget.Rect{}, false
	}
	r := e.ext.temp.Rect()
	start := e.ext.start
	e.ext = nil
	e.gesture = nil
	e.setPlaceholder(nil)

	ids := changed(start, e.Nodes())
	e.logger.Debug("external item dropped", "rect", r, "displaced", len(ids))
	e.subs.emit(Change{Kind: ChangeSettled, IDs: ids, User: true, Gesture: GestureExternal, Phase: PhaseStop})
	return r, true
}

// ExternalCancel abandons the external drag and restores the layout.
func (e *Engine) ExternalCancel() {
	if e.ext == nil {
		return
	}
	e.ExternalLeave()
	e.ext = nil
	e.gesture = nil
	e.logger.Debug("external drag cancelled")
	e.subs.emit(Change{Kind: ChangeSettled, User: true, Gesture: GestureExternal, Phase: PhaseCancel})
}

// External returns the temporary node's rectangle while an external item is
// over the grid.
func (e *Engine) External() (widget.Rect, bool) {
	if e.ext == nil || e.ext.temp == nil {
		return widget.Rect{}, false
	}
	return e.ext.temp.Rect(), true
}
