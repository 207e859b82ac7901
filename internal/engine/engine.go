// Package engine is the imperative grid engine: it owns the live node list,
// runs pointer interactions and reports every change to its subscribers.
//
// The engine knows nothing about widgets or the caller's model. It is driven
// by exactly one owner (the grid adapter), which translates between the
// declarative widget list and the node list held here.
package engine

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/log"
)

var (
	ErrUnknownNode    = errors.New("unknown node")
	ErrDuplicateNode  = errors.New("node already exists")
	ErrBusy           = errors.New("interaction already in progress")
	ErrNoGesture      = errors.New("no matching interaction in progress")
	ErrDragDisabled   = errors.New("dragging is disabled")
	ErrResizeDisabled = errors.New("resizing is disabled")
)

// MarkerPrefix prefixes every container marker.
const MarkerPrefix = "gridboard-widget:"

// Marker returns the stable container marker for a node id.
func Marker(id string) string { return MarkerPrefix + id }

// NodeSpec describes a node to add.
type NodeSpec struct {
	ID          string
	Rect        widget.Rect
	Constraints widget.Constraints
}

func (s NodeSpec) node(cols int) layout.Node {
	c := s.Constraints.Normalize()
	return layout.Node{
		ID: s.ID,
		X:  s.Rect.X, Y: s.Rect.Y, W: s.Rect.W, H: s.Rect.H,
		MinW: c.MinW, MaxW: c.MaxW, MinH: c.MinH, MaxH: c.MaxH,
	}.Fit(cols)
}

// Container is the display slot the engine keeps for a node. A node removed
// and added again under the same id gets a new generation.
type Container struct {
	Marker string
	NodeID string
	Gen    uint64
	Rect   widget.Rect
}

// Options configure a new engine.
type Options struct {
	Columns   int
	Compact   widget.CompactMode
	MaxRows   int
	Draggable bool
	Resizable bool
	Logger    *log.Logger
}

type node struct {
	layout.Node
	gen uint64
}

type batch struct {
	added    []string
	removed  []string
	updated  []string
	relayout bool
}

func (b batch) empty() bool {
	return len(b.added) == 0 && len(b.removed) == 0 && len(b.updated) == 0 && !b.relayout
}

// Engine holds the live grid. It is not safe for concurrent use; all calls
// happen on the UI goroutine.
type Engine struct {
	logger *log.Logger

	cols      int
	compact   widget.CompactMode
	maxRows   int
	draggable bool
	resizable bool
	geom      Geometry

	nodes []node
	gen   uint64

	depth   int
	pending batch

	subs        subscriptions[Change]
	phSubs      subscriptions[*Placeholder]
	placeholder *Placeholder
	gesture     *gesture
	ext         *external
}

// New creates an empty engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cols := opts.Columns
	if cols < 1 {
		cols = widget.DefaultWideCols
	}
	compact := opts.Compact
	if compact == "" {
		compact = widget.CompactVertical
	}
	return &Engine{
		logger:    logger.WithPrefix("engine"),
		cols:      cols,
		compact:   compact,
		maxRows:   opts.MaxRows,
		draggable: opts.Draggable,
		resizable: opts.Resizable,
	}
}

func (e *Engine) cfg() layout.Config {
	return layout.Config{Columns: e.cols, Compact: e.compact, MaxRows: e.maxRows}
}

func (e *Engine) index(id string) int {
	return slices.IndexFunc(e.nodes, func(n node) bool { return n.ID == id })
}

// AddNode adds a node at spec.Rect. Neighbours it collides with are pushed
// away when the current batch ends.
func (e *Engine) AddNode(spec NodeSpec) error {
	if e.index(spec.ID) >= 0 {
		return fmt.Errorf("add %q: %w", spec.ID, ErrDuplicateNode)
	}
	e.interrupt()
	e.gen++
	e.nodes = append(e.nodes, node{Node: spec.node(e.cols), gen: e.gen})
	e.pending.added = append(e.pending.added, spec.ID)
	e.flush()
	return nil
}

// RemoveNode removes a node and frees its cells.
func (e *Engine) RemoveNode(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrUnknownNode)
	}
	e.interrupt()
	e.nodes = slices.Delete(e.nodes, i, i+1)
	e.pending.removed = append(e.pending.removed, id)
	e.flush()
	return nil
}

// UpdateNode moves and resizes a node. The node takes priority over its
// neighbours when the batch is arranged.
func (e *Engine) UpdateNode(id string, r widget.Rect) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("update %q: %w", id, ErrUnknownNode)
	}
	e.interrupt()
	n := e.nodes[i].Node
	n.X, n.Y, n.W, n.H = r.X, r.Y, r.W, r.H
	e.nodes[i].Node = n.Fit(e.cols)
	e.pending.updated = append(e.pending.updated, id)
	e.flush()
	return nil
}

// Batch defers arrangement and notifications until fn returns. Removals in
// the batch free their cells before any added node is placed.
func (e *Engine) Batch(fn func()) {
	e.depth++
	defer func() {
		e.depth--
		e.flush()
	}()
	fn()
}

// SetColumns changes the column count. Nodes are refitted on the next
// arrangement.
func (e *Engine) SetColumns(n int) {
	if n < 1 || n == e.cols {
		return
	}
	e.interrupt()
	e.cols = n
	e.pending.relayout = true
	e.flush()
}

// SetCompact changes the compaction mode and rearranges.
func (e *Engine) SetCompact(m widget.CompactMode) {
	if m == "" || m == e.compact {
		return
	}
	e.interrupt()
	e.compact = m
	e.pending.relayout = true
	e.flush()
}

// SetMaxRows changes the row limit. Zero means unbounded.
func (e *Engine) SetMaxRows(n int) {
	if n == e.maxRows {
		return
	}
	e.maxRows = max(n, 0)
}

// SetDraggable enables or disables dragging. Disabling it cancels a drag in
// progress.
func (e *Engine) SetDraggable(on bool) {
	e.draggable = on
	if !on && e.gesture != nil && e.gesture.kind == GestureDrag {
		e.Cancel()
	}
}

// SetResizable enables or disables resizing. Disabling it cancels a resize
// in progress.
func (e *Engine) SetResizable(on bool) {
	e.resizable = on
	if !on && e.gesture != nil && e.gesture.kind == GestureResize {
		e.Cancel()
	}
}

func (e *Engine) flush() {
	if e.depth > 0 || e.pending.empty() {
		return
	}
	p := e.pending
	e.pending = batch{}

	before := e.Nodes()
	pinned := append(slices.Clone(p.added), p.updated...)
	after := layout.Arrange(before, pinned, e.cfg())
	e.setNodes(after)
	settled := changed(before, after)

	e.logger.Debug("arranged",
		"added", len(p.added), "removed", len(p.removed),
		"updated", len(p.updated), "settled", len(settled))

	var out []Change
	if len(p.removed) > 0 {
		out = append(out, Change{Kind: ChangeRemoved, IDs: p.removed})
	}
	if len(p.added) > 0 {
		out = append(out, Change{Kind: ChangeAdded, IDs: p.added})
	}
	if len(p.updated) > 0 {
		out = append(out, Change{Kind: ChangeMoved, IDs: p.updated})
	}
	if len(settled) > 0 {
		out = append(out, Change{Kind: ChangeSettled, IDs: settled})
	}
	for _, c := range out {
		e.subs.emit(c)
	}
}

// interrupt cancels a pointer interaction before a structural change.
func (e *Engine) interrupt() {
	if e.gesture != nil {
		e.logger.Debug("structural change cancels interaction", "kind", e.gesture.kind)
		e.Cancel()
	}
}

func (e *Engine) setNodes(ns []layout.Node) {
	for i := range e.nodes {
		if i < len(ns) {
			e.nodes[i].Node = ns[i]
		}
	}
}

// changed returns the ids whose rectangle differs between two node lists in
// the same order.
func changed(before, after []layout.Node) []string {
	var ids []string
	for i := range min(len(before), len(after)) {
		if before[i].Rect() != after[i].Rect() {
			ids = append(ids, after[i].ID)
		}
	}
	return ids
}

// Nodes returns a copy of the live nodes in insertion order.
func (e *Engine) Nodes() []layout.Node {
	out := make([]layout.Node, len(e.nodes))
	for i, n := range e.nodes {
		out[i] = n.Node
	}
	return out
}

// IDs returns the live node ids in insertion order.
func (e *Engine) IDs() []string {
	ids := make([]string, len(e.nodes))
	for i, n := range e.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Rect returns the live rectangle of a node.
func (e *Engine) Rect(id string) (widget.Rect, bool) {
	i := e.index(id)
	if i < 0 {
		return widget.Rect{}, false
	}
	return e.nodes[i].Rect(), true
}

// Containers lists the display containers of all live nodes.
func (e *Engine) Containers() []Container {
	out := make([]Container, len(e.nodes))
	for i, n := range e.nodes {
		out[i] = Container{Marker: Marker(n.ID), NodeID: n.ID, Gen: n.gen, Rect: n.Rect()}
	}
	return out
}

// Container returns the container for a node id.
func (e *Engine) Container(id string) (Container, bool) {
	i := e.index(id)
	if i < 0 {
		return Container{}, false
	}
	n := e.nodes[i]
	return Container{Marker: Marker(n.ID), NodeID: n.ID, Gen: n.gen, Rect: n.Rect()}, true
}

// Columns returns the current column count.
func (e *Engine) Columns() int { return e.cols }

// Compact returns the compaction mode.
func (e *Engine) Compact() widget.CompactMode { return e.compact }

// MaxRows returns the row limit, zero when unbounded.
func (e *Engine) MaxRows() int { return e.maxRows }

// Draggable reports whether dragging is enabled.
func (e *Engine) Draggable() bool { return e.draggable }

// Resizable reports whether resizing is enabled.
func (e *Engine) Resizable() bool { return e.resizable }

// Rows returns the number of rows in use, including a pending external
// node.
func (e *Engine) Rows() int {
	rows := layout.Rows(e.Nodes())
	if e.ext != nil && e.ext.temp != nil {
		rows = max(rows, e.ext.temp.Y+e.ext.temp.H)
	}
	return rows
}
