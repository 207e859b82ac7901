package widget

// CommitReason says why a layout commit was proposed.
type CommitReason string

const (
	ReasonDrag   CommitReason = "drag"
	ReasonResize CommitReason = "resize"
	ReasonAdd    CommitReason = "add"
	ReasonRemove CommitReason = "remove"
	// ReasonSettle is proposed when the engine had to normalize a caller
	// list that overlapped, overflowed or was not compacted.
	ReasonSettle CommitReason = "settle"
)

// LayoutCommitEvent is emitted once a change settles. Callers persist
// Widgets; intermediate drag frames never produce one.
type LayoutCommitEvent struct {
	Widgets    []Widget     `json:"widgets"`
	Reason     CommitReason `json:"reason"`
	AffectedID string       `json:"affectedId,omitempty"`
	Breakpoint Breakpoint   `json:"breakpoint"`
}

// ExternalDropEvent is emitted when an item dragged in from outside the grid
// is dropped. The caller inserts a widget with NewID and supplies its final
// config on the next sync.
type ExternalDropEvent struct {
	WidgetType  string      `json:"widgetType"`
	X           int         `json:"x"`
	Y           int         `json:"y"`
	W           int         `json:"w"`
	H           int         `json:"h"`
	Constraints Constraints `json:"constraints"`
	NewID       string      `json:"newId"`
}

// Rect returns the drop rectangle.
func (e ExternalDropEvent) Rect() Rect {
	return Rect{X: e.X, Y: e.Y, W: e.W, H: e.H}
}

// Callbacks are the notifications the engine produces. Any field may be nil.
type Callbacks struct {
	OnLayoutCommit func(LayoutCommitEvent)
	OnExternalDrop func(ExternalDropEvent)
	OnDragStart    func(id string)
	OnDragStop     func(id string)
	OnResizeStart  func(id string)
	OnResizeStop   func(id string)
}

// Commit delivers e to OnLayoutCommit if set.
func (c Callbacks) Commit(e LayoutCommitEvent) {
	if c.OnLayoutCommit != nil {
		c.OnLayoutCommit(e)
	}
}

// Drop delivers e to OnExternalDrop if set.
func (c Callbacks) Drop(e ExternalDropEvent) {
	if c.OnExternalDrop != nil {
		c.OnExternalDrop(e)
	}
}

// DragStart delivers a drag-start notification if OnDragStart is set.
func (c Callbacks) DragStart(id string) {
	if c.OnDragStart != nil {
		c.OnDragStart(id)
	}
}

// DragStop delivers a drag-stop notification if OnDragStop is set.
func (c Callbacks) DragStop(id string) {
	if c.OnDragStop != nil {
		c.OnDragStop(id)
	}
}

// ResizeStart delivers a resize-start notification if OnResizeStart is set.
func (c Callbacks) ResizeStart(id string) {
	if c.OnResizeStart != nil {
		c.OnResizeStart(id)
	}
}

// ResizeStop delivers a resize-stop notification if OnResizeStop is set.
func (c Callbacks) ResizeStop(id string) {
	if c.OnResizeStop != nil {
		c.OnResizeStop(id)
	}
}
