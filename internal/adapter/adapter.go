// Package adapter reconciles the caller's declarative widget list with the
// imperative grid engine.
//
// The adapter is the only component that mutates the engine. Everything else
// reads geometry, containers and the placeholder through it, and requests
// interactions through it. Callers hand it the full widget list and policy on
// every render with Sync; the adapter never stores that list anywhere, it
// only proposes new lists through OnLayoutCommit.
package adapter

import (
	"errors"
	"io"
	"slices"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/log"
)

// DefaultProtectWindow is how long a just-dropped widget is shielded from
// position corrections.
const DefaultProtectWindow = 500 * time.Millisecond

// ErrUnknownWidget is returned for ids missing from the synced list.
var ErrUnknownWidget = errors.New("unknown widget")

// Engine is the part of the grid engine the adapter drives.
type Engine interface {
	AddNode(engine.NodeSpec) error
	RemoveNode(id string) error
	UpdateNode(id string, r widget.Rect) error
	OnNodeChanged(fn func(engine.Change)) (unsubscribe func())
	OnPlaceholder(fn func(*engine.Placeholder)) (unsubscribe func())
	Subscribers() (changes, placeholders int)
	Batch(fn func())

	SetColumns(n int)
	SetCompact(m widget.CompactMode)
	SetMaxRows(n int)
	SetDraggable(on bool)
	SetResizable(on bool)
	SetGeometry(g engine.Geometry)

	Geometry() engine.Geometry
	Nodes() []layout.Node
	IDs() []string
	Rect(id string) (widget.Rect, bool)
	Containers() []engine.Container
	Placeholder() *engine.Placeholder
	Active() (engine.Gesture, bool)
	Rows() int

	BeginDrag(id string) error
	DragTo(target layout.Point) error
	EndDrag() error
	BeginResize(id string, h widget.Handle) error
	ResizeTo(r widget.Rect) error
	EndResize() error
	Cancel()

	ExternalEnter(spec engine.NodeSpec) error
	ExternalMove(x, y int) bool
	ExternalLeave()
	ExternalDrop() (widget.Rect, bool)
	ExternalCancel()
	External() (widget.Rect, bool)
}

// Options configure an Adapter. Engine defaults to a new engine built from
// Policy; Now defaults to time.Now.
type Options struct {
	Engine      Engine
	Policy      widget.GridPolicy
	Constraints widget.ConstraintLookup
	Callbacks   widget.Callbacks
	Protect     time.Duration
	Now         func() time.Time
	Logger      *log.Logger
}

// Adapter keeps one engine in step with the caller's widget list.
type Adapter struct {
	eng    Engine
	policy widget.GridPolicy
	lookup widget.ConstraintLookup
	cb     widget.Callbacks
	window time.Duration
	now    func() time.Time
	logger *log.Logger

	model    []widget.Widget
	viewport ui.Bounds
	scroll   int
	bp       widget.Breakpoint
	cols     int
	synced   bool

	protected map[string]time.Time
	drops     map[string]widget.Rect
	displaced []string
	lastValid map[string]widget.Rect
	proposed  []widget.Widget

	syncing    bool
	reconciled []func()
	stop       func()
}

// New creates an adapter and subscribes it to the engine.
func New(opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	window := opts.Protect
	if window <= 0 {
		window = DefaultProtectWindow
	}
	eng := opts.Engine
	if eng == nil {
		eng = engine.New(engine.Options{
			Columns:   opts.Policy.ColumnsFor(widget.Wide),
			Compact:   opts.Policy.Compact,
			MaxRows:   opts.Policy.MaxRows,
			Draggable: !opts.Policy.DisableDrag,
			Resizable: !opts.Policy.DisableResize,
			Logger:    logger,
		})
	}

	a := &Adapter{
		eng:       eng,
		policy:    opts.Policy,
		lookup:    opts.Constraints,
		cb:        opts.Callbacks,
		window:    window,
		now:       now,
		logger:    logger.WithPrefix("adapter"),
		bp:        widget.Wide,
		cols:      opts.Policy.ColumnsFor(widget.Wide),
		protected: make(map[string]time.Time),
		drops:     make(map[string]widget.Rect),
		lastValid: make(map[string]widget.Rect),
	}
	a.stop = eng.OnNodeChanged(a.onChange)
	return a
}

// Close unsubscribes from the engine.
func (a *Adapter) Close() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}

// SetCallbacks replaces the notification callbacks.
func (a *Adapter) SetCallbacks(cb widget.Callbacks) { a.cb = cb }

// OnReconciled registers fn to run after every reconciliation pass.
func (a *Adapter) OnReconciled(fn func()) (unsubscribe func()) {
	a.reconciled = append(a.reconciled, fn)
	i := len(a.reconciled) - 1
	return func() {
		if i < len(a.reconciled) {
			a.reconciled[i] = nil
		}
	}
}

func (a *Adapter) notifyReconciled() {
	for _, fn := range slices.Clone(a.reconciled) {
		if fn != nil {
			fn()
		}
	}
}

func (a *Adapter) layoutConfig() layout.Config {
	return layout.Config{
		Columns:     a.cols,
		Compact:     a.policy.Compact,
		MaxRows:     a.policy.MaxRows,
		Breakpoint:  a.bp,
		Constraints: a.lookup,
	}
}

// Protect shields id from position corrections for the protection window.
func (a *Adapter) Protect(id string) {
	a.protected[id] = a.now().Add(a.window)
}

// Protected reports whether id is inside its protection window.
func (a *Adapter) Protected(id string) bool {
	until, ok := a.protected[id]
	return ok && a.now().Before(until)
}

func (a *Adapter) expireProtection() {
	now := a.now()
	for id, until := range a.protected {
		if !now.Before(until) {
			delete(a.protected, id)
			if _, ok := a.drops[id]; ok && widget.Index(a.model, id) < 0 {
				a.logger.Debug("dropped widget never arrived", "id", id)
				delete(a.drops, id)
			}
		}
	}
}

// =============================================================================
// Read-only views
// =============================================================================

// Widgets returns a copy of the last synced list.
func (a *Adapter) Widgets() []widget.Widget { return widget.CloneAll(a.model) }

// Breakpoint returns the active breakpoint.
func (a *Adapter) Breakpoint() widget.Breakpoint { return a.bp }

// Columns returns the active column count.
func (a *Adapter) Columns() int { return a.cols }

// Policy returns the policy of the last sync.
func (a *Adapter) Policy() widget.GridPolicy { return a.policy }

// Geometry returns the engine's cell geometry.
func (a *Adapter) Geometry() engine.Geometry { return a.eng.Geometry() }

// SetScroll moves the grid up by y terminal lines inside the viewport. The
// engine maps pointers through the scrolled geometry from then on.
func (a *Adapter) SetScroll(y int) {
	y = max(y, 0)
	if y == a.scroll {
		return
	}
	a.scroll = y
	a.eng.SetGeometry(engine.FitGeometry(a.viewport, a.cols, a.policy).Scrolled(y))
}

// Subscribers returns the engine's live change and placeholder
// subscriptions.
func (a *Adapter) Subscribers() (changes, placeholders int) { return a.eng.Subscribers() }

// Scroll returns the scroll offset in terminal lines.
func (a *Adapter) Scroll() int { return a.scroll }

// Containers returns the engine's live containers.
func (a *Adapter) Containers() []engine.Container { return a.eng.Containers() }

// Placeholder returns the engine's placeholder, or nil.
func (a *Adapter) Placeholder() *engine.Placeholder { return a.eng.Placeholder() }

// OnPlaceholder subscribes to placeholder updates.
func (a *Adapter) OnPlaceholder(fn func(*engine.Placeholder)) (unsubscribe func()) {
	return a.eng.OnPlaceholder(fn)
}

// Rect returns a widget's live rectangle in the engine.
func (a *Adapter) Rect(id string) (widget.Rect, bool) { return a.eng.Rect(id) }

// Active returns the interaction in progress, if any.
func (a *Adapter) Active() (engine.Gesture, bool) { return a.eng.Active() }

// Rows returns the number of grid rows in use.
func (a *Adapter) Rows() int { return a.eng.Rows() }

// ExternalRect returns the placeholder cell of an external item over the
// grid.
func (a *Adapter) ExternalRect() (widget.Rect, bool) { return a.eng.External() }

// EngineIDs returns the ids the engine knows, in its insertion order.
func (a *Adapter) EngineIDs() []string { return a.eng.IDs() }
