// Package transition animates an item dropped onto the grid from outside
// into the widget that replaces it.
//
// A drop goes through four phases. The helper clone slides from where it was
// released to the target cell (Sliding). Once there it waits for the real
// widget's first painted frame (AwaitingPaint). The clone then fades out
// while the widget fades in (Crossfading), and the clone is discarded
// (Done). A timeout force-completes any transition that stalls, so the
// widget is always revealed.
package transition

import (
	"context"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/scheduler"
	"github.com/Gaurav-Gosain/gridboard/internal/telemetry"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Default durations.
const (
	DefaultSlide     = 180 * time.Millisecond
	DefaultCrossfade = 150 * time.Millisecond
	DefaultTimeout   = 1500 * time.Millisecond
)

// Phase is the stage of a drop transition.
type Phase int

const (
	Sliding Phase = iota
	AwaitingPaint
	Crossfading
	Done
)

func (p Phase) String() string {
	switch p {
	case Sliding:
		return "sliding"
	case AwaitingPaint:
		return "awaiting-paint"
	case Crossfading:
		return "crossfading"
	case Done:
		return "done"
	}
	return "unknown"
}

// Drop is what the drag-in controller hands over on release.
type Drop struct {
	// Type is the widget type being dropped.
	Type string
	// From is the helper's last screen rectangle.
	From ui.Bounds
}

// Grid is the part of the grid adapter the coordinator uses.
type Grid interface {
	ExternalDrop(newID string) (widget.Rect, bool)
	Geometry() engine.Geometry
	Protect(id string)
}

// Painter reports a widget's first painted frame. The rendering bridge
// implements it.
type Painter interface {
	OnPainted(fn func(id string)) (unsubscribe func())
}

// Scheduler runs the coordinator's timers.
type Scheduler interface {
	After(d time.Duration, fn func()) *scheduler.Timer
	Now() time.Time
}

// Clone is the helper copy drawn on top of the grid during a transition.
type Clone struct {
	ID      string
	Type    string
	Bounds  ui.Bounds
	Opacity float64
}

// Options configure a Coordinator. Zero durations use the defaults; a
// negative Slide or Crossfade skips that animation.
type Options struct {
	Grid        Grid
	Painter     Painter
	Scheduler   Scheduler
	Constraints widget.ConstraintLookup
	OnDrop      func(widget.ExternalDropEvent)
	Slide       time.Duration
	Crossfade   time.Duration
	Timeout     time.Duration
	Logger      *log.Logger
}

type transition struct {
	id      string
	typ     string
	phase   Phase
	started time.Time
	to      ui.Bounds
	painted bool

	slide *ui.Animation
	fade  *ui.Fade

	step    *scheduler.Timer
	timeout *scheduler.Timer
}

// Coordinator runs drop transitions. Several may be in flight at once.
type Coordinator struct {
	grid    Grid
	sched   Scheduler
	lookup  widget.ConstraintLookup
	onDrop  func(widget.ExternalDropEvent)
	logger  *log.Logger
	slide   time.Duration
	fade    time.Duration
	timeout time.Duration

	active      map[string]*transition
	stopPainted func()
}

func duration(d, def time.Duration) time.Duration {
	switch {
	case d == 0:
		return def
	case d < 0:
		return 0
	}
	return d
}

// New creates a coordinator subscribed to the painter.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Coordinator{
		grid:    opts.Grid,
		sched:   opts.Scheduler,
		lookup:  opts.Constraints,
		onDrop:  opts.OnDrop,
		logger:  logger.WithPrefix("transition"),
		slide:   duration(opts.Slide, DefaultSlide),
		fade:    duration(opts.Crossfade, DefaultCrossfade),
		timeout: duration(opts.Timeout, DefaultTimeout),
		active:  make(map[string]*transition),
	}
	if opts.Painter != nil {
		c.stopPainted = opts.Painter.OnPainted(c.onPainted)
	}
	return c
}

// Close stops every timer and unsubscribes from the painter. Transitions in
// flight are dropped without completing.
func (c *Coordinator) Close() {
	for _, t := range c.active {
		t.stop()
	}
	clear(c.active)
	if c.stopPainted != nil {
		c.stopPainted()
		c.stopPainted = nil
	}
}

func (t *transition) stop() {
	t.step.Stop()
	t.timeout.Stop()
	t.step, t.timeout = nil, nil
}

// Begin ends the external drag over the grid and starts the transition for
// the widget that will replace it. It emits the drop event with a fresh id
// and the type's normalized constraints, and protects the id from position
// corrections. It reports false when the item was not over the grid.
func (c *Coordinator) Begin(d Drop) (string, bool) {
	id := uuid.NewString()
	r, ok := c.grid.ExternalDrop(id)
	if !ok {
		return "", false
	}
	c.grid.Protect(id)

	now := c.sched.Now()
	to := c.grid.Geometry().CellRect(r)
	t := &transition{
		id:      id,
		typ:     d.Type,
		phase:   Sliding,
		started: now,
		to:      to,
		slide:   ui.NewAnimation(d.From, to, c.slide, now),
	}
	c.active[id] = t
	t.step = c.sched.After(c.slide, func() { c.slid(t) })
	t.timeout = c.sched.After(c.timeout, func() { c.complete(t, true) })

	c.logger.Debug("drop transition started", "id", id, "type", d.Type, "cell", r)
	telemetry.Transition().OnTransitionStart(context.Background(), id)

	if c.onDrop != nil {
		cons := widget.Lookup(c.lookup, d.Type)
		c.onDrop(widget.ExternalDropEvent{
			WidgetType:  d.Type,
			X:           r.X,
			Y:           r.Y,
			W:           r.W,
			H:           r.H,
			Constraints: cons,
			NewID:       id,
		})
	}
	return id, true
}

func (c *Coordinator) onPainted(id string) {
	t, ok := c.active[id]
	if !ok {
		return
	}
	t.painted = true
	if t.phase == AwaitingPaint {
		c.crossfade(t)
	}
}

func (c *Coordinator) slid(t *transition) {
	t.step = nil
	if t.phase != Sliding {
		return
	}
	if t.painted {
		c.crossfade(t)
		return
	}
	t.phase = AwaitingPaint
}

func (c *Coordinator) crossfade(t *transition) {
	t.phase = Crossfading
	t.fade = ui.NewFade(0, 1, c.fade, c.sched.Now())
	t.step = c.sched.After(c.fade, func() { c.complete(t, false) })
}

func (c *Coordinator) complete(t *transition, forced bool) {
	if t.phase == Done {
		return
	}
	t.stop()
	t.phase = Done
	delete(c.active, t.id)

	d := c.sched.Now().Sub(t.started)
	if forced {
		c.logger.Warn("drop transition timed out, revealing widget", "id", t.id, "painted", t.painted)
	} else {
		c.logger.Debug("drop transition done", "id", t.id, "duration", d)
	}
	telemetry.Transition().OnTransitionComplete(context.Background(), t.id, forced, d)
}

// Phase returns the phase of the transition for id. A finished or unknown
// transition reports Done.
func (c *Coordinator) Phase(id string) Phase {
	if t, ok := c.active[id]; ok {
		return t.phase
	}
	return Done
}

// Active returns the number of transitions in flight.
func (c *Coordinator) Active() int { return len(c.active) }

// WidgetOpacity returns how opaque the real widget id should be drawn. It is
// hidden until the crossfade starts.
func (c *Coordinator) WidgetOpacity(id string) float64 {
	t, ok := c.active[id]
	if !ok {
		return 1
	}
	switch t.phase {
	case Sliding, AwaitingPaint:
		return 0
	case Crossfading:
		return t.fade.Update(c.sched.Now())
	}
	return 1
}

// Clones returns the helper clones to draw, ordered by id.
func (c *Coordinator) Clones() []Clone {
	now := c.sched.Now()
	out := make([]Clone, 0, len(c.active))
	for _, id := range slices.Sorted(maps.Keys(c.active)) {
		t := c.active[id]
		cl := Clone{ID: id, Type: t.typ, Bounds: t.to, Opacity: 1}
		switch t.phase {
		case Sliding:
			cl.Bounds = t.slide.Update(now)
		case Crossfading:
			cl.Opacity = 1 - t.fade.Update(now)
		}
		out = append(out, cl)
	}
	return out
}
