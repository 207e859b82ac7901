// Package dragin drives dragging a palette card onto the grid.
//
// The controller is a small state machine:
//
//	Idle -> DraggingCard -> Morphing -> DraggingCell -> Dropped
//	                    \-----------\-------------\---> Cancelled
//
// While the pointer is off the grid the helper looks like the palette card.
// The first time the grid shows a placeholder for it, the helper morphs into
// the shape of the cell it would occupy: the card content fades out, the
// helper resizes to the placeholder, and the widget preview fades in. A
// morphed helper keeps its cell shape even if the pointer leaves the grid
// again.
package dragin

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/scheduler"
	"github.com/Gaurav-Gosain/gridboard/internal/transition"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/charmbracelet/log"
)

// Default morph step durations.
const (
	DefaultFadeOut = 80 * time.Millisecond
	DefaultResize  = 120 * time.Millisecond
	DefaultFadeIn  = 80 * time.Millisecond
)

// ErrBusy is returned by Start while a drag is in progress.
var ErrBusy = errors.New("drag-in already in progress")

// State is the controller state.
type State int

const (
	Idle State = iota
	DraggingCard
	Morphing
	DraggingCell
	Dropped
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DraggingCard:
		return "dragging-card"
	case Morphing:
		return "morphing"
	case DraggingCell:
		return "dragging-cell"
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// MorphStep is the part of the morph in progress.
type MorphStep int

const (
	MorphFadeOut MorphStep = iota
	MorphResize
	MorphFadeIn
)

type event int

const (
	evStart event = iota
	evPlaceholder
	evMorphed
	evDrop
	evCancel
)

var transitions = map[State]map[event]State{
	Idle:         {evStart: DraggingCard},
	DraggingCard: {evPlaceholder: Morphing, evCancel: Cancelled},
	Morphing:     {evMorphed: DraggingCell, evDrop: Dropped, evCancel: Cancelled},
	DraggingCell: {evDrop: Dropped, evCancel: Cancelled},
	Dropped:      {evStart: DraggingCard},
	Cancelled:    {evStart: DraggingCard},
}

// can reports whether ev is allowed in state from.
func can(from State, ev event) bool {
	_, ok := transitions[from][ev]
	return ok
}

// Grid is the part of the grid adapter the controller drives.
type Grid interface {
	ExternalEnter(widgetType string, size layout.Size) error
	ExternalMove(x, y int) bool
	ExternalCancel()
	OnPlaceholder(fn func(*engine.Placeholder)) (unsubscribe func())
}

// Previews fills the helper's content marker. The rendering bridge
// implements it.
type Previews interface {
	MountPreview(marker, widgetType string)
	UnmountPreview(marker string)
}

// Dropper takes over once the item is released over the grid. The drop
// transition coordinator implements it.
type Dropper interface {
	Begin(d transition.Drop) (string, bool)
}

// Scheduler runs the morph timers.
type Scheduler interface {
	After(d time.Duration, fn func()) *scheduler.Timer
	Now() time.Time
}

// Source is the palette card a drag starts from.
type Source struct {
	Type string
	// Bounds is the card's screen rectangle.
	Bounds ui.Bounds
	// Size is the grid size the item takes; zero uses the type's default.
	Size layout.Size
}

// Helper is the floating element that follows the pointer.
type Helper struct {
	Type   string
	Bounds ui.Bounds
	// Marker names the content slot the preview is mounted into.
	Marker         string
	CloneOpacity   float64
	ContentOpacity float64
	Morphed        bool
}

// Options configure a Controller. Zero durations use the defaults; negative
// ones skip that step.
type Options struct {
	Grid      Grid
	Previews  Previews
	Dropper   Dropper
	Scheduler Scheduler
	FadeOut   time.Duration
	Resize    time.Duration
	FadeIn    time.Duration
	Logger    *log.Logger
}

// Controller runs one drag-in at a time.
type Controller struct {
	grid    Grid
	prev    Previews
	dropper Dropper
	sched   Scheduler
	logger  *log.Logger

	fadeOut time.Duration
	resize  time.Duration
	fadeIn  time.Duration

	state  State
	seq    int
	src    Source
	marker string
	offX   int
	offY   int
	pos    ui.Bounds
	size   ui.Bounds
	over   bool
	target ui.Bounds

	step    MorphStep
	morphed bool
	mounted bool
	fade    *ui.Fade
	anim    *ui.Animation
	timer   *scheduler.Timer
	unsub   func()
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

// New creates an idle controller.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		grid:    opts.Grid,
		prev:    opts.Previews,
		dropper: opts.Dropper,
		sched:   opts.Scheduler,
		logger:  logger.WithPrefix("dragin"),
		fadeOut: duration(opts.FadeOut, DefaultFadeOut),
		resize:  duration(opts.Resize, DefaultResize),
		fadeIn:  duration(opts.FadeIn, DefaultFadeIn),
	}
}

func (c *Controller) fire(ev event) bool {
	next, ok := transitions[c.state][ev]
	if !ok {
		c.logger.Debug("transition refused", "state", c.state, "event", ev)
		return false
	}
	c.logger.Debug("state", "from", c.state, "to", next)
	c.state = next
	return true
}

// State returns the controller state.
func (c *Controller) State() State { return c.state }

// Dragging reports whether a helper is following the pointer.
func (c *Controller) Dragging() bool {
	switch c.state {
	case DraggingCard, Morphing, DraggingCell:
		return true
	}
	return false
}

// Start picks up src with the pointer at (px, py). The helper appears over
// the card, keeping the grab offset.
func (c *Controller) Start(src Source, px, py int) error {
	if !can(c.state, evStart) {
		return fmt.Errorf("start %s: %w", src.Type, ErrBusy)
	}
	if err := c.grid.ExternalEnter(src.Type, src.Size); err != nil {
		return fmt.Errorf("start %s: %w", src.Type, err)
	}
	c.seq++
	c.src = src
	c.marker = fmt.Sprintf("gridboard-helper:%d", c.seq)
	c.offX = min(max(px-src.Bounds.X, 0), max(src.Bounds.Width-1, 0))
	c.offY = min(max(py-src.Bounds.Y, 0), max(src.Bounds.Height-1, 0))
	c.pos = src.Bounds
	c.size = src.Bounds
	c.over = false
	c.morphed = false
	c.fade, c.anim = nil, nil
	c.unsub = c.grid.OnPlaceholder(c.onPlaceholder)
	c.fire(evStart)
	return nil
}

// Move follows the pointer to (px, py). It reports whether the item is over
// the grid.
func (c *Controller) Move(px, py int) bool {
	if !c.Dragging() {
		return false
	}
	c.pos.X = px - c.offX
	c.pos.Y = py - c.offY
	c.grid.ExternalMove(c.pos.X, c.pos.Y)
	return c.over
}

func (c *Controller) onPlaceholder(p *engine.Placeholder) {
	if p == nil || !p.External {
		c.over = false
		return
	}
	c.over = true
	c.target = p.Screen
	switch c.state {
	case DraggingCard:
		if c.fire(evPlaceholder) {
			c.beginMorph()
		}
	case Morphing:
		if c.step == MorphResize && c.anim != nil {
			c.anim.End = c.anim.End.Size(p.Screen.Width, p.Screen.Height)
		}
	}
}

func (c *Controller) beginMorph() {
	c.step = MorphFadeOut
	c.fade = ui.NewFade(1, 0, c.fadeOut, c.sched.Now())
	c.timer = c.sched.After(c.fadeOut, c.morphResize)
}

func (c *Controller) morphResize() {
	c.step = MorphResize
	from := c.size
	to := from.Size(c.target.Width, c.target.Height)
	c.anim = ui.NewAnimation(from, to, c.resize, c.sched.Now())
	c.prev.MountPreview(c.marker, c.src.Type)
	c.mounted = true
	c.timer = c.sched.After(c.resize, c.morphFadeIn)
}

func (c *Controller) morphFadeIn() {
	c.step = MorphFadeIn
	c.size = c.anim.End
	c.offX = min(c.offX, max(c.size.Width-1, 0))
	c.offY = min(c.offY, max(c.size.Height-1, 0))
	c.fade = ui.NewFade(0, 1, c.fadeIn, c.sched.Now())
	c.timer = c.sched.After(c.fadeIn, c.morphDone)
}

func (c *Controller) morphDone() {
	c.timer = nil
	c.morphed = true
	c.fire(evMorphed)
}

// Release drops the item. Over a placeholder it hands off to the dropper
// and returns the new widget id; anywhere else it cancels.
func (c *Controller) Release() (string, bool) {
	if !c.Dragging() {
		return "", false
	}
	if !c.over || !can(c.state, evDrop) {
		c.Cancel()
		return "", false
	}
	from := c.Helper().Bounds
	id, ok := c.dropper.Begin(transition.Drop{Type: c.src.Type, From: from})
	if !ok {
		c.Cancel()
		return "", false
	}
	c.cleanup()
	c.fire(evDrop)
	c.logger.Debug("dropped", "type", c.src.Type, "id", id)
	return id, true
}

// Cancel abandons the drag. The helper snaps back to the card's size, the
// grid forgets the item and nothing is committed.
func (c *Controller) Cancel() {
	if !can(c.state, evCancel) {
		return
	}
	c.grid.ExternalCancel()
	c.size = c.src.Bounds
	c.morphed = false
	c.fade, c.anim = nil, nil
	c.cleanup()
	c.fire(evCancel)
}

func (c *Controller) cleanup() {
	c.timer.Stop()
	c.timer = nil
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	if c.mounted {
		c.prev.UnmountPreview(c.marker)
		c.mounted = false
	}
	c.over = false
}

// Pending returns the controller's live timers and subscriptions.
func (c *Controller) Pending() (timers, subscriptions int) {
	if c.timer != nil {
		timers++
	}
	if c.unsub != nil {
		subscriptions++
	}
	return timers, subscriptions
}

// Helper returns the helper as it should be drawn now.
func (c *Controller) Helper() Helper {
	h := Helper{
		Type:           c.src.Type,
		Marker:         c.marker,
		Bounds:         c.pos.Size(c.size.Width, c.size.Height),
		CloneOpacity:   1,
		ContentOpacity: 0,
		Morphed:        c.morphed,
	}
	if c.morphed {
		h.CloneOpacity, h.ContentOpacity = 0, 1
		return h
	}
	if c.state != Morphing {
		return h
	}
	now := c.sched.Now()
	switch c.step {
	case MorphFadeOut:
		h.CloneOpacity = c.fade.Update(now)
	case MorphResize:
		cur := c.anim.Update(now)
		h.Bounds = c.pos.Size(cur.Width, cur.Height)
		h.CloneOpacity = 0
	case MorphFadeIn:
		h.CloneOpacity = 0
		h.ContentOpacity = c.fade.Update(now)
	}
	return h
}

// Step returns the morph step while Morphing.
func (c *Controller) Step() MorphStep { return c.step }
