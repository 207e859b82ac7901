// Package bridge mounts widget content into the containers the grid engine
// keeps for its nodes.
//
// Containers are found by their marker, never by position, so a node that
// moves keeps its mount. A container whose widget is not yet in the synced
// list is left unmounted until a later discovery finds it.
package bridge

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/log"
)

// RenderFunc draws a widget's content into a width x height area. The
// returned string is opaque to the bridge.
type RenderFunc func(w widget.Widget, width, height int) string

// Source is what the bridge reads containers and widgets from. The grid
// adapter implements it.
type Source interface {
	Containers() []engine.Container
	Widgets() []widget.Widget
	OnReconciled(fn func()) (unsubscribe func())
}

// Scheduler delivers paint boundaries.
type Scheduler interface {
	AfterPaint(fn func()) (cancel func())
}

// Mount is one widget's content slot.
type Mount struct {
	ID      string
	Marker  string
	Gen     uint64
	Type    string
	Preview bool
	// Painted is set once a painted frame held non-empty content for the
	// mount.
	Painted bool

	w       widget.Widget
	content string
	drawn   bool
}

// Options configure a Bridge.
type Options struct {
	Source    Source
	Scheduler Scheduler
	Render    RenderFunc
	Logger    *log.Logger
}

// Bridge keeps exactly one mount per live container.
type Bridge struct {
	src    Source
	sched  Scheduler
	render RenderFunc
	logger *log.Logger

	mounts   map[string]*Mount
	previews map[string]*Mount
	deferred map[string]bool

	painted     []func(id string)
	stopSync    func()
	cancelPaint func()
}

// New creates a bridge, discovers the current containers and hooks into the
// source's reconciliation passes and the scheduler's paint boundaries.
func New(opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := &Bridge{
		src:      opts.Source,
		sched:    opts.Scheduler,
		render:   opts.Render,
		logger:   logger.WithPrefix("bridge"),
		mounts:   make(map[string]*Mount),
		previews: make(map[string]*Mount),
		deferred: make(map[string]bool),
	}
	if b.render == nil {
		b.render = func(widget.Widget, int, int) string { return "" }
	}
	b.stopSync = b.src.OnReconciled(b.Discover)
	b.Discover()
	b.armPaint()
	return b
}

// Close detaches the bridge and drops every mount.
func (b *Bridge) Close() {
	if b.stopSync != nil {
		b.stopSync()
		b.stopSync = nil
	}
	if b.cancelPaint != nil {
		b.cancelPaint()
		b.cancelPaint = nil
	}
	clear(b.mounts)
	clear(b.previews)
}

// idFromMarker resolves a container marker to its node id.
func idFromMarker(marker string) (string, bool) {
	id, ok := strings.CutPrefix(marker, engine.MarkerPrefix)
	return id, ok && id != ""
}

// Discover reconciles mounts with the live containers. It is safe to call at
// any time.
func (b *Bridge) Discover() {
	widgets := b.src.Widgets()
	live := make(map[string]bool)
	deferred := make(map[string]bool)

	for _, c := range b.src.Containers() {
		id, ok := idFromMarker(c.Marker)
		if !ok {
			continue
		}
		i := widget.Index(widgets, id)
		if i < 0 {
			// Temporary nodes and widgets the caller has not synced yet.
			if !b.deferred[id] {
				b.logger.Debug("mount deferred", "id", id)
			}
			deferred[id] = true
			continue
		}
		live[id] = true

		m, ok := b.mounts[id]
		if ok && m.Gen != c.Gen {
			b.logger.Debug("container replaced, remounting", "id", id, "gen", c.Gen)
			ok = false
		}
		if !ok {
			m = &Mount{ID: id, Marker: c.Marker, Gen: c.Gen}
			b.mounts[id] = m
		}
		m.w = widgets[i]
		m.Type = widgets[i].Type
	}
	b.deferred = deferred

	for id := range b.mounts {
		if !live[id] {
			b.logger.Debug("unmount", "id", id)
			delete(b.mounts, id)
		}
	}
}

// Render draws the content of widget id. It returns "" for an unmounted id.
func (b *Bridge) Render(id string, width, height int) string {
	m, ok := b.mounts[id]
	if !ok {
		return ""
	}
	return b.draw(m, width, height)
}

func (b *Bridge) draw(m *Mount, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	m.content = b.render(m.w, width, height)
	if m.content != "" {
		m.drawn = true
	}
	return m.content
}

// OnPainted registers fn to run once per mount, the first time a painted
// frame held its content.
func (b *Bridge) OnPainted(fn func(id string)) (unsubscribe func()) {
	b.painted = append(b.painted, fn)
	i := len(b.painted) - 1
	return func() {
		if i < len(b.painted) {
			b.painted[i] = nil
		}
	}
}

func (b *Bridge) armPaint() {
	if b.sched == nil {
		return
	}
	b.cancelPaint = b.sched.AfterPaint(b.onPaint)
}

// onPaint runs on every paint boundary: mounts drawn in the frame just
// painted become painted, then containers are rediscovered.
func (b *Bridge) onPaint() {
	var fresh []string
	for _, m := range b.mounts {
		if m.drawn && !m.Painted {
			m.Painted = true
			fresh = append(fresh, m.ID)
		}
	}
	for _, m := range b.previews {
		if m.drawn {
			m.Painted = true
		}
	}
	slices.Sort(fresh)
	for _, id := range fresh {
		for _, fn := range slices.Clone(b.painted) {
			if fn != nil {
				fn(id)
			}
		}
	}
	b.Discover()
	b.armPaint()
}

// Mount returns a copy of the mount for id.
func (b *Bridge) Mount(id string) (Mount, bool) {
	m, ok := b.mounts[id]
	if !ok {
		return Mount{}, false
	}
	return *m, true
}

// Mounts returns copies of all grid mounts ordered by id.
func (b *Bridge) Mounts() []Mount {
	out := make([]Mount, 0, len(b.mounts))
	for _, id := range slices.Sorted(maps.Keys(b.mounts)) {
		out = append(out, *b.mounts[id])
	}
	return out
}

// Deferred returns the ids whose containers exist but could not be mounted
// yet.
func (b *Bridge) Deferred() []string {
	return slices.Sorted(maps.Keys(b.deferred))
}

// =============================================================================
// Previews
// =============================================================================

// MountPreview fills the content marker of a drag helper with a preview of
// widgetType. Mounting the same marker again replaces the preview.
func (b *Bridge) MountPreview(marker, widgetType string) {
	b.previews[marker] = &Mount{
		ID:      marker,
		Marker:  marker,
		Type:    widgetType,
		Preview: true,
		w:       widget.Widget{ID: marker, Type: widgetType},
	}
}

// UnmountPreview drops a preview mount.
func (b *Bridge) UnmountPreview(marker string) {
	delete(b.previews, marker)
}

// RenderPreview draws a preview mount.
func (b *Bridge) RenderPreview(marker string, width, height int) string {
	m, ok := b.previews[marker]
	if !ok {
		return ""
	}
	return b.draw(m, width, height)
}

// Previews returns the number of live preview mounts.
func (b *Bridge) Previews() int { return len(b.previews) }
