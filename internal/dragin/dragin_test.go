package dragin

import (
	"errors"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/scheduler"
	"github.com/Gaurav-Gosain/gridboard/internal/transition"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGrid puts the grid at x >= 30 with 10x3 cells and a 2x2 item.
type fakeGrid struct {
	entered   []string
	cancelled int
	enterErr  error
	fn        func(*engine.Placeholder)
	shown     *engine.Placeholder
}

func (g *fakeGrid) ExternalEnter(widgetType string, _ layout.Size) error {
	if g.enterErr != nil {
		return g.enterErr
	}
	g.entered = append(g.entered, widgetType)
	return nil
}

func (g *fakeGrid) ExternalMove(x, y int) bool {
	if x < 30 || y < 0 {
		if g.shown != nil {
			g.shown = nil
			g.emit(nil)
		}
		return false
	}
	p := &engine.Placeholder{
		ID:       engine.ExternalID,
		External: true,
		Screen:   ui.Bounds{X: 30 + (x-30)/10*10, Y: y / 3 * 3, Width: 20, Height: 6},
	}
	if g.shown == nil || *g.shown != *p {
		g.shown = p
		g.emit(p)
	}
	return true
}

func (g *fakeGrid) emit(p *engine.Placeholder) {
	if g.fn != nil {
		g.fn(p)
	}
}

func (g *fakeGrid) ExternalCancel() {
	g.cancelled++
	if g.shown != nil {
		g.shown = nil
		g.emit(nil)
	}
}

func (g *fakeGrid) OnPlaceholder(fn func(*engine.Placeholder)) func() {
	g.fn = fn
	return func() { g.fn = nil }
}

type fakePreviews struct{ live map[string]string }

func (p *fakePreviews) MountPreview(marker, widgetType string) { p.live[marker] = widgetType }
func (p *fakePreviews) UnmountPreview(marker string)           { delete(p.live, marker) }

type fakeDropper struct {
	drops []transition.Drop
	fail  bool
}

func (d *fakeDropper) Begin(drop transition.Drop) (string, bool) {
	if d.fail {
		return "", false
	}
	d.drops = append(d.drops, drop)
	return "new-id", true
}

type fixture struct {
	now     time.Time
	sched   *scheduler.Scheduler
	grid    *fakeGrid
	prev    *fakePreviews
	dropper *fakeDropper
	c       *Controller
}

func newFixture() *fixture {
	f := &fixture{
		now:     time.Unix(1_700_000_000, 0),
		grid:    &fakeGrid{},
		prev:    &fakePreviews{live: map[string]string{}},
		dropper: &fakeDropper{},
	}
	f.sched = scheduler.New(func() time.Time { return f.now })
	f.c = New(Options{
		Grid:      f.grid,
		Previews:  f.prev,
		Dropper:   f.dropper,
		Scheduler: f.sched,
		FadeOut:   50 * time.Millisecond,
		Resize:    100 * time.Millisecond,
		FadeIn:    50 * time.Millisecond,
	})
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
	f.sched.Tick(f.now)
}

var card = Source{Type: "cpu", Bounds: ui.Bounds{X: 0, Y: 6, Width: 16, Height: 3}}

func (f *fixture) assertClean(t *testing.T) {
	t.Helper()
	timers, subs := f.c.Pending()
	assert.Zero(t, timers, "controller timers")
	assert.Zero(t, subs, "controller subscriptions")
	assert.True(t, f.sched.Idle(), "scheduler not idle")
	assert.Nil(t, f.grid.fn, "placeholder subscription left")
	assert.Empty(t, f.prev.live, "preview left mounted")
}

// =============================================================================
// State Machine Tests
// =============================================================================

func TestCan(t *testing.T) {
	tests := []struct {
		from State
		ev   event
		want bool
	}{
		{Idle, evStart, true},
		{Idle, evDrop, false},
		{Idle, evCancel, false},
		{DraggingCard, evPlaceholder, true},
		{DraggingCard, evDrop, false},
		{DraggingCard, evMorphed, false},
		{Morphing, evMorphed, true},
		{Morphing, evDrop, true},
		{Morphing, evStart, false},
		{DraggingCell, evPlaceholder, false},
		{DraggingCell, evDrop, true},
		{Dropped, evCancel, false},
		{Dropped, evStart, true},
		{Cancelled, evStart, true},
		{Cancelled, evDrop, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, can(tt.from, tt.ev), "can(%v, %d)", tt.from, tt.ev)
	}
}

func TestStartWhileBusy(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.c.Start(card, 2, 7))
	require.ErrorIs(t, f.c.Start(card, 2, 7), ErrBusy)

	f.c.Cancel()
	require.NoError(t, f.c.Start(card, 2, 7), "restart after cancel")
	assert.Equal(t, []string{"cpu", "cpu"}, f.grid.entered)
}

func TestStartPropagatesGridError(t *testing.T) {
	f := newFixture()
	boom := errors.New("boom")
	f.grid.enterErr = boom

	require.ErrorIs(t, f.c.Start(card, 2, 7), boom)
	assert.Equal(t, Idle, f.c.State())
	f.assertClean(t)
}

// =============================================================================
// Morph Tests
// =============================================================================

func TestMorphAndDrop(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.c.Start(card, 2, 7))

	h := f.c.Helper()
	assert.Equal(t, card.Bounds, h.Bounds, "helper starts over the card")
	assert.Equal(t, 1.0, h.CloneOpacity)

	assert.False(t, f.c.Move(12, 8))
	assert.Equal(t, DraggingCard, f.c.State())
	assert.Equal(t, ui.Bounds{X: 10, Y: 7, Width: 16, Height: 3}, f.c.Helper().Bounds)

	require.True(t, f.c.Move(42, 7))
	assert.Equal(t, Morphing, f.c.State())
	assert.Equal(t, MorphFadeOut, f.c.Step())

	f.now = f.now.Add(25 * time.Millisecond)
	h = f.c.Helper()
	assert.Greater(t, h.CloneOpacity, 0.0)
	assert.Less(t, h.CloneOpacity, 1.0)

	f.advance(25 * time.Millisecond)
	assert.Equal(t, MorphResize, f.c.Step())
	assert.Equal(t, "cpu", f.prev.live[f.c.Helper().Marker], "preview not mounted")

	f.advance(100 * time.Millisecond)
	assert.Equal(t, MorphFadeIn, f.c.Step())
	h = f.c.Helper()
	assert.Equal(t, 20, h.Bounds.Width)
	assert.Equal(t, 6, h.Bounds.Height)

	f.advance(50 * time.Millisecond)
	assert.Equal(t, DraggingCell, f.c.State())
	h = f.c.Helper()
	assert.True(t, h.Morphed)
	assert.Equal(t, 1.0, h.ContentOpacity)

	// Leaving the grid does not undo the morph.
	assert.False(t, f.c.Move(5, 7))
	assert.Equal(t, DraggingCell, f.c.State())
	assert.Equal(t, 20, f.c.Helper().Bounds.Width)

	require.True(t, f.c.Move(52, 10))
	id, ok := f.c.Release()
	require.True(t, ok)
	assert.Equal(t, "new-id", id)
	assert.Equal(t, Dropped, f.c.State())

	require.Len(t, f.dropper.drops, 1)
	d := f.dropper.drops[0]
	assert.Equal(t, "cpu", d.Type)
	assert.Equal(t, 20, d.From.Width)
	assert.Zero(t, f.grid.cancelled)
	f.assertClean(t)
}

func TestReleaseDuringMorphDrops(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.c.Start(card, 2, 7))
	require.True(t, f.c.Move(42, 7))

	_, ok := f.c.Release()
	require.True(t, ok)
	assert.Equal(t, Dropped, f.c.State())
	f.assertClean(t)
}

func TestZeroDurationsMorphOnNextTick(t *testing.T) {
	f := newFixture()
	f.c = New(Options{
		Grid: f.grid, Previews: f.prev, Dropper: f.dropper, Scheduler: f.sched,
		FadeOut: -1, Resize: -1, FadeIn: -1,
	})
	require.NoError(t, f.c.Start(card, 0, 6))
	f.c.Move(40, 6)

	for range 3 {
		f.advance(0)
	}
	assert.Equal(t, DraggingCell, f.c.State())
}

// =============================================================================
// Cancel Tests
// =============================================================================

func TestCancelMidMorph(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.c.Start(card, 2, 7))
	require.True(t, f.c.Move(42, 7))
	f.advance(60 * time.Millisecond)
	require.Equal(t, MorphResize, f.c.Step())

	f.c.Cancel()

	assert.Equal(t, Cancelled, f.c.State())
	assert.Equal(t, 1, f.grid.cancelled)
	assert.Empty(t, f.dropper.drops, "cancel must not drop")
	h := f.c.Helper()
	assert.Equal(t, card.Bounds.Width, h.Bounds.Width, "helper must snap back to card size")
	assert.Equal(t, card.Bounds.Height, h.Bounds.Height)
	f.assertClean(t)

	// Nothing fires later.
	f.advance(time.Second)
	assert.Equal(t, Cancelled, f.c.State())
}

func TestReleaseOffGridCancels(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.c.Start(card, 2, 7))
	f.c.Move(10, 7)

	_, ok := f.c.Release()
	assert.False(t, ok)
	assert.Equal(t, Cancelled, f.c.State())
	assert.Equal(t, 1, f.grid.cancelled)
	f.assertClean(t)
}

func TestReleaseAfterLeavingCancels(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.c.Start(card, 2, 7))
	f.c.Move(42, 7)
	for range 3 {
		f.advance(time.Second)
	}
	require.Equal(t, DraggingCell, f.c.State())

	f.c.Move(3, 7)
	_, ok := f.c.Release()
	assert.False(t, ok)
	assert.Equal(t, Cancelled, f.c.State())
	assert.Empty(t, f.dropper.drops)
	f.assertClean(t)
}

func TestDropperRefusalCancels(t *testing.T) {
	f := newFixture()
	f.dropper.fail = true
	require.NoError(t, f.c.Start(card, 2, 7))
	f.c.Move(42, 7)

	_, ok := f.c.Release()
	assert.False(t, ok)
	assert.Equal(t, Cancelled, f.c.State())
	f.assertClean(t)
}

func TestIgnoredWhenIdle(t *testing.T) {
	f := newFixture()
	assert.False(t, f.c.Move(40, 6))
	_, ok := f.c.Release()
	assert.False(t, ok)
	f.c.Cancel()
	assert.Equal(t, Idle, f.c.State())
	assert.Zero(t, f.grid.cancelled)
}
