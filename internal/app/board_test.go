package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/x/ansi"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestBoard loads a board holding ws into a 122x40 terminal. With the
// default 22 cell palette the grid starts at x=23 and is 99 cells wide:
// 12 columns of 8 cells, rows of 3 lines.
func newTestBoard(t *testing.T, tweak func(*config.UserConfig), ws ...widget.Widget) (*Board, *store.MemoryStore, *fakeClock) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Animation.Enabled = false
	if tweak != nil {
		tweak(cfg)
	}

	st := store.NewMemoryStore()
	if err := st.Save(context.Background(), store.Board{Name: "main", Origin: "seed", Widgets: ws}); err != nil {
		t.Fatal(err)
	}
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	b := NewBoard(Options{
		Config:     cfg,
		Store:      st,
		BoardName:  "main",
		Now:        clk.Now,
		NoSampling: true,
	})
	t.Cleanup(func() {
		b.Close()
		st.Close()
	})

	b.Update(b.loadCmd()())
	b.Update(tea.WindowSizeMsg{Width: 122, Height: 40})
	return b, st, clk
}

func clockAt(id string, x, y int) widget.Widget {
	return widget.Widget{ID: id, Type: "clock", Layout: widget.Rect{X: x, Y: y, W: 3, H: 1}}
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "pgup":
		return tea.KeyPressMsg{Code: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	}
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func click(x, y int) tea.MouseClickMsg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func motion(x, y int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func release(x, y int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}

// tallBoard stacks n full width notes two rows apart, 3n lines of grid in
// a 39 line viewport.
func tallBoard(n int) []widget.Widget {
	ws := make([]widget.Widget, n)
	for i := range ws {
		ws[i] = widget.Widget{ID: fmt.Sprintf("n%d", i), Type: "note", Layout: widget.Rect{X: 0, Y: 2 * i, W: 12, H: 2}}
	}
	return ws
}

func layoutOf(t *testing.T, b *Board, id string) widget.Rect {
	t.Helper()
	ws := b.Widgets()
	i := widget.Index(ws, id)
	if i < 0 {
		t.Fatalf("widget %s missing from %v", id, widget.IDs(ws))
	}
	return ws[i].Layout
}

// =============================================================================
// Loading and Sync Tests
// =============================================================================

func TestLoadSyncsGrid(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	if got := b.grid.EngineIDs(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("engine ids = %v", got)
	}
	g := b.grid.Geometry()
	if g.OriginX != 23 || g.CellW != 8 || g.RowH != 3 || g.Columns != 12 {
		t.Errorf("geometry = %+v", g)
	}
	if b.grid.Breakpoint() != widget.Wide {
		t.Errorf("breakpoint = %s", b.grid.Breakpoint())
	}
}

func TestExternalBoardUpdates(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	b.Update(boardUpdateMsg{board: store.Board{
		Name:    "main",
		Origin:  "api",
		Widgets: []widget.Widget{clockAt("a", 0, 0), clockAt("z", 6, 0)},
	}})
	if got := widget.IDs(b.Widgets()); len(got) != 2 {
		t.Fatalf("foreign update not applied: %v", got)
	}
	if got := b.grid.EngineIDs(); len(got) != 2 {
		t.Errorf("grid not synced with the update: %v", got)
	}

	b.Update(boardUpdateMsg{board: store.Board{Name: "main", Origin: b.origin}})
	if got := widget.IDs(b.Widgets()); len(got) != 2 {
		t.Errorf("own echo replaced the list: %v", got)
	}
}

func TestLoadErrorDisablesSaving(t *testing.T) {
	b, _, _ := newTestBoard(t, nil)
	b.Update(boardMsg{err: store.ErrClosed})

	if b.loadErr == nil {
		t.Fatal("load error not kept")
	}
	if cmd := b.queueSave(); cmd != nil {
		t.Error("save issued after a failed load")
	}
}

// =============================================================================
// Keyboard Tests
// =============================================================================

func TestAddUndoRedo(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	b.Update(key("a"))
	ws := b.Widgets()
	if len(ws) != 2 {
		t.Fatalf("widgets after add = %v", widget.IDs(ws))
	}
	if ws[1].Type != "clock" || ws[1].Layout != (widget.Rect{X: 3, Y: 0, W: 3, H: 1}) {
		t.Errorf("added widget = %+v", ws[1])
	}

	b.Update(key("u"))
	if got := widget.IDs(b.Widgets()); len(got) != 1 || got[0] != "a" {
		t.Fatalf("after undo = %v", got)
	}
	b.Update(key("U"))
	if got := b.Widgets(); len(got) != 2 || got[1].ID != ws[1].ID {
		t.Errorf("after redo = %v", widget.IDs(got))
	}
}

func TestPaletteSelection(t *testing.T) {
	b, _, _ := newTestBoard(t, nil)

	b.Update(key("k"))
	if b.selected != 4 {
		t.Errorf("prev from first card = %d, want last", b.selected)
	}
	b.Update(key("j"))
	b.Update(key("j"))
	if b.selected != 1 {
		t.Errorf("selected = %d, want 1", b.selected)
	}

	b.Update(key("a"))
	if ws := b.Widgets(); len(ws) != 1 || ws[0].Type != "cpu" {
		t.Errorf("added %v, want one cpu widget", ws)
	}
}

func TestCycleCompaction(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))
	want := b.policy.Compact.Next()

	b.Update(key("c"))
	if b.policy.Compact != want || b.grid.Policy().Compact != want {
		t.Errorf("compaction = %s / %s, want %s", b.policy.Compact, b.grid.Policy().Compact, want)
	}
	if b.notice == "" {
		t.Error("no status notice for the new mode")
	}
}

func TestNothingToUndo(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))
	b.Update(key("u"))
	if b.notice != "nothing to undo" {
		t.Errorf("notice = %q", b.notice)
	}
}

// =============================================================================
// Pointer Tests
// =============================================================================

func TestDragTitleBar(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	// Grab the title 7 cells right of the frame's left edge and move the
	// pointer two columns right and one row down.
	b.Update(click(30, 0))
	if !b.Interacting() {
		t.Fatal("press on the title did not arm a drag")
	}
	b.Update(motion(46, 3))
	if a, ok := b.grid.Active(); !ok || a.Kind != engine.GestureDrag || a.ID != "a" {
		t.Fatalf("active gesture = %+v, %v", a, ok)
	}
	b.Update(release(46, 3))

	// Vertical compaction pulls it back to the top row.
	if got := layoutOf(t, b, "a"); got != (widget.Rect{X: 2, Y: 0, W: 3, H: 1}) {
		t.Errorf("after drag a = %v", got)
	}
	if b.Interacting() {
		t.Error("gesture still active after release")
	}

	b.Update(key("u"))
	if got := layoutOf(t, b, "a"); got != (widget.Rect{X: 0, Y: 0, W: 3, H: 1}) {
		t.Errorf("after undo a = %v", got)
	}
}

func TestEscCancelsDrag(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	b.Update(click(30, 0))
	b.Update(motion(62, 0))
	b.Update(key("esc"))
	b.Update(release(62, 0))

	if got := layoutOf(t, b, "a"); got != (widget.Rect{X: 0, Y: 0, W: 3, H: 1}) {
		t.Errorf("cancelled drag moved a to %v", got)
	}
	if len(b.history) != 0 {
		t.Errorf("cancelled drag recorded %d undo steps", len(b.history))
	}
}

func TestResizeFromCorner(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	// The frame spans x 23..46 and y 0..2; the handle is its last cell.
	b.Update(click(46, 2))
	b.Update(motion(62, 5))
	b.Update(release(62, 5))

	if got := layoutOf(t, b, "a"); got != (widget.Rect{X: 0, Y: 0, W: 5, H: 2}) {
		t.Errorf("after resize a = %v", got)
	}
}

func TestResizeDisabled(t *testing.T) {
	b, _, _ := newTestBoard(t, func(c *config.UserConfig) { c.Grid.DisableResize = true }, clockAt("a", 0, 0))

	b.Update(click(46, 2))
	b.Update(motion(62, 5))
	b.Update(release(62, 5))

	if got := layoutOf(t, b, "a"); got != (widget.Rect{X: 0, Y: 0, W: 3, H: 1}) {
		t.Errorf("resize with resizing disabled: a = %v", got)
	}
}

func TestCloseButtonRemoves(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0), clockAt("b", 3, 0))

	b.Update(click(45, 0))
	if got := widget.IDs(b.Widgets()); len(got) != 1 || got[0] != "b" {
		t.Fatalf("after close = %v", got)
	}
	if got := layoutOf(t, b, "b"); got.X != 3 {
		t.Errorf("neighbour moved sideways: %v", got)
	}
}

func TestHoldActivation(t *testing.T) {
	b, _, clk := newTestBoard(t, func(c *config.UserConfig) {
		c.Grid.DragActivation = string(widget.ActivateHold)
		c.Grid.HoldDelayMs = 300
	}, clockAt("a", 0, 0))

	b.Update(click(30, 0))
	b.Update(motion(46, 0))
	if _, ok := b.grid.Active(); ok {
		t.Fatal("drag started before the hold delay")
	}
	b.Update(release(46, 0))

	b.Update(click(30, 0))
	clk.Advance(400 * time.Millisecond)
	b.Update(motion(46, 0))
	if _, ok := b.grid.Active(); !ok {
		t.Fatal("drag did not start after the hold delay")
	}
	b.Update(release(46, 0))
	if got := layoutOf(t, b, "a"); got.X != 2 {
		t.Errorf("after held drag a = %v", got)
	}
}

func TestPaletteDragIn(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	// The first card is the clock, drawn at y 2..4.
	b.Update(click(5, 3))
	if !b.dragin.Dragging() {
		t.Fatal("press on a card did not start a drag-in")
	}
	b.Update(motion(40, 10))
	if b.grid.Placeholder() == nil {
		t.Fatal("no placeholder while over the grid")
	}
	b.Update(release(40, 10))

	ws := b.Widgets()
	if len(ws) != 2 {
		t.Fatalf("widgets after drop = %v", widget.IDs(ws))
	}
	dropped := ws[1]
	if dropped.Type != "clock" || dropped.Config == nil {
		t.Errorf("dropped widget = %+v", dropped)
	}
	if !b.grid.Protected(dropped.ID) {
		t.Error("dropped widget not protected")
	}
	if len(b.history) != 1 {
		t.Errorf("undo steps = %d, want 1", len(b.history))
	}

	// Paint the new widget, then let the transition run out.
	b.View()
	for range 3 {
		b.Update(TickerMsg{})
	}
	if n := b.drops.Active(); n != 0 {
		t.Errorf("%d transitions still running", n)
	}
}

func TestPaletteDropOffGridCancels(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))
	commits := 0
	b.grid.SetCallbacks(widget.Callbacks{
		OnLayoutCommit: func(ev widget.LayoutCommitEvent) {
			commits++
			b.onCommit(ev)
		},
		OnDragStart:   b.takeSnapshot,
		OnResizeStart: b.takeSnapshot,
	})
	_, idle := b.grid.Subscribers()

	b.Update(click(5, 3))
	if _, n := b.grid.Subscribers(); n != idle+1 {
		t.Fatalf("drag-in placeholder subscriptions = %d, want %d", n, idle+1)
	}
	b.Update(motion(6, 20))
	b.Update(release(6, 20))

	if got := b.Widgets(); len(got) != 1 {
		t.Errorf("drop off the grid added widgets: %v", widget.IDs(got))
	}
	if b.Interacting() {
		t.Error("drag-in still active")
	}
	if commits != 0 {
		t.Errorf("cancelled drag-in committed %d times", commits)
	}
	if len(b.history) != 0 || b.snapshot != nil {
		t.Errorf("cancelled drag-in left history %d, snapshot %v", len(b.history), b.snapshot != nil)
	}
	if b.saving || b.saveQueued || b.saveWanted {
		t.Error("cancelled drag-in queued a save")
	}
	if _, n := b.grid.Subscribers(); n != idle {
		t.Errorf("placeholder subscriptions after cancel = %d, want %d", n, idle)
	}
	if timers, subs := b.dragin.Pending(); timers != 0 || subs != 0 {
		t.Errorf("drag-in pending = %d timers, %d subscriptions", timers, subs)
	}
	if _, ok := b.grid.ExternalRect(); ok {
		t.Error("grid still holds the external item")
	}
	if got := b.grid.EngineIDs(); len(got) != 1 || got[0] != "a" {
		t.Errorf("engine ids = %v", got)
	}
}

func TestNarrowDropKeepsWideSlot(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))
	b.Update(tea.WindowSizeMsg{Width: 70, Height: 40})
	if b.grid.Breakpoint() != widget.Narrow {
		t.Fatalf("breakpoint = %s, want narrow", b.grid.Breakpoint())
	}

	b.onDrop(widget.ExternalDropEvent{WidgetType: "note", X: 0, Y: 3, W: 3, H: 2, NewID: "n"})

	ws := b.Widgets()
	i := widget.Index(ws, "n")
	if i < 0 {
		t.Fatalf("dropped widget missing from %v", widget.IDs(ws))
	}
	if m := ws[i].MobileLayout; m == nil || *m != (widget.Rect{X: 0, Y: 3, W: 3, H: 2}) {
		t.Errorf("mobile layout = %v, want the drop rect", m)
	}
	if got := ws[i].Layout; got != (widget.Rect{X: 3, Y: 0, W: 3, H: 2}) {
		t.Errorf("wide layout = %v, want first free wide slot", got)
	}
}

// =============================================================================
// Scrolling Tests
// =============================================================================

func TestScrollTallBoard(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, tallBoard(20)...)

	// 40 rows of 3 lines in a 39 line viewport.
	if m := b.maxScroll(); m != 81 {
		t.Fatalf("maxScroll = %d, want 81", m)
	}
	if id, hit, _ := b.hitTest(60, 39); hit != partNone {
		t.Errorf("status bar row hit %s", id)
	}

	b.Update(tea.MouseWheelMsg{X: 60, Y: 10, Button: tea.MouseWheelDown})
	if s := b.grid.Scroll(); s != 3 {
		t.Errorf("wheel scrolled to %d, want one row", s)
	}
	if g := b.grid.Geometry(); g.OriginY != -3 {
		t.Errorf("geometry origin = %d, want -3", g.OriginY)
	}

	for range 3 {
		b.Update(key("pgdown"))
	}
	if s := b.grid.Scroll(); s != 81 {
		t.Fatalf("paged to %d, want clamped to 81", s)
	}
	if id, hit, _ := b.hitTest(60, 33); id != "n19" || hit != partTitle {
		t.Errorf("last widget title at y=33 = %s/%v, want n19 title", id, hit)
	}
	lines := strings.Split(ansi.Strip(b.Render()), "\n")
	if !strings.Contains(lines[39], "line 81/81") {
		t.Errorf("status line = %q", lines[39])
	}

	for range 3 {
		b.Update(key("pgup"))
	}
	b.Update(tea.MouseWheelMsg{X: 60, Y: 10, Button: tea.MouseWheelUp})
	if s := b.grid.Scroll(); s != 0 {
		t.Errorf("scrolled back to %d, want 0", s)
	}
}

func TestScrollNeedsOverflow(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	b.Update(tea.MouseWheelMsg{X: 60, Y: 10, Button: tea.MouseWheelDown})
	b.Update(key("pgdown"))
	if s := b.grid.Scroll(); s != 0 {
		t.Errorf("board that fits scrolled to %d", s)
	}
}

func TestAutoScrollDuringDrag(t *testing.T) {
	tests := []struct {
		name    string
		mode    widget.AutoScroll
		scrolls bool
	}{
		{"grid", widget.AutoScrollGrid, true},
		{"window", widget.AutoScrollWindow, true},
		{"none", widget.AutoScrollNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, clk := newTestBoard(t, func(c *config.UserConfig) { c.Grid.AutoScroll = string(tt.mode) }, tallBoard(20)...)

			b.Update(click(30, 0))
			b.Update(motion(30, 38))
			if a, ok := b.grid.Active(); !ok || a.ID != "n0" {
				t.Fatal("drag did not start")
			}
			first := b.grid.Scroll()

			clk.Advance(autoScrollEvery)
			b.Update(TickerMsg(clk.Now()))
			got := b.grid.Scroll()

			switch {
			case tt.scrolls && (first != 1 || got != 2):
				t.Errorf("scroll at the bottom edge = %d then %d, want 1 then 2", first, got)
			case !tt.scrolls && got != 0:
				t.Errorf("scrolled to %d with auto scroll off", got)
			}
			if g := b.grid.Geometry(); g.OriginY != -got {
				t.Errorf("geometry origin = %d, want %d", g.OriginY, -got)
			}

			b.Update(release(30, 38))
			if b.Interacting() {
				t.Error("drag still active")
			}
			if r := layoutOf(t, b, "n0"); r.Y == 0 {
				t.Error("dragged widget did not move")
			}
		})
	}
}

func TestAutoScrollWaitsBetweenSteps(t *testing.T) {
	b, _, clk := newTestBoard(t, func(c *config.UserConfig) { c.Grid.AutoScroll = "grid" }, tallBoard(20)...)

	b.Update(click(30, 0))
	b.Update(motion(30, 38))
	clk.Advance(autoScrollEvery / 2)
	b.Update(TickerMsg(clk.Now()))
	if s := b.grid.Scroll(); s != 1 {
		t.Errorf("scroll = %d before the step interval passed, want 1", s)
	}

	b.Update(motion(30, 20))
	clk.Advance(autoScrollEvery)
	b.Update(TickerMsg(clk.Now()))
	if s := b.grid.Scroll(); s != 1 {
		t.Errorf("scroll = %d with the pointer away from the edge, want 1", s)
	}
}

// =============================================================================
// Persistence Tests
// =============================================================================

func TestCommitSavesBoard(t *testing.T) {
	b, st, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	_, cmd := b.Update(key("a"))
	if cmd == nil || !b.saving {
		t.Fatal("commit did not start a save")
	}
	b.saving = false
	b.Update(b.queueSave()())

	got, err := st.Load(context.Background(), "main")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Widgets) != 2 || got.Origin != b.origin {
		t.Errorf("stored board = %+v", got)
	}
}

func TestSavesDoNotOverlap(t *testing.T) {
	b, _, _ := newTestBoard(t, nil)

	b.Update(key("a"))
	b.Update(key("a"))
	if !b.saving || !b.saveQueued {
		t.Errorf("saving = %v, queued = %v", b.saving, b.saveQueued)
	}
	b.Update(savedMsg{})
	if !b.saving || b.saveQueued {
		t.Errorf("queued save not issued: saving = %v, queued = %v", b.saving, b.saveQueued)
	}
}

// =============================================================================
// Rendering Tests
// =============================================================================

func TestRender(t *testing.T) {
	b, _, _ := newTestBoard(t, nil, clockAt("a", 0, 0))

	out := ansi.Strip(b.Render())
	lines := strings.Split(out, "\n")
	if len(lines) != 40 {
		t.Fatalf("rendered %d lines, want 40", len(lines))
	}
	for _, want := range []string{"Widgets", "◷ Clock", "×", "◢"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
	if !strings.Contains(lines[39], "main") {
		t.Errorf("status bar = %q", lines[39])
	}
	if got := ansi.StringWidth(lines[0]); got != 122 {
		t.Errorf("line width = %d", got)
	}
}

func TestRenderASCII(t *testing.T) {
	b, _, _ := newTestBoard(t, func(c *config.UserConfig) { c.Appearance.ASCIIOnly = true }, clockAt("a", 0, 0))

	out := ansi.Strip(b.Render())
	if strings.ContainsAny(out, "╭╮╰╯×◢") {
		t.Error("ascii render contains box drawing characters")
	}
}

func TestHelpHidesDisabledGestures(t *testing.T) {
	b, _, _ := newTestBoard(t, func(c *config.UserConfig) { c.Grid.DisableResize = true })

	for _, s := range b.helpSections() {
		if s.Condition == "resize" {
			t.Errorf("help shows %q with resizing disabled", s.Title)
		}
	}
	b.Update(key("?"))
	if !b.ShowHelp || !strings.Contains(ansi.Strip(b.Render()), "Undo") {
		t.Error("help overlay not drawn")
	}
}

func TestPaddingInsetsContent(t *testing.T) {
	b, _, _ := newTestBoard(t, func(c *config.UserConfig) {
		c.Appearance.ASCIIOnly = true
		c.Grid.Padding = 1
	}, clockAt("a", 0, 0))

	if g := b.grid.Geometry(); g.Padding != 1 {
		t.Fatalf("geometry padding = %d, want 1", g.Padding)
	}
	if w, h := bodySize(ui.Bounds{Width: 10, Height: 5}, 1); w != 6 || h != 1 {
		t.Errorf("bodySize = %dx%d, want 6x1", w, h)
	}

	got := strings.Split(ansi.Strip(b.drawFrame(frame{
		Bounds:  ui.Bounds{Width: 10, Height: 5},
		Body:    "abcdefgh",
		Padding: 1,
		Opacity: 1,
	})), "\n")
	want := []string{"+--------+", "|        |", "| abcdef |", "|        |", "+--------+"}
	if len(got) != len(want) {
		t.Fatalf("frame = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCanvasPlace(t *testing.T) {
	c := newCanvas(10, 2)
	c.place(2, 0, "abc")
	c.place(8, 1, "xyz")
	c.place(-1, 1, "12")

	got := strings.Split(ansi.Strip(c.String()), "\n")
	want := []string{"  abc     ", "2       xy"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// =============================================================================
// Log Tests
// =============================================================================

func TestLogRingIsBounded(t *testing.T) {
	b, _, _ := newTestBoard(t, nil)
	for i := range config.MaxLogMessages + 10 {
		b.LogInfo("entry %d", i)
	}
	if len(b.LogMessages) != config.MaxLogMessages {
		t.Errorf("log ring holds %d entries", len(b.LogMessages))
	}
	if last := b.LogMessages[len(b.LogMessages)-1].Message; last != "entry 509" {
		t.Errorf("newest entry = %q", last)
	}
}

func TestRenderStatic(t *testing.T) {
	out := ansi.Strip(RenderStatic(config.DefaultConfig(), store.Board{
		Name:    "main",
		Widgets: []widget.Widget{clockAt("a", 0, 0)},
	}, 122))

	// The palette is taller than one row of widgets.
	if n := strings.Count(out, "\n") + 1; n != paletteTop+5*cardHeight+1 {
		t.Errorf("rendered %d lines", n)
	}
	if !strings.Contains(out, "◷ Clock") {
		t.Error("widget frame missing")
	}
}
