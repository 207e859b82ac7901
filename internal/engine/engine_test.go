package engine_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

func newEngine(t *testing.T, specs ...engine.NodeSpec) *engine.Engine {
	t.Helper()
	e := engine.New(engine.Options{Columns: 8, Draggable: true, Resizable: true})
	e.Batch(func() {
		for _, s := range specs {
			if err := e.AddNode(s); err != nil {
				t.Fatalf("AddNode(%s): %v", s.ID, err)
			}
		}
	})
	return e
}

func spec(id string, x, y, w, h int) engine.NodeSpec {
	return engine.NodeSpec{ID: id, Rect: widget.Rect{X: x, Y: y, W: w, H: h}}
}

func rect(t *testing.T, e *engine.Engine, id string) widget.Rect {
	t.Helper()
	r, ok := e.Rect(id)
	if !ok {
		t.Fatalf("node %q missing", id)
	}
	return r
}

func record(e *engine.Engine) *[]engine.Change {
	var got []engine.Change
	e.OnNodeChanged(func(c engine.Change) { got = append(got, c) })
	return &got
}

// =============================================================================
// Mutation Tests
// =============================================================================

func TestBatchRemovesBeforeAdding(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2), spec("c", 4, 0, 4, 2))
	changes := record(e)

	e.Batch(func() {
		_ = e.AddNode(spec("b", 0, 0, 4, 2))
		_ = e.RemoveNode("a")
	})

	if r := rect(t, e, "b"); r != (widget.Rect{X: 0, Y: 0, W: 4, H: 2}) {
		t.Errorf("b = %v, want the freed cell", r)
	}
	if r := rect(t, e, "c"); r.Y != 0 {
		t.Errorf("c moved to %v", r)
	}
	for _, c := range *changes {
		if c.Kind == engine.ChangeSettled {
			t.Errorf("unexpected settle %v", c.IDs)
		}
	}
	if len(*changes) != 2 || (*changes)[0].Kind != engine.ChangeRemoved || (*changes)[1].Kind != engine.ChangeAdded {
		t.Errorf("changes = %+v, want removed then added", *changes)
	}
}

func TestAddPushesNeighbour(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2))
	changes := record(e)

	if err := e.AddNode(spec("b", 0, 0, 4, 2)); err != nil {
		t.Fatal(err)
	}
	if r := rect(t, e, "b"); r.Y != 0 {
		t.Errorf("b = %v, want row 0", r)
	}
	if r := rect(t, e, "a"); r.Y != 2 {
		t.Errorf("a = %v, want pushed to row 2", r)
	}
	last := (*changes)[len(*changes)-1]
	if last.Kind != engine.ChangeSettled || !slices.Equal(last.IDs, []string{"a"}) || last.User {
		t.Errorf("last change = %+v, want settled [a]", last)
	}
}

func TestMutationErrors(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 1, 1))

	if err := e.AddNode(spec("a", 0, 0, 1, 1)); !errors.Is(err, engine.ErrDuplicateNode) {
		t.Errorf("duplicate add: %v", err)
	}
	if err := e.RemoveNode("nope"); !errors.Is(err, engine.ErrUnknownNode) {
		t.Errorf("remove unknown: %v", err)
	}
	if err := e.UpdateNode("nope", widget.Rect{W: 1, H: 1}); !errors.Is(err, engine.ErrUnknownNode) {
		t.Errorf("update unknown: %v", err)
	}
}

func TestContainerGenerations(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 2, 2))
	first, ok := e.Container("a")
	if !ok || first.Marker != engine.Marker("a") || first.Marker != "gridboard-widget:a" {
		t.Fatalf("container = %+v", first)
	}

	_ = e.RemoveNode("a")
	_ = e.AddNode(spec("a", 0, 0, 2, 2))
	second, _ := e.Container("a")
	if second.Gen <= first.Gen {
		t.Errorf("re-added node kept generation %d", second.Gen)
	}
	if n := len(e.Containers()); n != 1 {
		t.Errorf("containers = %d, want 1", n)
	}
}

func TestSetColumnsRefits(t *testing.T) {
	e := newEngine(t, spec("a", 4, 0, 4, 2))
	e.SetColumns(4)
	if r := rect(t, e, "a"); r.X+r.W > 4 {
		t.Errorf("a = %v does not fit 4 columns", r)
	}
}

func TestUnsubscribe(t *testing.T) {
	e := newEngine(t)
	calls := 0
	stop := e.OnNodeChanged(func(engine.Change) { calls++ })
	_ = e.AddNode(spec("a", 0, 0, 1, 1))
	stop()
	_ = e.AddNode(spec("b", 1, 0, 1, 1))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n, _ := e.Subscribers(); n != 0 {
		t.Errorf("subscribers = %d", n)
	}
}

// =============================================================================
// Drag and Resize Tests
// =============================================================================

func TestDragLifecycle(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2), spec("b", 4, 0, 4, 2))
	changes := record(e)

	if err := e.BeginDrag("a"); err != nil {
		t.Fatal(err)
	}
	if err := e.BeginDrag("b"); !errors.Is(err, engine.ErrBusy) {
		t.Errorf("second BeginDrag: %v", err)
	}

	_ = e.DragTo(layout.Point{X: 4, Y: 0})
	if r := rect(t, e, "b"); r.Y != 2 {
		t.Errorf("b = %v while a hovers over it", r)
	}
	if p := e.Placeholder(); p == nil || p.Rect != (widget.Rect{X: 4, Y: 0, W: 4, H: 2}) {
		t.Errorf("placeholder = %+v", p)
	}

	_ = e.DragTo(layout.Point{X: 0, Y: 0})
	if r := rect(t, e, "b"); r != (widget.Rect{X: 4, Y: 0, W: 4, H: 2}) {
		t.Errorf("b = %v after a moved back", r)
	}

	_ = e.DragTo(layout.Point{X: 4, Y: 0})
	if err := e.EndDrag(); err != nil {
		t.Fatal(err)
	}
	if e.Placeholder() != nil {
		t.Error("placeholder still visible after drop")
	}
	if _, ok := e.Active(); ok {
		t.Error("gesture still active")
	}

	first, last := (*changes)[0], (*changes)[len(*changes)-1]
	if first.Phase != engine.PhaseStart || first.Gesture != engine.GestureDrag {
		t.Errorf("first change = %+v", first)
	}
	if last.Phase != engine.PhaseStop || last.Kind != engine.ChangeSettled {
		t.Errorf("last change = %+v", last)
	}
	if !slices.Contains(last.IDs, "a") || !slices.Contains(last.IDs, "b") {
		t.Errorf("stop ids = %v, want a and b", last.IDs)
	}
}

func TestDragCancelRestores(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2), spec("b", 4, 0, 4, 2))
	_ = e.BeginDrag("a")
	_ = e.DragTo(layout.Point{X: 4, Y: 0})
	e.Cancel()

	if r := rect(t, e, "a"); r.X != 0 {
		t.Errorf("a = %v after cancel", r)
	}
	if r := rect(t, e, "b"); r.Y != 0 {
		t.Errorf("b = %v after cancel", r)
	}
}

func TestStructuralChangeCancelsDrag(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2))
	_ = e.BeginDrag("a")
	_ = e.DragTo(layout.Point{X: 4, Y: 3})
	_ = e.AddNode(spec("z", 0, 4, 1, 1))

	if _, ok := e.Active(); ok {
		t.Error("drag survived a structural change")
	}
	if r := rect(t, e, "a"); r.X != 0 {
		t.Errorf("a = %v, want restored", r)
	}
}

func TestPermissions(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2))
	e.SetDraggable(false)
	e.SetResizable(false)

	if err := e.BeginDrag("a"); !errors.Is(err, engine.ErrDragDisabled) {
		t.Errorf("BeginDrag = %v", err)
	}
	if err := e.BeginResize("a", widget.HandleSE); !errors.Is(err, engine.ErrResizeDisabled) {
		t.Errorf("BeginResize = %v", err)
	}

	e.SetDraggable(true)
	_ = e.BeginDrag("a")
	e.SetDraggable(false)
	if _, ok := e.Active(); ok {
		t.Error("disabling drag should cancel the drag in progress")
	}
}

func TestResizeClampsToConstraints(t *testing.T) {
	s := spec("a", 0, 0, 4, 2)
	s.Constraints = widget.Constraints{MinW: 3, MinH: 2}
	e := newEngine(t, s)

	if err := e.BeginResize("a", widget.HandleSE); err != nil {
		t.Fatal(err)
	}
	_ = e.ResizeTo(widget.Rect{X: 0, Y: 0, W: 1, H: 1})
	_ = e.EndResize()

	if r := rect(t, e, "a"); r.W != 3 || r.H != 2 {
		t.Errorf("a = %v, want 3x2", r)
	}
}

// =============================================================================
// External Drag Tests
// =============================================================================

func TestExternalDrop(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2))
	e.SetGeometry(engine.Geometry{OriginX: 10, CellW: 4, RowH: 2})

	var placeholders []*engine.Placeholder
	e.OnPlaceholder(func(p *engine.Placeholder) { placeholders = append(placeholders, p) })

	if err := e.ExternalEnter(engine.NodeSpec{Rect: widget.Rect{W: 4, H: 2}}); err != nil {
		t.Fatal(err)
	}
	if e.ExternalMove(5, 0) {
		t.Error("point left of the grid reported as over it")
	}
	if !e.ExternalMove(10, 0) {
		t.Fatal("point inside the grid reported as outside")
	}
	if r := rect(t, e, "a"); r.Y != 2 {
		t.Errorf("a = %v, want pushed below the placeholder", r)
	}

	r, ok := e.ExternalDrop()
	if !ok || r != (widget.Rect{X: 0, Y: 0, W: 4, H: 2}) {
		t.Fatalf("drop = %v %v", r, ok)
	}
	if got := rect(t, e, "a"); got.Y != 2 {
		t.Errorf("a = %v, neighbours must keep their places at drop", got)
	}
	if slices.Contains(e.IDs(), engine.ExternalID) {
		t.Error("temporary node left behind")
	}
	if len(placeholders) != 2 || placeholders[0] == nil || !placeholders[0].External || placeholders[1] != nil {
		t.Errorf("placeholder events = %v", placeholders)
	}
	if p := placeholders[0]; p.Screen != (ui.Bounds{X: 10, Y: 0, Width: 16, Height: 4}) {
		t.Errorf("placeholder screen = %+v", p.Screen)
	}
}

func TestExternalLeaveAndCancel(t *testing.T) {
	e := newEngine(t, spec("a", 0, 0, 4, 2))
	e.SetGeometry(engine.Geometry{OriginX: 10, CellW: 4, RowH: 2})
	changes := record(e)

	_ = e.ExternalEnter(engine.NodeSpec{Rect: widget.Rect{W: 4, H: 2}})
	e.ExternalMove(10, 0)
	e.ExternalMove(0, 0)

	if r := rect(t, e, "a"); r.Y != 0 {
		t.Errorf("a = %v after the item left", r)
	}
	if e.Placeholder() != nil {
		t.Error("placeholder visible after leave")
	}

	if _, ok := e.ExternalDrop(); ok {
		t.Error("drop off the grid must not succeed")
	}
	last := (*changes)[len(*changes)-1]
	if last.Phase != engine.PhaseCancel || last.Gesture != engine.GestureExternal {
		t.Errorf("last change = %+v, want external cancel", last)
	}
	if _, ok := e.Active(); ok {
		t.Error("external gesture still active")
	}
}

// =============================================================================
// Geometry Tests
// =============================================================================

func TestGeometryFallback(t *testing.T) {
	e := engine.New(engine.Options{Columns: 12})
	g := e.Geometry()
	if g.CellW != widget.DefaultCellWidth || g.RowH != widget.DefaultRowHeight {
		t.Errorf("geometry without viewport = %+v", g)
	}
	if g.Columns != 12 {
		t.Errorf("columns = %d", g.Columns)
	}
}

func TestFitGeometry(t *testing.T) {
	p := widget.DefaultPolicy()
	p.RowHeight = 0
	p.AutoRows = 10
	g := engine.FitGeometry(ui.Bounds{X: 20, Y: 1, Width: 96, Height: 40}, 12, p)

	if g.CellW != 8 || g.RowH != 4 {
		t.Errorf("geometry = %+v, want 8x4 cells", g)
	}
	b := g.CellRect(widget.Rect{X: 1, Y: 2, W: 2, H: 1})
	if b != (ui.Bounds{X: 28, Y: 9, Width: 16, Height: 4}) {
		t.Errorf("CellRect = %+v", b)
	}
	if c, ok := g.PointToCell(28+15, 9); !ok || c != (layout.Point{X: 2, Y: 2}) {
		t.Errorf("PointToCell = %v %v", c, ok)
	}
	if _, ok := g.PointToCell(20+96, 5); ok {
		t.Error("point right of the grid reported inside")
	}
}

func TestScrolledGeometry(t *testing.T) {
	p := widget.DefaultPolicy()
	p.Padding = 1
	g := engine.FitGeometry(ui.Bounds{X: 20, Y: 0, Width: 96, Height: 30}, 12, p).Scrolled(6)

	if g.Padding != 1 {
		t.Errorf("padding = %d, want 1", g.Padding)
	}
	b := g.CellRect(widget.Rect{X: 0, Y: 3, W: 1, H: 1})
	if b.Y != 3 {
		t.Errorf("row 3 scrolled by 6 lines drawn at y=%d, want 3", b.Y)
	}
	if c, ok := g.PointToCell(20, 0); !ok || c != (layout.Point{X: 0, Y: 2}) {
		t.Errorf("top line of a scrolled grid maps to %v %v, want row 2", c, ok)
	}
}
