package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/content"
	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/theme"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/x/ansi"
)

// Palette geometry: a title line, a blank line, then one card per type.
const (
	paletteTop = 2
	cardHeight = 3
)

// View returns the rendered view.
func (b *Board) View() tea.View {
	var view tea.View
	if b.Width > 0 && b.Height > 0 {
		view.SetContent(b.Render())
	}
	view.AltScreen = true
	view.MouseMode = tea.MouseModeAllMotion
	return view
}

// Render draws the whole board as a string.
func (b *Board) Render() string {
	c := newCanvas(b.Width, b.Height)
	c.place(0, 0, b.renderPalette())
	b.drawGrid(c)
	if b.Height > 1 {
		c.place(0, b.Height-1, b.renderStatus())
	}
	if b.ShowHelp {
		c.center(b.renderHelp())
	}
	if b.ShowLogs {
		c.center(b.renderLogs())
	}
	return c.String()
}

// =============================================================================
// Palette
// =============================================================================

func (b *Board) cardBounds(i int) ui.Bounds {
	return ui.Bounds{X: 0, Y: paletteTop + i*cardHeight, Width: b.paletteWidth(), Height: cardHeight}
}

// cardAt returns the palette card under (x, y).
func (b *Board) cardAt(x, y int) (int, bool) {
	if x < 0 || x >= b.paletteWidth() || y < paletteTop {
		return 0, false
	}
	i := (y - paletteTop) / cardHeight
	if i >= len(content.Types()) {
		return 0, false
	}
	return i, true
}

func (b *Board) renderCard(t content.Type, bounds ui.Bounds, selected bool, opacity float64) string {
	return b.drawFrame(frame{
		Title:   t.Icon + " " + t.Title,
		Bounds:  bounds,
		Body:    " " + t.Description,
		Active:  selected,
		Opacity: opacity,
	})
}

func (b *Board) renderPalette() string {
	width := b.paletteWidth()
	title := lipgloss.NewStyle().
		Foreground(theme.PaletteTitle()).
		Bold(true).
		Width(width).
		Align(lipgloss.Center).
		Render("Widgets")

	blocks := []string{title, ""}
	for i, t := range content.Types() {
		blocks = append(blocks, b.renderCard(t, b.cardBounds(i), i == b.selected, 1))
	}
	return strings.Join(blocks, "\n")
}

// =============================================================================
// Grid
// =============================================================================

func (b *Board) drawGrid(c *canvas) {
	g := b.grid.Geometry()
	active, busy := b.grid.Active()
	index := make(map[string]widget.Widget, len(b.widgets))
	for _, w := range b.widgets {
		index[w.ID] = w
	}

	if b.Interacting() {
		b.drawDots(c, g)
	}

	var dragged *engine.Container
	for _, cont := range b.grid.Containers() {
		w, ok := index[cont.NodeID]
		if !ok {
			continue
		}
		if busy && active.Kind == engine.GestureDrag && active.ID == cont.NodeID {
			dragged = &cont
			continue
		}
		bounds := g.CellRect(cont.Rect)
		bw, bh := bodySize(bounds, g.Padding)
		c.place(bounds.X, bounds.Y, b.drawFrame(frame{
			Title:   content.Title(w),
			Bounds:  bounds,
			Body:    b.bridge.Render(w.ID, bw, bh),
			Padding: g.Padding,
			Active:  busy && active.ID == w.ID,
			Close:   true,
			Handle:  b.showsHandle(),
			Opacity: b.drops.WidgetOpacity(w.ID),
		}))
	}

	if p := b.grid.Placeholder(); p != nil {
		bounds := g.CellRect(p.Rect)
		c.place(bounds.X, bounds.Y, b.drawFrame(frame{Bounds: bounds, Dashed: true, Opacity: 1}))
	}

	if dragged != nil {
		w := index[dragged.NodeID]
		bounds := g.CellRect(dragged.Rect)
		bounds.X, bounds.Y = b.px-b.grabX, b.py-b.grabY
		bw, bh := bodySize(bounds, g.Padding)
		c.place(bounds.X, bounds.Y, b.drawFrame(frame{
			Title:   content.Title(w),
			Bounds:  bounds,
			Body:    b.bridge.Render(w.ID, bw, bh),
			Padding: g.Padding,
			Active:  true,
			Close:   true,
			Handle:  b.showsHandle(),
			Opacity: 1,
		}))
	}

	for _, cl := range b.drops.Clones() {
		t, _ := content.Get(cl.Type)
		c.place(cl.Bounds.X, cl.Bounds.Y, b.drawFrame(frame{
			Title:   t.Icon + " " + t.Title,
			Bounds:  cl.Bounds,
			Active:  true,
			Opacity: cl.Opacity,
		}))
	}

	if b.dragin.Dragging() {
		b.drawHelper(c)
	}
}

// drawHelper draws the item following the pointer during a drag-in. It
// starts as a copy of the palette card and turns into a widget preview.
func (b *Board) drawHelper(c *canvas) {
	h := b.dragin.Helper()
	t, _ := content.Get(h.Type)
	switch {
	case h.CloneOpacity > 0:
		c.place(h.Bounds.X, h.Bounds.Y, b.renderCard(t, h.Bounds, true, h.CloneOpacity))
	case h.ContentOpacity > 0:
		pad := b.grid.Geometry().Padding
		bw, bh := bodySize(h.Bounds, pad)
		body := b.bridge.RenderPreview(h.Marker, bw, bh)
		c.place(h.Bounds.X, h.Bounds.Y, b.drawFrame(frame{
			Title:   t.Icon + " " + t.Title,
			Bounds:  h.Bounds,
			Body:    body,
			Padding: pad,
			Active:  true,
			Opacity: h.ContentOpacity,
		}))
	default:
		c.place(h.Bounds.X, h.Bounds.Y, b.drawFrame(frame{Bounds: h.Bounds, Dashed: true, Opacity: 1}))
	}
}

// drawDots marks the top-left of every visible cell while a gesture is in
// progress.
func (b *Board) drawDots(c *canvas, g engine.Geometry) {
	dot := lipgloss.NewStyle().Foreground(theme.GridDots()).Render("·")
	view := b.gridViewport()
	for y := g.OriginY; y < view.Y+view.Height; y += g.RowH {
		if y < view.Y {
			continue
		}
		for col := range g.Columns {
			c.place(g.OriginX+col*g.CellW, y, dot)
		}
	}
}

// bodySize is the content area of a frame: inside its border and the grid
// padding.
func bodySize(bounds ui.Bounds, pad int) (int, int) {
	return max(bounds.Width-2-2*pad, 0), max(bounds.Height-2-2*pad, 0)
}

func (b *Board) showsHandle() bool {
	p := b.policy
	return !p.DisableResize && (len(p.ResizeHandles) == 0 || p.HasHandle(widget.HandleSE))
}

// =============================================================================
// Status bar
// =============================================================================

func (b *Board) renderStatus() string {
	accent := lipgloss.NewStyle().Foreground(theme.StatusAccent()).Bold(true)

	left := fmt.Sprintf(" %s  %s %d cols  %s  %d widgets",
		accent.Render(b.boardName),
		b.grid.Breakpoint(),
		b.grid.Columns(),
		b.policy.Compact,
		len(b.widgets),
	)
	if m := b.maxScroll(); m > 0 {
		left += fmt.Sprintf("  line %d/%d", b.grid.Scroll(), m)
	}
	if b.notice != "" {
		left += "  " + accent.Render(b.notice)
	}

	right := b.keys.GetKeysForDisplay("toggle_help") + " help "
	if !b.cfg.Appearance.HideClock {
		right = b.now().Format("15:04:05") + "  " + right
	}

	line := RightString(left, right, b.Width)
	return lipgloss.NewStyle().
		Background(theme.StatusBg()).
		Foreground(theme.StatusFg()).
		Width(b.Width).
		Render(ansi.Truncate(line, b.Width, ""))
}

// RenderStatic draws board once at the given width, as tall as its rows
// need. It backs non-interactive output such as `gridboard layout show`.
func RenderStatic(cfg *config.UserConfig, board store.Board, width int) string {
	b := NewBoard(Options{Config: cfg, BoardName: board.Name, NoSampling: true})
	defer b.Close()

	b.widgets = widget.CloneAll(board.Widgets)
	b.loaded = true
	b.Update(tea.WindowSizeMsg{Width: width, Height: 1000})

	rows := b.grid.Rows() * b.grid.Geometry().RowH
	height := max(rows, paletteTop+len(content.Types())*cardHeight) + 1
	b.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return b.Render()
}
