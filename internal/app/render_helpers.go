package app

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/pool"
	"github.com/Gaurav-Gosain/gridboard/internal/theme"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/charmbracelet/x/ansi"
)

var asciiBorder = lipgloss.Border{
	Top:         "-",
	Bottom:      "-",
	Left:        "|",
	Right:       "|",
	TopLeft:     "+",
	TopRight:    "+",
	BottomLeft:  "+",
	BottomRight: "+",
}

func (b *Board) border() lipgloss.Border {
	if b.cfg.Appearance.ASCIIOnly {
		return asciiBorder
	}
	switch b.cfg.Appearance.BorderStyle {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	}
	return lipgloss.RoundedBorder()
}

func (b *Board) closeMark() string {
	if b.cfg.Appearance.ASCIIOnly {
		return "x"
	}
	return "×"
}

func (b *Board) handleMark() string {
	if b.cfg.Appearance.ASCIIOnly {
		return "/"
	}
	return "◢"
}

// frame describes one bordered box on the grid.
type frame struct {
	Title   string
	Bounds  ui.Bounds
	Body    string
	Padding int
	Active  bool
	Close   bool
	Handle  bool
	Dashed  bool
	Opacity float64
}

// drawFrame renders f as a block of exactly Bounds.Width x Bounds.Height
// cells. Colours are blended toward the background by Opacity.
func (b *Board) drawFrame(f frame) string {
	w, h := f.Bounds.Width, f.Bounds.Height
	if w < 2 || h < 1 {
		return ""
	}
	bs := b.border()
	if f.Dashed && !b.cfg.Appearance.ASCIIOnly {
		bs.Top, bs.Bottom, bs.Left, bs.Right = "╌", "╌", "╎", "╎"
	}
	bg := theme.Background()
	fade := func(c color.Color) color.Color { return ui.Blend(c, bg, f.Opacity) }

	edgeColor := theme.WidgetBorder()
	switch {
	case f.Dashed:
		edgeColor = theme.Placeholder()
	case f.Active:
		edgeColor = theme.WidgetBorderActive()
	}

	style := pool.GetStyle()
	defer pool.PutStyle(style)
	edge := style.Foreground(fade(edgeColor))
	text := style.Foreground(fade(theme.Foreground()))

	inner := w - 2
	lines := pool.GetLineSlice()
	defer pool.PutLineSlice(lines)

	closeW := 0
	if f.Close && inner >= 3 {
		closeW = 1
	}
	title := ""
	if f.Title != "" && inner-closeW >= 3 {
		title = ansi.Truncate(" "+f.Title+" ", inner-closeW, "…")
	}
	top := edge.Render(bs.TopLeft) +
		style.Foreground(fade(theme.WidgetTitle())).Bold(f.Active).Render(title) +
		edge.Render(strings.Repeat(bs.Top, inner-closeW-ansi.StringWidth(title)))
	if closeW > 0 {
		top += style.Foreground(fade(theme.CloseButton())).Render(b.closeMark())
	}
	*lines = append(*lines, top+edge.Render(bs.TopRight))
	if h == 1 {
		return (*lines)[0]
	}

	pad := f.Padding
	body := strings.Split(f.Body, "\n")
	for i := range h - 2 {
		var l string
		if j := i - pad; j >= 0 && j < len(body) && i < h-2-pad && inner > 2*pad {
			l = strings.Repeat(" ", pad) + ansi.Truncate(body[j], inner-2*pad, "")
		}
		l += strings.Repeat(" ", max(inner-ansi.StringWidth(l), 0))
		*lines = append(*lines, edge.Render(bs.Left)+text.Render(l)+edge.Render(bs.Right))
	}

	corner := edge.Render(bs.BottomRight)
	if f.Handle {
		corner = style.Foreground(fade(theme.ResizeHandle())).Render(b.handleMark())
	}
	*lines = append(*lines, edge.Render(bs.BottomLeft)+edge.Render(strings.Repeat(bs.Bottom, inner))+corner)
	return strings.Join(*lines, "\n")
}

// RightString right-aligns str in a status line of width cells.
func RightString(left, right string, width int) string {
	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return ansi.Truncate(left+" "+right, width, "…")
	}
	return left + strings.Repeat(" ", gap) + right
}
