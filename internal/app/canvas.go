package app

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/pool"
	"github.com/charmbracelet/x/ansi"
)

const reset = "\x1b[0m"

// canvas composites styled blocks into a fixed-size frame. Later blocks
// cover earlier ones cell by cell; the text underneath a block is cut with
// ansi-aware slicing so escape sequences are never split.
type canvas struct {
	width  int
	height int
	lines  []string
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height, lines: make([]string, height)}
	blank := strings.Repeat(" ", width)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// place draws block with its top-left at (x, y). Parts outside the canvas
// are clipped.
func (c *canvas) place(x, y int, block string) {
	if block == "" {
		return
	}
	for i, line := range strings.Split(block, "\n") {
		row := y + i
		if row < 0 || row >= c.height {
			continue
		}
		w := ansi.StringWidth(line)
		left := x
		if left < 0 {
			line = ansi.Cut(line, -left, w)
			w += left
			left = 0
		}
		if left >= c.width || w <= 0 {
			continue
		}
		if left+w > c.width {
			line = ansi.Truncate(line, c.width-left, "")
			w = c.width - left
		}
		base := c.lines[row]
		c.lines[row] = ansi.Truncate(base, left, "") + reset + line + reset + ansi.Cut(base, left+w, c.width)
	}
}

// center draws block in the middle of the canvas.
func (c *canvas) center(block string) {
	w, h := lipgloss.Size(block)
	c.place((c.width-w)/2, (c.height-h)/2, block)
}

func (c *canvas) String() string {
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	for i, line := range c.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	return sb.String()
}
