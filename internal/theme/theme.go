// Package theme provides the colours used to draw the board.
package theme

import (
	"fmt"
	"image/color"

	"charm.land/lipgloss/v2"
	tint "github.com/lrstanley/bubbletint/v2"
)

var enabled bool

// Initialize sets up the theme registry with the specified theme name.
// Call this once at application startup.
// If themeName is empty, theming is disabled and fixed colours are used.
func Initialize(themeName string) error {
	if themeName == "" {
		enabled = false
		return nil
	}

	enabled = true
	tint.NewDefaultRegistry()

	if !tint.SetTintID(themeName) {
		tint.SetTintID("default")
		return fmt.Errorf("unknown theme %q, using default", themeName)
	}
	return nil
}

// IsEnabled returns true if theming is enabled
func IsEnabled() bool {
	return enabled
}

// Current returns the currently active theme, or nil when theming is
// disabled.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

func pick(fallback string, fn func(t *tint.Tint) color.Color) color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color(fallback)
	}
	if c := fn(t); c != nil {
		return c
	}
	return lipgloss.Color(fallback)
}

// Background is the board background. Fades blend toward it.
func Background() color.Color {
	return pick("#101018", func(t *tint.Tint) color.Color { return t.Bg })
}

func Foreground() color.Color {
	return pick("#e5e5e5", func(t *tint.Tint) color.Color { return t.Fg })
}

// Widget frame colours
func WidgetBorder() color.Color {
	return pick("#5c5c7a", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

func WidgetBorderActive() color.Color {
	return pick("#AFFFFF", func(t *tint.Tint) color.Color { return t.BrightCyan })
}

func WidgetTitle() color.Color {
	return pick("#c0c0ff", func(t *tint.Tint) color.Color { return t.BrightBlue })
}

func CloseButton() color.Color {
	return pick("#ff6b6b", func(t *tint.Tint) color.Color { return t.Red })
}

func ResizeHandle() color.Color {
	return pick("#ffd75f", func(t *tint.Tint) color.Color { return t.Yellow })
}

// Placeholder marks the cell a gesture would land in.
func Placeholder() color.Color {
	return pick("#AAFFAA", func(t *tint.Tint) color.Color { return t.BrightGreen })
}

func GridDots() color.Color {
	return pick("#2a2a3a", func(t *tint.Tint) color.Color { return t.Black })
}

// Palette colours
func PaletteTitle() color.Color {
	return pick("#a0a0b0", func(t *tint.Tint) color.Color { return t.White })
}

func PaletteCard() color.Color {
	return pick("#7f7f9f", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

func PaletteCardSelected() color.Color {
	return pick("#ff79c6", func(t *tint.Tint) color.Color { return t.Purple })
}

// Status bar colours
func StatusBg() color.Color {
	return pick("#1e1e2e", func(t *tint.Tint) color.Color { return t.Black })
}

func StatusFg() color.Color {
	return pick("#a0a0b0", func(t *tint.Tint) color.Color { return t.White })
}

func StatusAccent() color.Color {
	return pick("#89b4fa", func(t *tint.Tint) color.Color { return t.Blue })
}

// Log viewer colours
func LogViewerTitle() color.Color {
	return pick("#89b4fa", func(t *tint.Tint) color.Color { return t.BrightBlue })
}

func LogViewerError() color.Color {
	return pick("#ff5555", func(t *tint.Tint) color.Color { return t.BrightRed })
}

func LogViewerWarn() color.Color {
	return pick("#ffb86c", func(t *tint.Tint) color.Color { return t.Yellow })
}

func LogViewerInfo() color.Color {
	return pick("#50fa7b", func(t *tint.Tint) color.Color { return t.Green })
}

func LogViewerDebug() color.Color {
	return pick("#6272a4", func(t *tint.Tint) color.Color { return t.BrightBlack })
}

// Help overlay colours
func HelpKeyBadge() color.Color {
	return pick("#000000", func(t *tint.Tint) color.Color { return t.Bg })
}

func HelpKeyBadgeBg() color.Color {
	return pick("#AFFFFF", func(t *tint.Tint) color.Color { return t.BrightCyan })
}

func HelpBorder() color.Color {
	return pick("#5c5cff", func(t *tint.Tint) color.Color { return t.BrightBlue })
}

func HelpGray() color.Color {
	return lipgloss.Color("8")
}

// CLI table colors
func CLITableHeader() color.Color {
	return lipgloss.Color("12")
}

func CLITableBorder() color.Color {
	return lipgloss.Color("8")
}

func CLITableKey() color.Color {
	return lipgloss.Color("11")
}

func CLITableDim() color.Color {
	return lipgloss.Color("8")
}

// ColorToString converts a color.Color to a hex string
func ColorToString(c color.Color) string {
	if c == nil {
		return "#000000"
	}
	r, g, b, _ := c.RGBA()
	// RGBA returns values in range 0-65535, convert to 0-255
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
	return fmt.Sprintf("#%02x%02x%02x", r8, g8, b8)
}
