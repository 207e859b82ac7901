package app

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/theme"
)

// helpSections returns the keybinding sections that apply to the current
// policy. Gesture sections are hidden when the gesture is disabled.
func (b *Board) helpSections() []config.KeybindingSection {
	var out []config.KeybindingSection
	for _, s := range config.GetKeybindings(b.keys) {
		switch s.Condition {
		case "drag":
			if b.policy.DisableDrag {
				continue
			}
		case "resize":
			if b.policy.DisableResize {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// formatKey renders a key combo as a badge.
func formatKey(key string) string {
	return lipgloss.NewStyle().
		Background(theme.HelpKeyBadgeBg()).
		Foreground(theme.HelpKeyBadge()).
		Render(" " + key + " ")
}

func (b *Board) renderHelp() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.HelpBorder()).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	var rows [][]string
	for _, s := range b.helpSections() {
		rows = append(rows, []string{headerStyle.Render(strings.TrimSuffix(s.Title, ":")), ""})
		for _, kb := range s.Bindings {
			rows = append(rows, []string{formatKey(kb.Key), kb.Description})
		}
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		})

	hint := lipgloss.NewStyle().
		Foreground(theme.HelpGray()).
		Italic(true).
		Render(b.keys.GetKeysForDisplay("toggle_help") + " or " + b.keys.GetKeysForDisplay("cancel") + " to close")

	return lipgloss.NewStyle().
		Border(b.border()).
		BorderForeground(theme.HelpBorder()).
		Padding(1, 2).
		Render(t.Render() + "\n\n" + hint)
}
