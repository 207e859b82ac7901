// Package content provides the built-in widget types: their catalog entry
// and the text they render inside a widget frame.
package content

import (
	"maps"
	"strings"

	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// Type is a catalog entry.
type Type struct {
	Name        string
	Title       string
	Icon        string
	Description string
	Constraints widget.Constraints
}

var catalog = []Type{
	{
		Name:        "clock",
		Title:       "Clock",
		Icon:        "◷",
		Description: "Local time and date",
		Constraints: widget.Constraints{MinW: 2, MaxW: 6, MinH: 1, MaxH: 2, DefaultW: 3, DefaultH: 1},
	},
	{
		Name:        "cpu",
		Title:       "CPU",
		Icon:        "▤",
		Description: "CPU usage with history",
		Constraints: widget.Constraints{MinW: 3, MinH: 2, DefaultW: 4, DefaultH: 2},
	},
	{
		Name:        "memory",
		Title:       "Memory",
		Icon:        "▥",
		Description: "Memory in use",
		Constraints: widget.Constraints{MinW: 3, MinH: 1, MaxH: 2, DefaultW: 4, DefaultH: 1},
	},
	{
		Name:        "host",
		Title:       "Host",
		Icon:        "⌂",
		Description: "Hostname, platform and uptime",
		Constraints: widget.Constraints{MinW: 3, MinH: 2, MaxH: 3, DefaultW: 4, DefaultH: 2},
	},
	{
		Name:        "note",
		Title:       "Note",
		Icon:        "✎",
		Description: "Free text kept in the widget config",
		Constraints: widget.Constraints{MinW: 2, MinH: 1, DefaultW: 3, DefaultH: 2},
	},
}

// Types returns the catalog in palette order.
func Types() []Type {
	out := make([]Type, len(catalog))
	copy(out, catalog)
	return out
}

// Get returns the catalog entry for name.
func Get(name string) (Type, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

// Lookup is the constraint lookup for the built-in types.
func Lookup(widgetType string) (widget.Constraints, bool) {
	t, ok := Get(widgetType)
	if !ok {
		return widget.Constraints{}, false
	}
	return t.Constraints, true
}

var _ widget.ConstraintLookup = Lookup

var defaults = map[string]map[string]any{
	"clock": {"format": "24h"},
	"note":  {"text": "New note"},
}

// DefaultConfig returns the config a freshly dropped widget starts with.
func DefaultConfig(widgetType string) map[string]any {
	d, ok := defaults[widgetType]
	if !ok {
		return nil
	}
	return maps.Clone(d)
}

// Title returns the frame title for w.
func Title(w widget.Widget) string {
	if s, ok := w.Config["title"].(string); ok && s != "" {
		return s
	}
	if t, ok := Get(w.Type); ok {
		return t.Icon + " " + t.Title
	}
	return w.Type
}
