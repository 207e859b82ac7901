package config

// Keybinding represents a single keybinding entry
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title     string
	Condition string // Empty for always shown, "drag" or "resize" when that gesture is enabled
	Bindings  []Keybinding
}

// GetKeybindings returns all keybinding sections for the help overlay.
// If registry is nil, it falls back to the built-in defaults.
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	if registry == nil {
		registry = NewKeybindRegistry(DefaultConfig())
	}

	sections := []KeybindingSection{}

	layout := KeybindingSection{Title: "LAYOUT"}
	addBinding(&layout, registry, "undo", "Undo")
	addBinding(&layout, registry, "redo", "Redo")
	addBinding(&layout, registry, "cycle_compact", "Cycle compaction")
	if len(layout.Bindings) > 0 {
		sections = append(sections, layout)
	}

	palette := KeybindingSection{Title: "PALETTE"}
	addBinding(&palette, registry, "next_card", "Next card")
	addBinding(&palette, registry, "prev_card", "Previous card")
	addBinding(&palette, registry, "add_widget", "Add at first free spot")
	if len(palette.Bindings) > 0 {
		sections = append(sections, palette)
	}

	view := KeybindingSection{Title: "VIEW"}
	addBinding(&view, registry, "scroll_up", "Page up")
	addBinding(&view, registry, "scroll_down", "Page down")
	if len(view.Bindings) > 0 {
		sections = append(sections, view)
	}

	system := KeybindingSection{Title: "SYSTEM"}
	addBinding(&system, registry, "cancel", "Cancel gesture")
	addBinding(&system, registry, "toggle_logs", "Toggle log viewer")
	addBinding(&system, registry, "toggle_help", "Toggle help")
	addBinding(&system, registry, "quit", "Quit")
	if len(system.Bindings) > 0 {
		sections = append(sections, system)
	}

	return append(sections, getStaticHelpSections()...)
}

// addBinding adds a keybinding to a section if the action has keys configured
func addBinding(section *KeybindingSection, registry *KeybindRegistry, action, description string) {
	keys := registry.GetKeysForDisplay(action)
	if keys != "" {
		section.Bindings = append(section.Bindings, Keybinding{
			Key:         keys,
			Description: description,
		})
	}
}

// getStaticHelpSections returns the mouse gestures, which are not configurable.
func getStaticHelpSections() []KeybindingSection {
	return []KeybindingSection{
		{
			Title: "MOUSE:",
			Bindings: []Keybinding{
				{"Drag palette card", "Drop a new widget"},
				{"Click ×", "Remove widget"},
				{"Wheel", "Scroll the grid"},
			},
		},
		{
			Title:     "MOVING:",
			Condition: "drag",
			Bindings: []Keybinding{
				{"Drag title bar", "Move widget"},
			},
		},
		{
			Title:     "RESIZING:",
			Condition: "resize",
			Bindings: []Keybinding{
				{"Drag ◢ corner", "Resize widget"},
			},
		},
	}
}
