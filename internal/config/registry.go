package config

import (
	"maps"
	"slices"
	"strings"
)

// KeybindRegistry resolves keys to actions and back.
type KeybindRegistry struct {
	keys    map[string][]string // action -> keys as configured
	actions map[string]string   // normalized key -> action
	norm    *KeyNormalizer
}

// NewKeybindRegistry indexes every binding in cfg. When two actions claim
// the same key the first in section order wins.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		keys:    make(map[string][]string),
		actions: make(map[string]string),
		norm:    NewKeyNormalizer(),
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, section := range cfg.Keybindings.sections() {
		for _, action := range slices.Sorted(maps.Keys(section)) {
			keys := section[action]
			r.keys[action] = append(r.keys[action], keys...)
			for _, k := range keys {
				for _, n := range r.norm.NormalizeKey(k) {
					if _, taken := r.actions[n]; !taken {
						r.actions[n] = action
					}
				}
			}
		}
	}
	return r
}

// GetKeys returns the keys bound to action.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return r.keys[action]
}

// GetAction returns the action bound to key, or "".
func (r *KeybindRegistry) GetAction(key string) string {
	if a, ok := r.actions[key]; ok {
		return a
	}
	for _, n := range r.norm.NormalizeKey(key) {
		if a, ok := r.actions[n]; ok {
			return a
		}
	}
	return ""
}

// GetKeysForDisplay formats the keys of action for the help overlay.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	keys := r.keys[action]
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, displayKey(k))
	}
	return strings.Join(out, ", ")
}

// Actions lists every bound action in sorted order.
func (r *KeybindRegistry) Actions() []string {
	return slices.Sorted(maps.Keys(r.keys))
}

func displayKey(k string) string {
	parts := strings.Split(k, "+")
	for i, p := range parts {
		switch p {
		case "ctrl", "alt", "shift", "super":
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		case "esc":
			parts[i] = "Esc"
		case "enter":
			parts[i] = "Enter"
		case "up":
			parts[i] = "↑"
		case "down":
			parts[i] = "↓"
		default:
			if i < len(parts)-1 || len(p) > 1 {
				continue
			}
			if i > 0 {
				parts[i] = strings.ToUpper(p)
			}
		}
	}
	return strings.Join(parts, "+")
}

var modifiers = []string{"ctrl", "alt", "shift", "super", "hyper", "meta"}

var aliases = map[string][]string{
	"return": {"enter"},
	"enter":  {"return"},
	"escape": {"esc"},
	"esc":    {"escape"},
	" ":      {"space"},
	"space":  {" "},
}

// KeyNormalizer canonicalizes key strings from config files so they match
// what bubbletea reports.
type KeyNormalizer struct{}

// NewKeyNormalizer returns a normalizer.
func NewKeyNormalizer() *KeyNormalizer { return &KeyNormalizer{} }

// NormalizeKey returns the canonical form of key followed by its aliases.
// Modifier names are lowercased; a single character key keeps its case so
// "U" and "u" stay distinct, unless a modifier is present.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	parts := strings.Split(key, "+")
	last := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	for i, m := range mods {
		mods[i] = strings.ToLower(m)
	}
	if len(mods) > 0 || len(last) > 1 {
		last = strings.ToLower(last)
	}
	join := func(k string) string {
		return strings.Join(append(slices.Clone(mods), k), "+")
	}
	out := []string{join(last)}
	for _, a := range aliases[last] {
		out = append(out, join(a))
	}
	return out
}

// ValidateKey reports whether key can be bound, with a reason when it
// cannot.
func (n *KeyNormalizer) ValidateKey(key string) (bool, string) {
	if strings.TrimSpace(key) == "" {
		return false, "empty key"
	}
	if key == "+" {
		return true, ""
	}
	parts := strings.Split(key, "+")
	if parts[len(parts)-1] == "" {
		return false, "missing key after modifier in " + key
	}
	for _, m := range parts[:len(parts)-1] {
		if !slices.Contains(modifiers, strings.ToLower(m)) {
			return false, "unknown modifier " + m + " in " + key
		}
	}
	return true, ""
}
