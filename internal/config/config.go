// Package config loads the user configuration and holds the runtime knobs
// derived from it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Frame rates handed to the bubbletea program.
const (
	NormalFPS      = 60
	InteractionFPS = 120
)

// MaxLogMessages bounds the in-app log ring.
const MaxLogMessages = 500

// Animation timing shared by the drag-in morph and the drop transition.
const (
	DefaultAnimationDuration = 180 * time.Millisecond
	FastAnimationDuration    = 80 * time.Millisecond
	DefaultTransitionTimeout = 1500 * time.Millisecond
)

// AnimationsEnabled is cleared by --no-animations or [animation] enabled = false.
var AnimationsEnabled = true

// GetAnimationDuration returns the slide duration, or zero when animations
// are disabled.
func GetAnimationDuration() time.Duration {
	if !AnimationsEnabled {
		return 0
	}
	return DefaultAnimationDuration
}

// GetFastAnimationDuration returns the duration used for fades, or zero
// when animations are disabled.
func GetFastAnimationDuration() time.Duration {
	if !AnimationsEnabled {
		return 0
	}
	return FastAnimationDuration
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// UserConfig mirrors config.toml.
type UserConfig struct {
	Grid        GridConfig        `toml:"grid"`
	Animation   AnimationConfig   `toml:"animation"`
	Appearance  AppearanceConfig  `toml:"appearance"`
	Storage     StorageConfig     `toml:"storage"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// GridConfig is the [grid] section.
type GridConfig struct {
	Columns        int      `toml:"columns"`
	NarrowColumns  int      `toml:"narrow_columns"`
	NarrowBelow    int      `toml:"narrow_below"`
	RowHeight      int      `toml:"row_height"`
	AutoRows       int      `toml:"auto_rows"`
	Margin         int      `toml:"margin"`
	Padding        int      `toml:"padding"`
	Compact        string   `toml:"compact"`
	MaxRows        int      `toml:"max_rows"`
	DisableDrag    bool     `toml:"disable_drag"`
	DisableResize  bool     `toml:"disable_resize"`
	ResizeHandles  []string `toml:"resize_handles"`
	DragActivation string   `toml:"drag_activation"`
	HoldDelayMs    int      `toml:"hold_delay_ms"`
	AutoScroll     string   `toml:"auto_scroll"`
	ProtectMs      int      `toml:"protect_ms"`
}

// AnimationConfig is the [animation] section. Durations are milliseconds.
type AnimationConfig struct {
	Enabled     bool `toml:"enabled"`
	SlideMs     int  `toml:"slide_ms"`
	CrossfadeMs int  `toml:"crossfade_ms"`
	MorphMs     int  `toml:"morph_ms"`
	TimeoutMs   int  `toml:"timeout_ms"`
}

// AppearanceConfig is the [appearance] section.
type AppearanceConfig struct {
	Theme        string `toml:"theme"`
	BorderStyle  string `toml:"border_style"`
	PaletteWidth int    `toml:"palette_width"`
	ASCIIOnly    bool   `toml:"ascii_only"`
	HideClock    bool   `toml:"hide_clock"`
}

// StorageConfig is the [storage] section.
type StorageConfig struct {
	Backend       string `toml:"backend"` // file, redis or memory
	Board         string `toml:"board"`
	Dir           string `toml:"dir"` // empty uses the XDG data dir
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// KeybindingsConfig maps actions to keys, grouped the way the help overlay
// shows them.
type KeybindingsConfig struct {
	Layout   map[string][]string `toml:"layout"`
	Gestures map[string][]string `toml:"gestures"`
	System   map[string][]string `toml:"system"`
}

func (k KeybindingsConfig) sections() []map[string][]string {
	return []map[string][]string{k.Layout, k.Gestures, k.System}
}

// ActionDescriptions is the human text for every bindable action.
var ActionDescriptions = map[string]string{
	"undo":          "Undo last layout change",
	"redo":          "Redo layout change",
	"cycle_compact": "Cycle compaction mode",
	"add_widget":    "Add selected palette widget",
	"next_card":     "Select next palette card",
	"prev_card":     "Select previous palette card",
	"scroll_up":     "Scroll the grid up a page",
	"scroll_down":   "Scroll the grid down a page",
	"cancel":        "Cancel drag or resize",
	"toggle_logs":   "Toggle log viewer",
	"toggle_help":   "Toggle help",
	"quit":          "Quit",
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	p := widget.DefaultPolicy()
	return &UserConfig{
		Grid: GridConfig{
			Columns:        p.ColumnsFor(widget.Wide),
			NarrowColumns:  p.ColumnsFor(widget.Narrow),
			NarrowBelow:    p.NarrowBelow,
			RowHeight:      p.RowHeight,
			AutoRows:       p.AutoRows,
			Margin:         p.Margin,
			Padding:        p.Padding,
			Compact:        string(p.Compact),
			ResizeHandles:  []string{string(widget.HandleSE)},
			DragActivation: string(p.DragActivation),
			HoldDelayMs:    int(p.HoldDelay / time.Millisecond),
			AutoScroll:     string(p.AutoScroll),
			ProtectMs:      500,
		},
		Animation: AnimationConfig{
			Enabled:     true,
			SlideMs:     int(DefaultAnimationDuration / time.Millisecond),
			CrossfadeMs: 150,
			MorphMs:     int(FastAnimationDuration / time.Millisecond),
			TimeoutMs:   int(DefaultTransitionTimeout / time.Millisecond),
		},
		Appearance: AppearanceConfig{
			Theme:        "",
			BorderStyle:  "rounded",
			PaletteWidth: 22,
		},
		Storage: StorageConfig{
			Backend:   "file",
			Board:     "default",
			RedisAddr: "localhost:6379",
		},
		Keybindings: KeybindingsConfig{
			Layout: map[string][]string{
				"undo":          {"u", "ctrl+z"},
				"redo":          {"U", "ctrl+y"},
				"cycle_compact": {"c"},
				"add_widget":    {"a", "enter"},
				"next_card":     {"j", "down"},
				"prev_card":     {"k", "up"},
				"scroll_up":     {"pgup"},
				"scroll_down":   {"pgdown"},
			},
			Gestures: map[string][]string{
				"cancel": {"esc"},
			},
			System: map[string][]string{
				"toggle_logs": {"L"},
				"toggle_help": {"?"},
				"quit":        {"q", "ctrl+c"},
			},
		},
	}
}

// Policy converts the [grid] section into a grid policy.
func (c *UserConfig) Policy() widget.GridPolicy {
	g := c.Grid
	p := widget.DefaultPolicy()
	p.Columns = map[widget.Breakpoint]int{
		widget.Wide:   g.Columns,
		widget.Narrow: g.NarrowColumns,
	}
	p.NarrowBelow = g.NarrowBelow
	p.RowHeight = g.RowHeight
	p.AutoRows = g.AutoRows
	p.Margin = g.Margin
	p.Padding = g.Padding
	p.Compact = widget.CompactMode(g.Compact)
	p.MaxRows = g.MaxRows
	p.DisableDrag = g.DisableDrag
	p.DisableResize = g.DisableResize
	p.ResizeHandles = p.ResizeHandles[:0]
	for _, h := range g.ResizeHandles {
		p.ResizeHandles = append(p.ResizeHandles, widget.Handle(strings.ToLower(h)))
	}
	if g.DragActivation != "" {
		p.DragActivation = widget.DragActivation(g.DragActivation)
	}
	if g.HoldDelayMs > 0 {
		p.HoldDelay = time.Duration(g.HoldDelayMs) * time.Millisecond
	}
	if g.AutoScroll != "" {
		p.AutoScroll = widget.AutoScroll(g.AutoScroll)
	}
	return p
}

// ProtectWindow returns how long dropped widgets are shielded from
// corrections.
func (c *UserConfig) ProtectWindow() time.Duration {
	return time.Duration(c.Grid.ProtectMs) * time.Millisecond
}

// Durations are the animation timings after AnimationsEnabled is applied.
// A zero duration means the step is skipped.
type Durations struct {
	Slide     time.Duration
	Crossfade time.Duration
	Morph     time.Duration
	Timeout   time.Duration
}

// Durations returns the configured timings. The timeout is kept even with
// animations off so a stalled transition still completes.
func (a AnimationConfig) Durations() Durations {
	d := Durations{Timeout: ms(a.TimeoutMs, DefaultTransitionTimeout)}
	if !a.Enabled || !AnimationsEnabled {
		return d
	}
	d.Slide = ms(a.SlideMs, GetAnimationDuration())
	d.Crossfade = ms(a.CrossfadeMs, GetFastAnimationDuration())
	d.Morph = ms(a.MorphMs, GetFastAnimationDuration())
	return d
}

func ms(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Millisecond
}

// Validate reports values the grid cannot honour.
func (c *UserConfig) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: [grid] %w", ErrInvalidConfig, err)
	}
	for _, h := range c.Grid.ResizeHandles {
		switch widget.Handle(strings.ToLower(h)) {
		case widget.HandleN, widget.HandleS, widget.HandleE, widget.HandleW,
			widget.HandleNE, widget.HandleNW, widget.HandleSE, widget.HandleSW:
		default:
			return fmt.Errorf("%w: [grid] unknown resize handle %q", ErrInvalidConfig, h)
		}
	}
	switch c.Storage.Backend {
	case "", "file", "redis", "memory":
	default:
		return fmt.Errorf("%w: [storage] unknown backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	n := NewKeyNormalizer()
	for _, section := range c.Keybindings.sections() {
		for action, keys := range section {
			for _, k := range keys {
				if ok, reason := n.ValidateKey(k); !ok {
					return fmt.Errorf("%w: [keybindings] %s: %s", ErrInvalidConfig, action, reason)
				}
			}
		}
	}
	return nil
}

// fillDefaults restores keybinding actions a user file left out.
func (c *UserConfig) fillDefaults() {
	def := DefaultConfig().Keybindings
	fill := func(dst *map[string][]string, src map[string][]string) {
		if *dst == nil {
			*dst = map[string][]string{}
		}
		for action, keys := range src {
			if _, ok := (*dst)[action]; !ok {
				(*dst)[action] = keys
			}
		}
	}
	fill(&c.Keybindings.Layout, def.Layout)
	fill(&c.Keybindings.Gestures, def.Gestures)
	fill(&c.Keybindings.System, def.System)
	if c.Storage.Board == "" {
		c.Storage.Board = "default"
	}
}

// GetConfigPath returns the path of config.toml under the XDG config dir.
func GetConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("gridboard", "config.toml"))
}

// LoadUserConfig reads config.toml, creating it with defaults on first use.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine config path: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Load reads the config at path. Missing keys keep their defaults.
func Load(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	// Keybinding tables replace the defaults section by section.
	cfg.Keybindings = KeybindingsConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders cfg as a commented config file.
func Marshal(cfg *UserConfig, path string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# gridboard configuration\n")
	buf.WriteString("# Keybindings map an action to a list of keys.\n")
	buf.WriteString("# Durations are in milliseconds.\n")
	buf.WriteString("#\n")
	buf.WriteString("# Location: " + path + "\n\n")
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	buf.Write(data)
	return buf.Bytes(), nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *UserConfig) error {
	data, err := Marshal(cfg, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Overrides are command line flags that win over the config file.
type Overrides struct {
	NoAnimations  bool
	ThemeName     string
	ASCIIOnly     bool
	Columns       int
	Compact       string
	DisableDrag   bool
	DisableResize bool
	Backend       string
	Board         string
	RedisAddr     string
}

// ApplyOverrides folds flag values into cfg. Global switches are applied
// even when cfg is nil.
func ApplyOverrides(o Overrides, cfg *UserConfig) {
	if o.NoAnimations {
		AnimationsEnabled = false
	}
	if cfg == nil {
		return
	}
	if o.NoAnimations {
		cfg.Animation.Enabled = false
	}
	if o.ThemeName != "" {
		cfg.Appearance.Theme = o.ThemeName
	}
	if o.ASCIIOnly {
		cfg.Appearance.ASCIIOnly = true
	}
	if o.Columns > 0 {
		cfg.Grid.Columns = o.Columns
	}
	if o.Compact != "" {
		cfg.Grid.Compact = o.Compact
	}
	if o.DisableDrag {
		cfg.Grid.DisableDrag = true
	}
	if o.DisableResize {
		cfg.Grid.DisableResize = true
	}
	if o.Backend != "" {
		cfg.Storage.Backend = o.Backend
	}
	if o.Board != "" {
		cfg.Storage.Board = o.Board
	}
	if o.RedisAddr != "" {
		cfg.Storage.RedisAddr = o.RedisAddr
	}
}
