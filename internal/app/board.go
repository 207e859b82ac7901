// Package app is the interactive board: a bubbletea model that owns the
// widget list, hands it to the grid adapter on every update and draws the
// result.
package app

import (
	"context"
	"io"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/adapter"
	"github.com/Gaurav-Gosain/gridboard/internal/bridge"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/content"
	"github.com/Gaurav-Gosain/gridboard/internal/dragin"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/scheduler"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/theme"
	"github.com/Gaurav-Gosain/gridboard/internal/transition"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// HistoryLimit bounds the undo stack.
const HistoryLimit = 50

// Options configure a Board.
type Options struct {
	Config    *config.UserConfig
	Keys      *config.KeybindRegistry
	Store     store.Store
	BoardName string
	Logger    *log.Logger
	Now       func() time.Time
	// ConfigPath enables live reload of the config file when set.
	ConfigPath string
	// NoSampling turns off system stat sampling.
	NoSampling bool
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureMove
	gestureResize
	gestureDragIn
)

// press is a pointer press that has not turned into a gesture yet.
type press struct {
	kind   gestureKind
	id     string
	handle widget.Handle
	at     time.Time
	x, y   int
}

// Board is the bubbletea model for one board.
type Board struct {
	cfg    *config.UserConfig
	keys   *config.KeybindRegistry
	policy widget.GridPolicy
	logger *log.Logger
	now    func() time.Time

	store      store.Store
	boardName  string
	origin     string
	configPath string
	sampling   bool

	ctx    context.Context
	cancel context.CancelFunc

	// widgets is the list this model owns. The grid only ever proposes
	// replacements for it.
	widgets []widget.Widget

	sched    *scheduler.Scheduler
	grid     *adapter.Adapter
	bridge   *bridge.Bridge
	dragin   *dragin.Controller
	drops    *transition.Coordinator
	renderer *content.Renderer

	Width  int
	Height int

	selected int

	history  [][]widget.Widget
	future   [][]widget.Widget
	snapshot []widget.Widget

	gesture     gestureKind
	pending     *press
	px, py      int
	grabX       int
	grabY       int
	resizeStart widget.Rect
	resizeFrom  widget.Handle

	lastAutoScroll time.Time

	ShowHelp        bool
	ShowLogs        bool
	LogMessages     []LogMessage
	LogScrollOffset int
	notice          string
	noticeUntil     time.Time

	dirty      bool
	saveWanted bool
	saving     bool
	saveQueued bool
	loaded     bool
	loadErr    error

	cfgCh chan configMsg
}

// NewBoard wires the grid adapter, rendering bridge, drag-in controller and
// drop coordinator around an empty widget list. The board's widgets are
// loaded from the store by Init.
func NewBoard(opts Options) *Board {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	keys := opts.Keys
	if keys == nil {
		keys = config.NewKeybindRegistry(cfg)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	name := opts.BoardName
	if name == "" {
		name = cfg.Storage.Board
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Board{
		cfg:        cfg,
		keys:       keys,
		policy:     cfg.Policy(),
		logger:     logger.WithPrefix("board"),
		now:        now,
		store:      opts.Store,
		boardName:  name,
		origin:     "tui-" + uuid.NewString(),
		configPath: opts.ConfigPath,
		sampling:   !opts.NoSampling,
		ctx:        ctx,
		cancel:     cancel,
		sched:      scheduler.New(now),
		renderer:   content.NewRenderer(now),
		cfgCh:      make(chan configMsg, 1),
	}

	d := cfg.Animation.Durations()
	b.grid = adapter.New(adapter.Options{
		Policy:      b.policy,
		Constraints: content.Lookup,
		Protect:     cfg.ProtectWindow(),
		Now:         now,
		Logger:      logger,
	})
	b.grid.SetCallbacks(widget.Callbacks{
		OnLayoutCommit: b.onCommit,
		OnDragStart:    b.takeSnapshot,
		OnResizeStart:  b.takeSnapshot,
	})
	b.bridge = bridge.New(bridge.Options{
		Source:    b.grid,
		Scheduler: b.sched,
		Render:    b.renderer.Render,
		Logger:    logger,
	})
	b.drops = transition.New(transition.Options{
		Grid:        b.grid,
		Painter:     b.bridge,
		Scheduler:   b.sched,
		Constraints: content.Lookup,
		OnDrop:      b.onDrop,
		Slide:       animation(d.Slide),
		Crossfade:   animation(d.Crossfade),
		Timeout:     d.Timeout,
		Logger:      logger,
	})
	b.dragin = dragin.New(dragin.Options{
		Grid:      b.grid,
		Previews:  b.bridge,
		Dropper:   b.drops,
		Scheduler: b.sched,
		FadeOut:   animation(d.Morph),
		Resize:    animation(d.Morph),
		FadeIn:    animation(d.Morph),
		Logger:    logger,
	})

	if err := theme.Initialize(cfg.Appearance.Theme); err != nil {
		b.LogWarn("theme: %v", err)
	}
	return b
}

// animation maps a config duration, where zero means off, to the option
// convention of the grid packages, where zero means default and negative
// means off.
func animation(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// Close stops background work and detaches every grid component.
func (b *Board) Close() {
	b.cancel()
	b.dragin.Cancel()
	b.drops.Close()
	b.bridge.Close()
	b.grid.Close()
}

// Widgets returns a copy of the board's widget list.
func (b *Board) Widgets() []widget.Widget { return widget.CloneAll(b.widgets) }

// Name returns the board name.
func (b *Board) Name() string { return b.boardName }

// Interacting reports whether a pointer gesture is in progress. The program
// filter lets motion events through only then.
func (b *Board) Interacting() bool {
	return b.gesture != gestureNone || b.pending != nil || b.dragin.Dragging()
}

// gridViewport is the screen area the grid is laid out in: right of the
// palette, above the status bar.
func (b *Board) gridViewport() ui.Bounds {
	x := b.paletteWidth() + 1
	return ui.Bounds{X: x, Y: 0, Width: max(b.Width-x, 0), Height: max(b.Height-1, 0)}
}

func (b *Board) paletteWidth() int {
	if w := b.cfg.Appearance.PaletteWidth; w > 0 {
		return w
	}
	return config.DefaultConfig().Appearance.PaletteWidth
}

// =============================================================================
// Grid callbacks
// =============================================================================

func (b *Board) onCommit(ev widget.LayoutCommitEvent) {
	if b.snapshot != nil {
		b.pushHistory(b.snapshot)
		b.snapshot = nil
	}
	b.widgets = widget.CloneAll(ev.Widgets)
	b.dirty = true
	b.saveWanted = true
	b.logger.Debug("layout committed", "reason", ev.Reason, "id", ev.AffectedID, "widgets", len(ev.Widgets))
	if ev.Reason != widget.ReasonSettle {
		b.LogInfo("%s %s", ev.Reason, shortID(ev.AffectedID))
	}
}

// onDrop adds the dropped widget to the list. The grid keeps its cell
// reserved until the next sync delivers it.
func (b *Board) onDrop(ev widget.ExternalDropEvent) {
	r := ev.Rect()
	w := widget.Widget{
		ID:     ev.NewID,
		Type:   ev.WidgetType,
		Layout: r,
		Config: content.DefaultConfig(ev.WidgetType),
	}
	if b.grid.Breakpoint() == widget.Narrow {
		w.MobileLayout = &r
		wide := layout.NewConfig(b.policy, widget.Wide, content.Lookup)
		w.Layout = layout.WideSlot(b.widgets, layout.Size{W: r.W, H: r.H}, wide)
	}
	b.widgets = append(b.widgets, w)
	b.dirty = true
}

func (b *Board) takeSnapshot(string) {
	if b.snapshot == nil {
		b.snapshot = widget.CloneAll(b.widgets)
	}
}

// flush syncs the grid with the widget list until it stops proposing
// changes. Each pass may adopt one commit.
func (b *Board) flush() {
	if b.Width <= 0 {
		return
	}
	for range 3 {
		if !b.dirty {
			return
		}
		b.dirty = false
		b.grid.Sync(b.widgets, b.policy, b.gridViewport())
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
