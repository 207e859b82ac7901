package app

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/content"
	"github.com/Gaurav-Gosain/gridboard/internal/dragin"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/theme"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

const noticeDuration = 3 * time.Second

// TickerMsg drives the scheduler: every tick is one painted frame.
type TickerMsg time.Time

// boardMsg carries the initial load.
type boardMsg struct {
	board    store.Board
	updates  <-chan store.Board
	err      error
	watchErr error
}

// boardUpdateMsg is a save seen by the store watcher.
type boardUpdateMsg struct {
	board   store.Board
	updates <-chan store.Board
}

type savedMsg struct{ err error }

type configMsg struct {
	cfg *config.UserConfig
	err error
}

// TickCmd ticks at NormalFPS.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second/config.NormalFPS, func(t time.Time) tea.Msg {
		return TickerMsg(t)
	})
}

// FastTickCmd ticks at InteractionFPS while a gesture or animation runs.
func FastTickCmd() tea.Cmd {
	return tea.Tick(time.Second/config.InteractionFPS, func(t time.Time) tea.Msg {
		return TickerMsg(t)
	})
}

// Init loads the board and starts the frame ticker, stat sampling and the
// config watcher.
func (b *Board) Init() tea.Cmd {
	cmds := []tea.Cmd{TickCmd(), b.loadCmd()}
	if b.sampling {
		cmds = append(cmds, content.SampleCmd(b.ctx, 0))
	}
	if b.configPath != "" {
		go b.watchConfig()
		cmds = append(cmds, b.waitConfig())
	}
	return tea.Batch(cmds...)
}

func (b *Board) loadCmd() tea.Cmd {
	st, name, ctx := b.store, b.boardName, b.ctx
	return func() tea.Msg {
		if st == nil {
			return boardMsg{board: store.Board{Name: name}}
		}
		board, err := store.LoadOrEmpty(ctx, st, name)
		if err != nil {
			return boardMsg{err: err}
		}
		updates, err := st.Watch(ctx, name)
		return boardMsg{board: board, updates: updates, watchErr: err}
	}
}

func waitForBoard(updates <-chan store.Board) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		board, ok := <-updates
		if !ok {
			return nil
		}
		return boardUpdateMsg{board: board, updates: updates}
	}
}

func (b *Board) watchConfig() {
	err := config.Watch(b.ctx, b.configPath, func(cfg *config.UserConfig, err error) {
		select {
		case b.cfgCh <- configMsg{cfg: cfg, err: err}:
		case <-b.ctx.Done():
		}
	})
	if err != nil {
		select {
		case b.cfgCh <- configMsg{err: err}:
		case <-b.ctx.Done():
		}
	}
}

func (b *Board) waitConfig() tea.Cmd {
	ch, done := b.cfgCh, b.ctx.Done()
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

// queueSave writes the current list to the store. Saves never overlap; a
// save requested while one is running is issued when it finishes.
func (b *Board) queueSave() tea.Cmd {
	if b.store == nil || !b.loaded || b.loadErr != nil {
		return nil
	}
	if b.saving {
		b.saveQueued = true
		return nil
	}
	b.saving = true
	board := store.Board{Name: b.boardName, Origin: b.origin, Widgets: widget.CloneAll(b.widgets)}
	st, ctx := b.store, b.ctx
	return func() tea.Msg {
		return savedMsg{err: st.Save(ctx, board)}
	}
}

func (b *Board) applyConfig(cfg *config.UserConfig) {
	b.cfg = cfg
	b.policy = cfg.Policy()
	b.keys = config.NewKeybindRegistry(cfg)
	if err := theme.Initialize(cfg.Appearance.Theme); err != nil {
		b.LogWarn("theme: %v", err)
	}
	b.dirty = true
	b.LogInfo("config reloaded")
}

// finish runs after every message: it syncs the grid with the list, drops
// a snapshot no gesture used and schedules a save if anything committed.
func (b *Board) finish(cmds ...tea.Cmd) tea.Cmd {
	b.flush()
	b.clampScroll()
	if !b.Interacting() {
		b.snapshot = nil
	}
	if b.saveWanted {
		b.saveWanted = false
		cmds = append(cmds, b.queueSave())
	}
	return tea.Batch(cmds...)
}

// Update handles all incoming messages.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickerMsg:
		b.sched.Painted()
		b.sched.Tick(b.now())
		b.autoScroll()
		if b.notice != "" && b.now().After(b.noticeUntil) {
			b.notice = ""
		}
		next := TickCmd()
		if b.Interacting() || b.drops.Active() > 0 || b.dragin.State() == dragin.Morphing {
			next = FastTickCmd()
		}
		return b, b.finish(next)

	case tea.WindowSizeMsg:
		b.Width, b.Height = msg.Width, msg.Height
		b.dirty = true
		return b, b.finish()

	case tea.KeyPressMsg:
		return b, b.finish(b.handleKey(msg))

	case tea.MouseClickMsg:
		b.handleClick(msg.Mouse())
		return b, b.finish()

	case tea.MouseMotionMsg:
		b.handleMotion(msg.Mouse())
		return b, b.finish()

	case tea.MouseReleaseMsg:
		b.handleRelease(msg.Mouse())
		return b, b.finish()

	case tea.MouseWheelMsg:
		b.handleWheel(msg.Mouse())
		return b, b.finish()

	case boardMsg:
		b.loaded = true
		if msg.err != nil {
			b.loadErr = msg.err
			b.LogError("load %s: %v; changes will not be saved", b.boardName, msg.err)
			return b, b.finish()
		}
		if msg.watchErr != nil {
			b.LogWarn("watch %s: %v", b.boardName, msg.watchErr)
		}
		b.widgets = widget.CloneAll(msg.board.Widgets)
		b.history, b.future = nil, nil
		b.dirty = true
		b.LogInfo("loaded board %s with %d widgets", b.boardName, len(b.widgets))
		return b, b.finish(waitForBoard(msg.updates))

	case boardUpdateMsg:
		if msg.board.Origin != b.origin {
			b.widgets = widget.CloneAll(msg.board.Widgets)
			b.dirty = true
			from := msg.board.Origin
			if from == "" {
				from = "an external edit"
			}
			b.LogInfo("board updated by %s", from)
		}
		return b, b.finish(waitForBoard(msg.updates))

	case savedMsg:
		b.saving = false
		if msg.err != nil {
			b.LogError("save %s: %v", b.boardName, msg.err)
		}
		var next tea.Cmd
		if b.saveQueued {
			b.saveQueued = false
			next = b.queueSave()
		}
		return b, b.finish(next)

	case configMsg:
		if msg.err != nil {
			b.LogWarn("config: %v", msg.err)
		} else if msg.cfg != nil {
			b.applyConfig(msg.cfg)
		}
		return b, b.finish(b.waitConfig())

	case content.StatsMsg:
		if msg.Err != nil {
			b.logger.Debug("partial stats sample", "err", msg.Err)
		}
		b.renderer.Update(msg.Stats)
		return b, b.finish(content.SampleCmd(b.ctx, content.SampleInterval))
	}

	return b, nil
}

// FilterMouseMotion drops pointer motion while no gesture is in progress,
// so an idle board is not redrawn on every mouse move.
func FilterMouseMotion(m tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseMotionMsg); !ok {
		return msg
	}
	if b, ok := m.(*Board); ok && !b.Interacting() {
		return nil
	}
	return msg
}
