package adapter

import (
	"context"
	"slices"

	"github.com/Gaurav-Gosain/gridboard/internal/engine"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/telemetry"
	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// Sync reconciles the engine with widgets. viewport is the screen area the
// grid is drawn into; its width picks the breakpoint.
//
// The pass runs in one engine batch: stale nodes are removed first, then new
// nodes added, then nodes whose rectangle differs from the list are
// corrected, except ids inside their protection window. A breakpoint change
// re-issues every rectangle for the new column count instead.
//
// If the engine ends up arranged differently from widgets, a commit is
// proposed so the caller can adopt the engine's arrangement.
func (a *Adapter) Sync(widgets []widget.Widget, policy widget.GridPolicy, viewport ui.Bounds) {
	start := a.now()
	if err := policy.Validate(); err != nil {
		a.logger.Warn("invalid grid policy, keeping previous", "err", err)
		policy = a.policy
	}
	a.policy = policy
	a.viewport = viewport

	bp := policy.BreakpointFor(viewport.Width)
	cols := policy.ColumnsFor(bp)
	reissue := a.synced && (bp != a.bp || cols != a.cols)
	if reissue {
		a.logger.Debug("breakpoint changed", "from", a.bp, "to", bp, "columns", cols)
		clear(a.lastValid)
	}
	a.bp, a.cols = bp, cols
	a.model = dedupe(widgets, a.logger.Warn)
	a.expireProtection()

	cfg := a.layoutConfig()
	want := layout.Project(a.model, cfg)

	// Permission toggles are not part of the diff.
	a.eng.SetDraggable(!policy.DisableDrag)
	a.eng.SetResizable(!policy.DisableResize)
	a.eng.SetGeometry(engine.FitGeometry(viewport, cols, policy).Scrolled(a.scroll))

	stats := telemetry.ReconcileStats{}
	_, busy := a.eng.Active()
	var arrived []string

	a.syncing = true
	a.eng.Batch(func() {
		a.eng.SetColumns(cols)
		a.eng.SetCompact(policy.Compact)
		a.eng.SetMaxRows(policy.MaxRows)

		have := a.eng.IDs()
		wantIDs := make(map[string]bool, len(want))
		for _, n := range want {
			wantIDs[n.ID] = true
		}

		for _, id := range have {
			if !wantIDs[id] {
				if err := a.eng.RemoveNode(id); err != nil {
					a.logger.Error("remove node", "id", id, "err", err)
				}
				stats.Removed++
			}
		}

		for _, n := range want {
			if slices.Contains(have, n.ID) {
				continue
			}
			spec := engine.NodeSpec{ID: n.ID, Rect: n.Rect(), Constraints: n.Constraints()}
			if err := a.eng.AddNode(spec); err != nil {
				a.logger.Error("add node", "id", n.ID, "err", err)
				continue
			}
			stats.Added++
			if _, ok := a.drops[n.ID]; ok {
				arrived = append(arrived, n.ID)
			}
		}

		for _, n := range want {
			if !slices.Contains(have, n.ID) {
				continue
			}
			if !reissue {
				if busy {
					continue
				}
				if a.Protected(n.ID) {
					stats.Protected++
					continue
				}
			}
			if r, ok := a.eng.Rect(n.ID); ok && r == n.Rect() && !reissue {
				continue
			}
			if err := a.eng.UpdateNode(n.ID, n.Rect()); err != nil {
				a.logger.Error("update node", "id", n.ID, "err", err)
				continue
			}
			stats.Corrected++
		}
	})
	a.syncing = false
	a.synced = true

	if got := a.eng.IDs(); !sameSet(got, widget.IDs(a.model)) {
		a.logger.Error("engine out of step with widget list", "engine", got, "widgets", widget.IDs(a.model))
	}

	if _, busy := a.eng.Active(); !busy {
		a.settle(arrived)
	}

	stats.Duration = a.now().Sub(start)
	telemetry.Grid().OnReconcile(context.Background(), stats)
	a.notifyReconciled()
}

// settle validates the engine's arrangement after a pass and proposes it
// when it differs from the synced list.
func (a *Adapter) settle(arrived []string) {
	for _, id := range arrived {
		delete(a.drops, id)
	}

	nodes := a.eng.Nodes()
	if err := layout.Validate(nodes, a.layoutConfig()); err != nil {
		a.reject("sync", err)
		return
	}
	a.remember(nodes)

	proposal := a.proposal(nodes)
	switch {
	case len(arrived) > 0:
		a.commit(widget.ReasonAdd, arrived[0], proposal)
	case a.differs(proposal, a.Protected):
		a.commit(widget.ReasonSettle, "", proposal)
	default:
		a.proposed = nil
	}
}

// proposal applies engine rectangles to the synced list, keeping its order.
func (a *Adapter) proposal(nodes []layout.Node) []widget.Widget {
	out := widget.CloneAll(a.model)
	for i, w := range out {
		if j := layout.IndexOf(nodes, w.ID); j >= 0 {
			out[i] = w.WithLayout(a.bp, nodes[j].Rect())
		}
	}
	return out
}

// differs reports whether any widget's rectangle for the active breakpoint
// differs from the synced list. Widgets for which skip returns true are not
// compared.
func (a *Adapter) differs(ws []widget.Widget, skip func(id string) bool) bool {
	for _, w := range ws {
		i := widget.Index(a.model, w.ID)
		if i < 0 {
			return true
		}
		if skip != nil && skip(w.ID) {
			continue
		}
		if a.model[i].LayoutFor(a.bp, a.cols) != w.LayoutFor(a.bp, a.cols) {
			return true
		}
	}
	return false
}

func (a *Adapter) remember(nodes []layout.Node) {
	clear(a.lastValid)
	for _, n := range nodes {
		a.lastValid[n.ID] = n.Rect()
	}
}

// reject logs an arrangement that broke an invariant and pushes the last
// valid arrangement back into the engine. No commit is proposed. Nodes with
// no valid position stay in the engine where the arrangement put them.
func (a *Adapter) reject(op string, err error) {
	a.logger.Warn("arrangement rejected, restoring last valid layout", "op", op, "err", err)
	telemetry.Grid().OnRejected(context.Background(), op, err)

	var unrestored []string
	a.syncing = true
	a.eng.Batch(func() {
		for _, id := range a.eng.IDs() {
			r, ok := a.lastValid[id]
			if !ok {
				unrestored = append(unrestored, id)
				continue
			}
			if cur, _ := a.eng.Rect(id); cur != r {
				_ = a.eng.UpdateNode(id, r)
			}
		}
	})
	a.syncing = false

	if over := a.Overflow(); len(over) > 0 {
		a.logger.Warn("widgets left past the row limit", "ids", over, "max_rows", a.policy.MaxRows)
	}
	if len(unrestored) > 0 {
		a.logger.Debug("no valid position to restore", "ids", unrestored)
	}
}

// Overflow returns the engine nodes that reach past the policy's row limit.
func (a *Adapter) Overflow() []string {
	if a.policy.MaxRows <= 0 {
		return nil
	}
	var out []string
	for _, n := range a.eng.Nodes() {
		if n.Rect().Bottom() > a.policy.MaxRows {
			out = append(out, n.ID)
		}
	}
	return out
}

func (a *Adapter) commit(reason widget.CommitReason, affected string, ws []widget.Widget) {
	if reason == widget.ReasonSettle && a.proposed != nil && sameLayouts(a.proposed, ws, a.bp, a.cols) {
		// Already proposed; the caller chose not to adopt it.
		return
	}
	a.proposed = widget.CloneAll(ws)
	a.logger.Debug("commit", "reason", reason, "id", affected, "widgets", len(ws))
	telemetry.Grid().OnCommit(context.Background(), string(reason), affected, len(ws))
	a.cb.Commit(widget.LayoutCommitEvent{
		Widgets:    ws,
		Reason:     reason,
		AffectedID: affected,
		Breakpoint: a.bp,
	})
}

func dedupe(ws []widget.Widget, warn func(any, ...any)) []widget.Widget {
	out := make([]widget.Widget, 0, len(ws))
	seen := make(map[string]bool, len(ws))
	for _, w := range ws {
		if seen[w.ID] {
			warn("duplicate widget id ignored", "id", w.ID)
			continue
		}
		seen[w.ID] = true
		out = append(out, w.Clone())
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func sameLayouts(a, b []widget.Widget, bp widget.Breakpoint, cols int) bool {
	return slices.EqualFunc(a, b, func(x, y widget.Widget) bool {
		return x.ID == y.ID && x.LayoutFor(bp, cols) == y.LayoutFor(bp, cols)
	})
}
