package app

import "github.com/Gaurav-Gosain/gridboard/internal/widget"

func (b *Board) pushHistory(ws []widget.Widget) {
	b.history = append(b.history, ws)
	if len(b.history) > HistoryLimit {
		b.history = b.history[len(b.history)-HistoryLimit:]
	}
	b.future = nil
}

// Undo restores the list from before the last committed edit.
func (b *Board) Undo() bool {
	if len(b.history) == 0 {
		return false
	}
	prev := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.future = append(b.future, widget.CloneAll(b.widgets))
	b.restore(prev)
	return true
}

// Redo reapplies the last undone edit.
func (b *Board) Redo() bool {
	if len(b.future) == 0 {
		return false
	}
	next := b.future[len(b.future)-1]
	b.future = b.future[:len(b.future)-1]
	b.history = append(b.history, widget.CloneAll(b.widgets))
	b.restore(next)
	return true
}

func (b *Board) restore(ws []widget.Widget) {
	b.cancelGesture()
	b.snapshot = nil
	b.widgets = widget.CloneAll(ws)
	b.dirty = true
	b.saveWanted = true
}
