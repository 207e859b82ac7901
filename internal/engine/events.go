package engine

import (
	"slices"

	"github.com/Gaurav-Gosain/gridboard/internal/ui"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// ChangeKind classifies a node change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeMoved   ChangeKind = "moved"
	ChangeResized ChangeKind = "resized"
	// ChangeSettled reports nodes the engine moved on its own, either while
	// arranging after a mutation or at the end of an interaction.
	ChangeSettled ChangeKind = "settled"
)

// GestureKind names a pointer interaction.
type GestureKind string

const (
	GestureDrag     GestureKind = "drag"
	GestureResize   GestureKind = "resize"
	GestureExternal GestureKind = "external"
)

// Phase is the stage of an interaction a change belongs to.
type Phase string

const (
	PhaseStart  Phase = "start"
	PhaseMove   Phase = "move"
	PhaseStop   Phase = "stop"
	PhaseCancel Phase = "cancel"
)

// Change is delivered to OnNodeChanged subscribers. User is set for changes
// caused by a pointer interaction; Gesture and Phase are only set then.
type Change struct {
	Kind    ChangeKind
	IDs     []string
	User    bool
	Gesture GestureKind
	Phase   Phase
}

// Placeholder marks where the node under the pointer would land if the
// interaction ended now.
type Placeholder struct {
	ID       string
	Rect     widget.Rect
	Screen   ui.Bounds
	External bool
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

type subscriptions[T any] struct {
	seq  int
	list []subscriber[T]
}

func (s *subscriptions[T]) add(fn func(T)) func() {
	s.seq++
	id := s.seq
	s.list = append(s.list, subscriber[T]{id: id, fn: fn})
	return func() {
		s.list = slices.DeleteFunc(s.list, func(sub subscriber[T]) bool { return sub.id == id })
	}
}

func (s *subscriptions[T]) emit(v T) {
	for _, sub := range slices.Clone(s.list) {
		sub.fn(v)
	}
}

func (s *subscriptions[T]) len() int { return len(s.list) }

// OnNodeChanged subscribes to node changes. The returned func unsubscribes.
func (e *Engine) OnNodeChanged(fn func(Change)) (unsubscribe func()) {
	return e.subs.add(fn)
}

// OnPlaceholder subscribes to placeholder updates. A nil placeholder means
// it was hidden. The returned func unsubscribes.
func (e *Engine) OnPlaceholder(fn func(*Placeholder)) (unsubscribe func()) {
	return e.phSubs.add(fn)
}

// Subscribers returns the number of live change and placeholder
// subscriptions.
func (e *Engine) Subscribers() (changes, placeholders int) {
	return e.subs.len(), e.phSubs.len()
}

// Placeholder returns a copy of the current placeholder, or nil.
func (e *Engine) Placeholder() *Placeholder {
	if e.placeholder == nil {
		return nil
	}
	p := *e.placeholder
	return &p
}

func (e *Engine) setPlaceholder(p *Placeholder) {
	if p == nil && e.placeholder == nil {
		return
	}
	if p != nil && e.placeholder != nil && *p == *e.placeholder {
		return
	}
	e.placeholder = p
	e.phSubs.emit(e.Placeholder())
}

func (e *Engine) showPlaceholder(id string, r widget.Rect, external bool) {
	e.setPlaceholder(&Placeholder{
		ID:       id,
		Rect:     r,
		Screen:   e.Geometry().CellRect(r),
		External: external,
	})
}
