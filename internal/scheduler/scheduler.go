// Package scheduler runs deferred work on the UI goroutine.
//
// Nothing here starts a goroutine or blocks. The application drives the
// scheduler from its frame tick: first Painted, once the previous frame has
// been drawn, then Tick with the frame time. Timers and paint callbacks run
// inside those calls, so callbacks may freely touch UI state.
package scheduler

import (
	"cmp"
	"slices"
	"time"
)

// Timer is a pending callback created by After.
type Timer struct {
	id      uint64
	at      time.Time
	fn      func()
	s       *Scheduler
	stopped bool
}

// Stop cancels the timer. It reports whether the timer was still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped {
		return false
	}
	t.stopped = true
	t.s.remove(t)
	return true
}

// Deadline returns when the timer fires.
func (t *Timer) Deadline() time.Time { return t.at }

type paintFunc struct {
	fn   func()
	dead bool
}

// Scheduler holds timers and paint-boundary callbacks.
type Scheduler struct {
	clock  func() time.Time
	seq    uint64
	timers []*Timer
	paint  []*paintFunc
}

// New returns a scheduler reading time from clock, or time.Now when clock
// is nil.
func New(clock func() time.Time) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time { return s.clock() }

// After schedules fn to run on the first Tick at or after now+d.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{id: s.seq, at: s.clock().Add(d), fn: fn, s: s}
	s.timers = append(s.timers, t)
	return t
}

// AfterPaint runs fn on the next paint boundary. The returned func removes
// the callback if it has not run yet.
func (s *Scheduler) AfterPaint(fn func()) (cancel func()) {
	p := &paintFunc{fn: fn}
	s.paint = append(s.paint, p)
	return func() {
		p.dead = true
		s.paint = slices.DeleteFunc(s.paint, func(o *paintFunc) bool { return o == p })
	}
}

// Tick runs every timer due at now, earliest deadline first and in creation
// order for equal deadlines. Timers created by those callbacks wait for the
// next Tick. It returns the number of timers run.
func (s *Scheduler) Tick(now time.Time) int {
	var due []*Timer
	for _, t := range s.timers {
		if !t.at.After(now) {
			due = append(due, t)
		}
	}
	slices.SortFunc(due, func(a, b *Timer) int {
		return cmp.Or(a.at.Compare(b.at), cmp.Compare(a.id, b.id))
	})

	ran := 0
	for _, t := range due {
		// An earlier callback may have stopped this one.
		if t.stopped {
			continue
		}
		t.stopped = true
		s.remove(t)
		t.fn()
		ran++
	}
	return ran
}

// Painted marks a paint boundary: every callback registered before the call
// runs once. Callbacks registered while draining wait for the next boundary.
func (s *Scheduler) Painted() int {
	queued := s.paint
	s.paint = nil
	ran := 0
	for _, p := range queued {
		if p.dead {
			continue
		}
		p.dead = true
		p.fn()
		ran++
	}
	return ran
}

// Pending returns the number of live timers and paint callbacks.
func (s *Scheduler) Pending() (timers, paints int) {
	return len(s.timers), len(s.paint)
}

// Idle reports whether nothing is scheduled.
func (s *Scheduler) Idle() bool {
	return len(s.timers) == 0 && len(s.paint) == 0
}

func (s *Scheduler) remove(t *Timer) {
	s.timers = slices.DeleteFunc(s.timers, func(o *Timer) bool { return o == t })
}
