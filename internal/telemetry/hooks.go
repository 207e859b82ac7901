// Package telemetry provides optional instrumentation hooks for the grid.
//
// Libraries call the registered hooks; main registers a backend at startup.
// The defaults are no-ops, so nothing is recorded unless a backend such as
// the OTLP exporter in otlp.go is installed.
package telemetry

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Grid Hooks
// =============================================================================

// ReconcileStats summarizes one adapter pass.
type ReconcileStats struct {
	Added     int
	Removed   int
	Corrected int
	Protected int
	Duration  time.Duration
}

// GridHooks receives events from the grid adapter.
type GridHooks interface {
	OnReconcile(ctx context.Context, stats ReconcileStats)
	OnCommit(ctx context.Context, reason, affectedID string, widgets int)
	// OnRejected records an arrangement that failed validation and was
	// replaced by the last valid one.
	OnRejected(ctx context.Context, op string, err error)
}

// =============================================================================
// Transition Hooks
// =============================================================================

// TransitionHooks receives events from the drop transition.
type TransitionHooks interface {
	OnTransitionStart(ctx context.Context, id string)
	OnTransitionComplete(ctx context.Context, id string, forced bool, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGridHooks is a no-op implementation of GridHooks.
type NoopGridHooks struct{}

func (NoopGridHooks) OnReconcile(context.Context, ReconcileStats)   {}
func (NoopGridHooks) OnCommit(context.Context, string, string, int) {}
func (NoopGridHooks) OnRejected(context.Context, string, error)     {}

// NoopTransitionHooks is a no-op implementation of TransitionHooks.
type NoopTransitionHooks struct{}

func (NoopTransitionHooks) OnTransitionStart(context.Context, string)                         {}
func (NoopTransitionHooks) OnTransitionComplete(context.Context, string, bool, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	gridHooks       GridHooks       = NoopGridHooks{}
	transitionHooks TransitionHooks = NoopTransitionHooks{}
	hooksMu         sync.RWMutex
)

// SetGridHooks registers grid hooks. Call it once at startup.
func SetGridHooks(h GridHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gridHooks = h
	}
}

// SetTransitionHooks registers transition hooks. Call it once at startup.
func SetTransitionHooks(h TransitionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		transitionHooks = h
	}
}

// Grid returns the registered grid hooks.
func Grid() GridHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gridHooks
}

// Transition returns the registered transition hooks.
func Transition() TransitionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return transitionHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	gridHooks = NoopGridHooks{}
	transitionHooks = NoopTransitionHooks{}
}
