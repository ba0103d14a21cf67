// internal/ui/reconciler.go
package ui

import (
	"errors"
	"log/slog"
)

// Renderer toggles the two affordances. Every call may fail, e.g. when
// the page element does not exist yet.
type Renderer interface {
	ShowChat() error
	HideChat() error
	ShowOffline() error
	HideOffline() error
}

// Launcher opens the chat. Only invoked on visitor action.
type Launcher interface {
	LaunchChat() error
}

// Reconciler delivers UI states to a Renderer.
//
// It always hides before it shows, so at most one affordance is visible.
// After any failed call the next Apply re-asserts the full state.
// Calls are held back until Ready (button-ready).
//
// Not safe for concurrent use: it is owned by the engine loop.
type Reconciler struct {
	r      Renderer
	logger *slog.Logger

	ready    bool
	desired  State
	applied  State
	needFull bool
}

// NewReconciler creates a reconciler that has delivered nothing yet.
func NewReconciler(r Renderer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		r:        r,
		logger:   logger,
		desired:  Pending,
		applied:  Pending,
		needFull: true,
	}
}

// Ready marks the affordances as present in the page and delivers the
// desired state. Repeated calls re-assert it.
func (rc *Reconciler) Ready() {
	rc.ready = true
	rc.needFull = true
	rc.deliver()
}

// IsReady reports whether Ready has been called.
func (rc *Reconciler) IsReady() bool {
	return rc.ready
}

// Apply records s as desired and delivers it when possible.
// Delivering an already-applied state is a no-op unless a previous
// delivery failed.
func (rc *Reconciler) Apply(s State) {
	rc.desired = s
	rc.deliver()
}

// Desired returns the most recent requested state.
func (rc *Reconciler) Desired() State {
	return rc.desired
}

// Applied returns the last fully delivered state and whether it is in sync
// with the desired one.
func (rc *Reconciler) Applied() (State, bool) {
	return rc.applied, !rc.needFull && rc.applied == rc.desired
}

// Launch forwards a visitor launch request if the renderer supports it.
func (rc *Reconciler) Launch() error {
	l, ok := rc.r.(Launcher)
	if !ok {
		return errors.New("ui: renderer cannot launch chat")
	}
	return l.LaunchChat()
}

func (rc *Reconciler) deliver() {
	if !rc.ready || rc.r == nil {
		return
	}
	if !rc.needFull && rc.applied == rc.desired {
		return
	}

	target := rc.desired
	if err := rc.toggle(target); err != nil {
		// Retried on the next Apply.
		rc.needFull = true
		rc.logger.Warn("render failed", "state", target.String(), "error", err)
		return
	}

	rc.applied = target
	rc.needFull = false
	rc.logger.Debug("rendered", "state", target.String())
}

// toggle hides first. A failed hide aborts before anything is shown.
func (rc *Reconciler) toggle(s State) error {
	switch s {
	case ChatAvailable:
		if err := rc.r.HideOffline(); err != nil {
			return err
		}
		return rc.r.ShowChat()

	case OfflineOnly:
		if err := rc.r.HideChat(); err != nil {
			return err
		}
		return rc.r.ShowOffline()

	default:
		return errors.Join(rc.r.HideChat(), rc.r.HideOffline())
	}
}
