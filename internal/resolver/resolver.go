// internal/resolver/resolver.go
package resolver

import (
	"log/slog"
	"time"

	"github.com/tamzrod/contact-availability/internal/signal"
)

// State is the canonical availability decision.
type State struct {
	Available  bool
	Source     signal.Source
	ResolvedAt time.Time
}

// Resolver funnels every availability Signal into one State.
//
// Rules:
//   - Unknown values are ignored.
//   - The first boolean latches, whatever its source.
//   - After the latch only period-started / period-ended may overwrite.
//
// Not safe for concurrent use: it is owned by the engine loop.
type Resolver struct {
	logger   *slog.Logger
	onChange func(State)

	state State
	set   bool
}

// New creates an unset Resolver. onChange may be nil.
func New(logger *slog.Logger, onChange func(State)) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger, onChange: onChange}
}

// Accept applies one Signal and reports whether the state changed.
func (r *Resolver) Accept(sig signal.Signal) bool {
	avail, ok := sig.Value.Bool()
	if !ok {
		r.logger.Debug("signal ignored: no boolean value", "source", sig.Source.String())
		return false
	}

	if r.set && !sig.Source.IsTransition() {
		r.logger.Debug("signal discarded after latch",
			"source", sig.Source.String(),
			"value", avail,
			"latched_source", r.state.Source.String(),
			"latched_value", r.state.Available,
		)
		return false
	}

	next := State{
		Available:  avail,
		Source:     sig.Source,
		ResolvedAt: sig.ObservedAt,
	}

	changed := !r.set || next.Available != r.state.Available || next.Source != r.state.Source

	r.state = next
	r.set = true

	if !changed {
		return false
	}

	r.logger.Info("availability resolved",
		"available", next.Available,
		"source", next.Source.String(),
	)
	if r.onChange != nil {
		r.onChange(next)
	}
	return true
}

// Current returns the state and whether one exists.
func (r *Resolver) Current() (State, bool) {
	return r.state, r.set
}

// Resolved reports whether a decision exists.
func (r *Resolver) Resolved() bool {
	return r.set
}
