// internal/probe/scheduler.go
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/contact-availability/internal/clock"
	"github.com/tamzrod/contact-availability/internal/signal"
)

// Config is the minimal runtime config the scheduler needs.
type Config struct {
	Delays  []time.Duration // cumulative from Start, strictly increasing
	Timeout time.Duration   // per attempt
}

// Scheduler issues a bounded chain of probe attempts while nothing
// else has resolved availability. It never retries past its budget:
// exhaustion resolves fail-open.
type Scheduler struct {
	cfg    Config
	probe  Capability
	clock  clock.Clock
	hooks  Hooks
	logger *slog.Logger

	ctx      context.Context
	started  bool
	done     bool
	startAt  time.Time
	attempts int
	timer    clock.Timer
}

// New creates a scheduler with immutable config.
func New(cfg Config, probe Capability, clk clock.Clock, hooks Hooks, logger *slog.Logger) (*Scheduler, error) {
	if probe == nil {
		return nil, errors.New("probe: capability required")
	}
	if clk == nil {
		return nil, errors.New("probe: clock required")
	}
	if hooks.Resolved == nil || hooks.Emit == nil {
		return nil, errors.New("probe: resolved and emit hooks required")
	}
	if len(cfg.Delays) == 0 {
		cfg.Delays = DefaultDelays
	}
	for i, d := range cfg.Delays {
		if d <= 0 {
			return nil, fmt.Errorf("probe: delay %d must be > 0", i)
		}
		if i > 0 && d <= cfg.Delays[i-1] {
			return nil, fmt.Errorf("probe: delays must be strictly increasing (index %d)", i)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cfg:    cfg,
		probe:  probe,
		clock:  clk,
		hooks:  hooks,
		logger: logger,
	}, nil
}

// Start begins the attempt chain. Calling it again is a no-op.
// If availability is already resolved no attempt is ever scheduled.
func (s *Scheduler) Start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true
	s.ctx = ctx

	if s.hooks.Resolved() {
		s.done = true
		s.logger.Debug("probe not started: already resolved")
		return
	}

	s.startAt = s.clock.Now()
	s.scheduleNext(0)
}

// Stop cancels a pending attempt. The chain cannot be restarted.
func (s *Scheduler) Stop() {
	s.done = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Attempts returns how many times the capability was invoked.
func (s *Scheduler) Attempts() int {
	return s.attempts
}

// Active reports whether an attempt is still pending.
func (s *Scheduler) Active() bool {
	return s.started && !s.done
}

// scheduleNext arms attempt index at startAt + Delays[index].
func (s *Scheduler) scheduleNext(index int) {
	at := s.startAt.Add(s.cfg.Delays[index])
	wait := at.Sub(s.clock.Now())

	s.timer = s.clock.AfterFunc(wait, func() {
		s.post(func() { s.attempt(index, at) })
	})
}

func (s *Scheduler) attempt(index int, scheduledAt time.Time) {
	s.timer = nil
	if s.done {
		return
	}
	if s.ctx != nil && s.ctx.Err() != nil {
		s.done = true
		return
	}
	if s.hooks.Resolved() {
		s.done = true
		s.logger.Debug("probe chain stopped: resolved elsewhere", "attempt", index+1)
		return
	}

	s.attempts++
	v, err := s.invoke()

	if s.hooks.Observe != nil {
		s.hooks.Observe(Attempt{Index: index, ScheduledAt: scheduledAt, Value: v, Err: err})
	}

	if err == nil && v.Known() {
		s.done = true
		s.logger.Info("probe succeeded", "attempt", index+1, "value", v.String())
		s.hooks.Emit(signal.New(v, signal.SourceProbe, s.clock.Now()))
		return
	}

	if err != nil {
		s.logger.Warn("probe attempt failed", "attempt", index+1, "error", err)
	} else {
		s.logger.Debug("probe attempt returned no boolean", "attempt", index+1)
	}

	if index+1 < len(s.cfg.Delays) {
		s.scheduleNext(index + 1)
		return
	}

	// Budget exhausted: fail open.
	s.done = true
	s.logger.Info("probe budget exhausted, defaulting to available", "attempts", s.attempts)
	s.hooks.Emit(signal.New(signal.True, signal.SourceFallbackDefault, s.clock.Now()))
}

// invoke calls the capability once. A panic is converted to an error.
func (s *Scheduler) invoke() (v signal.Value, err error) {
	base := s.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, s.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			v = signal.Unknown
			err = fmt.Errorf("probe: capability panicked: %v", r)
		}
	}()

	return s.probe.IsAvailableNow(ctx)
}

func (s *Scheduler) post(f func()) {
	if s.hooks.Post == nil {
		f()
		return
	}
	s.hooks.Post(f)
}
