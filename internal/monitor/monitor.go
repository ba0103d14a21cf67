// internal/monitor/monitor.go
package monitor

import (
	"log/slog"
	"time"
)

// DefaultWaitingThreshold is how long a session may stay waiting.
const DefaultWaitingThreshold = 60 * time.Second

// Config tunes the monitor.
type Config struct {
	WaitingThreshold time.Duration
	BenignReasons    []string

	// Rules replaces the default heuristics when non-nil.
	Rules []Rule
}

// Monitor watches session lifecycle after a chat launch and owns the
// demotion flag. It knows nothing about resolved availability; the two are
// combined only at render time.
//
// Not safe for concurrent use: it is owned by the engine loop.
type Monitor struct {
	rules     []Rule
	threshold time.Duration
	logger    *slog.Logger
	onChange  func(demoted bool)

	armed   bool
	demoted bool
	hist    History
	last    SessionSignal
}

// New creates an inert monitor. onChange may be nil.
func New(cfg Config, logger *slog.Logger, onChange func(bool)) *Monitor {
	if cfg.WaitingThreshold <= 0 {
		cfg.WaitingThreshold = DefaultWaitingThreshold
	}
	if cfg.BenignReasons == nil {
		cfg.BenignReasons = DefaultBenignReasons
	}
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules(cfg.WaitingThreshold, cfg.BenignReasons)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		rules:     rules,
		threshold: cfg.WaitingThreshold,
		logger:    logger,
		onChange:  onChange,
	}
}

// WithRules appends extra heuristics.
func (m *Monitor) WithRules(rules ...Rule) *Monitor {
	m.rules = append(m.rules, rules...)
	return m
}

// Arm is called when the visitor launches a chat. Session history from any
// earlier attempt is discarded; the demotion flag is left alone.
func (m *Monitor) Arm() {
	m.armed = true
	m.hist = History{}
	m.last = SessionSignal{}
}

// Armed reports whether a launch has been attempted.
func (m *Monitor) Armed() bool {
	return m.armed
}

// ConversationStarted starts a fresh session: history is reset and a
// demotion carried over from an earlier session is cleared.
func (m *Monitor) ConversationStarted() {
	m.armed = true
	m.hist = History{}
	m.last = SessionSignal{}
	m.set(false, "conversation_started")
}

// Demoted returns the demotion flag.
func (m *Monitor) Demoted() bool {
	return m.demoted
}

// Observe applies one session signal.
func (m *Monitor) Observe(sig SessionSignal) {
	if !m.armed {
		m.logger.Debug("session signal before launch ignored", "status", sig.Status)
		return
	}

	phase := Classify(sig.Status)
	if sig.Agent.Present() {
		m.hist.EverAssigned = true
	}

	switch phase {
	case PhaseActive:
		m.hist.Phase = phase
		m.hist.WaitingSince = time.Time{}
		if sig.Agent.Present() {
			m.set(false, "agent_assigned")
		}
		return

	case PhaseWaiting:
		if m.hist.Phase != PhaseWaiting || m.hist.WaitingSince.IsZero() {
			m.hist.WaitingSince = sig.ObservedAt
		}
		m.hist.Phase = phase

	case PhaseTerminal:
		m.hist.Phase = phase

	default:
		m.logger.Debug("session signal with unrecognised status", "status", sig.Status)
		return
	}

	m.last = sig
	m.evaluate(sig)
}

// WaitingDeadline reports when a session still waiting would cross the
// threshold. ok is false unless the session is waiting with a timestamp.
func (m *Monitor) WaitingDeadline() (deadline time.Time, ok bool) {
	if !m.armed || m.hist.Phase != PhaseWaiting || m.hist.WaitingSince.IsZero() || m.threshold <= 0 {
		return time.Time{}, false
	}
	return m.hist.WaitingSince.Add(m.threshold), true
}

// Recheck re-evaluates the last waiting signal as if it were observed again
// at now. It lets a session that stays silent in the queue still demote.
func (m *Monitor) Recheck(now time.Time) {
	if !m.armed || m.hist.Phase != PhaseWaiting {
		return
	}
	sig := m.last
	sig.ObservedAt = now
	m.evaluate(sig)
}

func (m *Monitor) evaluate(sig SessionSignal) {
	for _, r := range m.rules {
		if r.Match(sig, m.hist) {
			m.set(true, r.Name)
			return
		}
	}
}

func (m *Monitor) set(demoted bool, why string) {
	if m.demoted == demoted {
		return
	}
	m.demoted = demoted
	m.logger.Info("demotion flag changed", "demoted", demoted, "rule", why)
	if m.onChange != nil {
		m.onChange(demoted)
	}
}
