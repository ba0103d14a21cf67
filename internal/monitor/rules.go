// internal/monitor/rules.go
package monitor

import "time"

// History is what the monitor remembers about the current session.
type History struct {
	Phase        Phase
	WaitingSince time.Time
	EverAssigned bool
}

// Rule is one independent demotion heuristic.
// Match must be pure and must return false when the fields it needs are missing.
type Rule struct {
	Name  string
	Match func(sig SessionSignal, h History) bool
}

// DefaultRules returns the built-in heuristics. Order only affects which
// name is logged when several match.
func DefaultRules(waitingThreshold time.Duration, benignReasons []string) []Rule {
	benign := make(map[string]struct{}, len(benignReasons))
	for _, r := range benignReasons {
		benign[normalize(r)] = struct{}{}
	}

	return []Rule{
		{Name: "failure_reason", Match: failureReason(benign)},
		{Name: "routing_failed", Match: routingFailed},
		{Name: "waiting_too_long", Match: waitingTooLong(waitingThreshold)},
		{Name: "ended_unassigned", Match: endedUnassigned},
	}
}

func failureReason(benign map[string]struct{}) func(SessionSignal, History) bool {
	return func(sig SessionSignal, _ History) bool {
		reason := normalize(sig.Reason)
		if reason == "" {
			return false
		}
		_, ok := benign[reason]
		return !ok
	}
}

func routingFailed(sig SessionSignal, _ History) bool {
	if sig.Routing == nil {
		return false
	}
	if sig.Routing.Success != nil {
		return !*sig.Routing.Success
	}
	outcome := normalize(sig.Routing.Outcome)
	if outcome == "" {
		return false
	}
	return outcome != "success" && outcome != "routed"
}

func waitingTooLong(threshold time.Duration) func(SessionSignal, History) bool {
	return func(sig SessionSignal, h History) bool {
		if h.Phase != PhaseWaiting {
			return false
		}
		if threshold <= 0 || h.WaitingSince.IsZero() || sig.ObservedAt.IsZero() {
			return false
		}
		return sig.ObservedAt.Sub(h.WaitingSince) > threshold
	}
}

func endedUnassigned(_ SessionSignal, h History) bool {
	return h.Phase == PhaseTerminal && !h.EverAssigned
}

// DefaultBenignReasons are end reasons of a conversation that actually happened.
var DefaultBenignReasons = []string{
	"VisitorEnded",
	"AgentEnded",
	"EndedByVisitor",
	"EndedByAgent",
	"Completed",
}
