// internal/monitor/types.go
package monitor

import (
	"strings"
	"time"
)

// SessionSignal is one lifecycle update from the hosted chat session.
// Every field is optional; rules treat missing fields as "no match".
type SessionSignal struct {
	Status     string
	Reason     string
	Routing    *RoutingResult
	Agent      *AgentInfo
	ObservedAt time.Time
}

// RoutingResult is the routing substructure of a session update.
type RoutingResult struct {
	Success *bool
	Outcome string
}

// AgentInfo identifies the assigned agent.
type AgentInfo struct {
	ID   string
	Name string
}

// Present reports whether the agent block identifies anyone.
func (a *AgentInfo) Present() bool {
	if a == nil {
		return false
	}
	return strings.TrimSpace(a.ID) != "" || strings.TrimSpace(a.Name) != ""
}

// Phase is the normalized session status.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseWaiting
	PhaseActive
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseActive:
		return "active"
	case PhaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

var phases = map[string]Phase{
	"waiting":    PhaseWaiting,
	"queued":     PhaseWaiting,
	"connecting": PhaseWaiting,

	"active":     PhaseActive,
	"inprogress": PhaseActive,
	"connected":  PhaseActive,
	"accepted":   PhaseActive,

	"ended":     PhaseTerminal,
	"closed":    PhaseTerminal,
	"completed": PhaseTerminal,
	"canceled":  PhaseTerminal,
	"cancelled": PhaseTerminal,
	"failed":    PhaseTerminal,
	"error":     PhaseTerminal,
	"abandoned": PhaseTerminal,
	"timedout":  PhaseTerminal,
}

// Classify maps a raw status ("Waiting", "In_Progress", "ENDED") to a Phase.
func Classify(status string) Phase {
	return phases[normalize(status)]
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
