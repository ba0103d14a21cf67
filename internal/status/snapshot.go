// internal/status/snapshot.go
package status

import (
	"github.com/tamzrod/contact-availability/internal/resolver"
	"github.com/tamzrod/contact-availability/internal/ui"
)

// Snapshot represents exactly what a status writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	UI             uint16
	Resolved       uint16
	Available      uint16
	Source         uint16
	Demoted        uint16
	SecondsPending uint16
	ProbeAttempts  uint16
}

// From builds a Snapshot from engine state. Counters saturate.
func From(view ui.State, st resolver.State, resolved bool, demotedPages, secondsPending, attempts int) Snapshot {
	s := Snapshot{
		UI:             uiCode(view),
		SecondsPending: clamp(secondsPending),
		ProbeAttempts:  clamp(attempts),
		Demoted:        clamp(demotedPages),
	}
	if resolved {
		s.Resolved = 1
		s.Available = flag(st.Available)
		s.Source = uint16(st.Source)
	}
	return s
}

func uiCode(v ui.State) uint16 {
	switch v {
	case ui.ChatAvailable:
		return UIChat
	case ui.OfflineOnly:
		return UIOffline
	default:
		return UIPending
	}
}

func flag(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func clamp(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > MaxCounter {
		return MaxCounter
	}
	return uint16(n)
}
