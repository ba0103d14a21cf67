// internal/ui/render.go
package ui

import "github.com/tamzrod/contact-availability/internal/resolver"

// State is the affordance the page should show.
type State int

const (
	// Pending: no decision yet, neither affordance is shown.
	Pending State = iota
	ChatAvailable
	OfflineOnly
)

func (s State) String() string {
	switch s {
	case ChatAvailable:
		return "chat_available"
	case OfflineOnly:
		return "offline_only"
	default:
		return "pending"
	}
}

// Render maps (resolved state, demotion flag) to exactly one UI state.
// No IO. No side effects.
func Render(st resolver.State, resolved bool, demoted bool) State {
	if !resolved {
		return Pending
	}
	if st.Available && !demoted {
		return ChatAvailable
	}
	return OfflineOnly
}
