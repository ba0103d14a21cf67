// internal/probe/types.go
package probe

import (
	"context"
	"time"

	"github.com/tamzrod/contact-availability/internal/signal"
)

// Capability is the pull-style availability check.
// It is fallible: an error, a panic or an Unknown value all count as a failed attempt.
type Capability interface {
	IsAvailableNow(ctx context.Context) (signal.Value, error)
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(ctx context.Context) (signal.Value, error)

func (f CapabilityFunc) IsAvailableNow(ctx context.Context) (signal.Value, error) {
	return f(ctx)
}

// DefaultDelays are cumulative offsets from Start.
var DefaultDelays = []time.Duration{
	1 * time.Second,
	3 * time.Second,
	6 * time.Second,
	10 * time.Second,
	15 * time.Second,
}

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 2 * time.Second

// Attempt records one probe invocation.
type Attempt struct {
	Index       int
	ScheduledAt time.Time
	Value       signal.Value
	Err         error
}

// Hooks connect the scheduler to its owner.
type Hooks struct {
	// Resolved is checked before every attempt; true ends the chain.
	Resolved func() bool

	// Emit receives the probe or fallback-default Signal.
	Emit func(signal.Signal)

	// Post runs f on the owner's loop. nil runs f inline.
	Post func(f func())

	// Observe, if set, sees every attempt (diagnostics).
	Observe func(Attempt)
}
