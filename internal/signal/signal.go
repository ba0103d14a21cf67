// internal/signal/signal.go
package signal

import "time"

// Value is a tri-state availability reading.
// Unknown covers missing, null and non-boolean inputs.
type Value int8

const (
	Unknown Value = iota
	True
	False
)

// Of converts a strict boolean.
func Of(b bool) Value {
	if b {
		return True
	}
	return False
}

// FromPtr converts an optional boolean. nil => Unknown.
func FromPtr(b *bool) Value {
	if b == nil {
		return Unknown
	}
	return Of(*b)
}

// FromAny accepts only a real bool. Strings such as "true", numbers and nil
// are Unknown: the push channel is known to omit or mangle the value.
func FromAny(v any) Value {
	b, ok := v.(bool)
	if !ok {
		return Unknown
	}
	return Of(b)
}

// Bool returns the boolean and whether it is known.
func (v Value) Bool() (bool, bool) {
	switch v {
	case True:
		return true, true
	case False:
		return false, true
	default:
		return false, false
	}
}

// Known reports whether v carries a boolean.
func (v Value) Known() bool {
	return v == True || v == False
}

func (v Value) String() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Source identifies the channel a Signal came from.
// Declaration order encodes trust, not arrival time.
type Source uint8

const (
	SourceNone Source = iota
	SourceGenericSnapshot
	SourcePeriodStarted
	SourcePeriodEnded
	SourceProbe
	SourceFallbackDefault
)

var sourceNames = [...]string{
	SourceNone:            "none",
	SourceGenericSnapshot: "generic-snapshot",
	SourcePeriodStarted:   "period-started",
	SourcePeriodEnded:     "period-ended",
	SourceProbe:           "probe",
	SourceFallbackDefault: "fallback-default",
}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "invalid"
}

// IsTransition reports whether s represents an explicit operating-hours
// transition. Only transitions may overwrite a latched state.
func (s Source) IsTransition() bool {
	return s == SourcePeriodStarted || s == SourcePeriodEnded
}

// Signal is one immutable observation of availability.
type Signal struct {
	Value      Value
	Source     Source
	ObservedAt time.Time
}

// New builds a Signal.
func New(v Value, src Source, at time.Time) Signal {
	return Signal{Value: v, Source: src, ObservedAt: at}
}
