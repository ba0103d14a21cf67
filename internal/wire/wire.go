// internal/wire/wire.go
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tamzrod/contact-availability/internal/monitor"
	"github.com/tamzrod/contact-availability/internal/signal"
)

// Kind is the event type carried in the envelope.
type Kind string

const (
	KindPeriodSnapshot      Kind = "period-snapshot"
	KindPeriodStarted       Kind = "period-started"
	KindPeriodEnded         Kind = "period-ended"
	KindWidgetReady         Kind = "widget-ready"
	KindButtonReady         Kind = "button-ready"
	KindSessionStatus       Kind = "session-status"
	KindConversationStarted Kind = "conversation-started"
	KindLaunchChat          Kind = "launch-chat"
)

// ErrMalformed wraps every decode failure.
var ErrMalformed = errors.New("wire: malformed event")

// Event is a decoded push event.
type Event struct {
	Kind Kind

	// Value is set for period-snapshot only; Unknown when missing or not a bool.
	Value signal.Value

	// Session is set for session-status only.
	Session *monitor.SessionSignal

	// At is zero when the sender gave no usable timestamp.
	At time.Time

	// Page is the connection the event arrived on; empty for bus events.
	// Set by the transport, never decoded.
	Page string
}

// Decoder validates and decodes envelopes. Safe for concurrent use.
type Decoder struct {
	envelope *jsonschema.Schema
	routing  *jsonschema.Schema
	agent    *jsonschema.Schema
}

// NewDecoder compiles the embedded schemas.
func NewDecoder() (*Decoder, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(eventSchema)); err != nil {
		return nil, fmt.Errorf("wire: add schema resource: %w", err)
	}

	compile := func(ref string) (*jsonschema.Schema, error) {
		s, err := compiler.Compile(schemaURL + ref)
		if err != nil {
			return nil, fmt.Errorf("wire: compile schema %q: %w", ref, err)
		}
		return s, nil
	}

	env, err := compile("")
	if err != nil {
		return nil, err
	}
	routing, err := compile("#/$defs/routingResult")
	if err != nil {
		return nil, err
	}
	agent, err := compile("#/$defs/agentInfo")
	if err != nil {
		return nil, err
	}

	return &Decoder{envelope: env, routing: routing, agent: agent}, nil
}

// Decode parses one envelope.
func (d *Decoder) Decode(raw []byte) (Event, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := d.envelope.Validate(doc); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m := doc.(map[string]any)
	ev := Event{
		Kind: Kind(m["type"].(string)),
		At:   parseAt(m["at"]),
	}

	switch ev.Kind {
	case KindPeriodSnapshot:
		ev.Value = signal.FromAny(m["value"])
	case KindPeriodStarted:
		ev.Value = signal.True
	case KindPeriodEnded:
		ev.Value = signal.False
	case KindSessionStatus:
		ev.Session = d.session(m, ev.At)
	}

	return ev, nil
}

// session builds an optional-field record. A field of the wrong shape is
// dropped, never fatal: rules treat it as missing.
func (d *Decoder) session(m map[string]any, at time.Time) *monitor.SessionSignal {
	s := &monitor.SessionSignal{
		Status:     str(m["status"]),
		Reason:     str(m["reason"]),
		ObservedAt: at,
	}

	if rr, ok := m["routingResult"]; ok && d.routing.Validate(rr) == nil {
		obj := rr.(map[string]any)
		res := &monitor.RoutingResult{Outcome: str(obj["outcome"])}
		if b, ok := obj["success"].(bool); ok {
			res.Success = &b
		}
		s.Routing = res
	}

	if ai, ok := m["agentInfo"]; ok && d.agent.Validate(ai) == nil {
		obj := ai.(map[string]any)
		s.Agent = &monitor.AgentInfo{ID: str(obj["id"]), Name: str(obj["name"])}
	}

	return s
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func parseAt(v any) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ---- outbound ----

// Op is an affordance command sent to the page.
type Op string

const (
	OpShowChat    Op = "show_chat"
	OpHideChat    Op = "hide_chat"
	OpShowOffline Op = "show_offline"
	OpHideOffline Op = "hide_offline"
	OpLaunchChat  Op = "launch_chat"
)

// Command is the outbound message.
type Command struct {
	Op Op `json:"op"`
}

// EncodeCommand marshals a command.
func EncodeCommand(op Op) []byte {
	b, _ := json.Marshal(Command{Op: op})
	return b
}
