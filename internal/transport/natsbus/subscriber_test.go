package natsbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tamzrod/contact-availability/internal/signal"
	"github.com/tamzrod/contact-availability/internal/wire"
)

type recordSink struct {
	events []wire.Event
}

func (r *recordSink) Submit(ev wire.Event) { r.events = append(r.events, ev) }

func newSubscriber(t *testing.T, url string) (*Subscriber, *recordSink) {
	t.Helper()
	dec, err := wire.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder err=%v", err)
	}
	sink := &recordSink{}
	s, err := NewSubscriber(Config{URL: url, Subject: "contact.availability"}, dec, sink,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewSubscriber err=%v", err)
	}
	return s, sink
}

func TestNewSubscriberValidation(t *testing.T) {
	dec, _ := wire.NewDecoder()
	sink := &recordSink{}

	if _, err := NewSubscriber(Config{Subject: "x"}, dec, sink, nil); err == nil {
		t.Fatalf("expected error without url")
	}
	if _, err := NewSubscriber(Config{URL: "nats://localhost:4222"}, dec, sink, nil); err == nil {
		t.Fatalf("expected error without subject")
	}
	if _, err := NewSubscriber(Config{URL: "nats://localhost:4222", Subject: "x"}, nil, sink, nil); err == nil {
		t.Fatalf("expected error without decoder")
	}
}

func TestHandleMessage_ForwardsAvailabilityEvents(t *testing.T) {
	s, sink := newSubscriber(t, "nats://localhost:4222")

	s.handleMessage(&nats.Msg{Subject: "contact.availability.period", Data: []byte(`{"type":"period-ended"}`)})
	s.handleMessage(&nats.Msg{Subject: "contact.availability.snapshot", Data: []byte(`{"type":"period-snapshot","value":true}`)})

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].Kind != wire.KindPeriodEnded || sink.events[0].Value != signal.False {
		t.Fatalf("unexpected first event %+v", sink.events[0])
	}
	if sink.events[1].Value != signal.True {
		t.Fatalf("unexpected second event %+v", sink.events[1])
	}
}

func TestHandleMessage_DropsMalformedAndPageEvents(t *testing.T) {
	s, sink := newSubscriber(t, "nats://localhost:4222")

	s.handleMessage(&nats.Msg{Subject: "contact.availability.x", Data: []byte(`{not json`)})
	s.handleMessage(&nats.Msg{Subject: "contact.availability.x", Data: []byte(`{"type":"launch-chat"}`)})
	s.handleMessage(&nats.Msg{Subject: "contact.availability.x", Data: []byte(`{"type":"button-ready"}`)})

	if len(sink.events) != 0 {
		t.Fatalf("expected nothing forwarded, got %+v", sink.events)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	// nothing listens on this port; Run keeps retrying until cancelled
	s, _ := newSubscriber(t, "nats://127.0.0.1:1")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
