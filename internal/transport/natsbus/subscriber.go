// internal/transport/natsbus/subscriber.go
package natsbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tamzrod/contact-availability/internal/wire"
)

// EventSink receives decoded availability events. engine.Engine satisfies it.
type EventSink interface {
	Submit(ev wire.Event)
}

// Config for the subscriber.
type Config struct {
	URL     string
	Token   string
	Subject string // prefix; the subscriber listens on "<Subject>.>"
}

// Subscriber forwards hosted-service events published on NATS.
// Only operating-hours events are accepted from the bus.
type Subscriber struct {
	cfg    Config
	dec    *wire.Decoder
	sink   EventSink
	logger *slog.Logger
}

// NewSubscriber validates cfg.
func NewSubscriber(cfg Config, dec *wire.Decoder, sink EventSink, logger *slog.Logger) (*Subscriber, error) {
	if cfg.URL == "" {
		return nil, errors.New("natsbus: url required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("natsbus: subject required")
	}
	if dec == nil || sink == nil {
		return nil, errors.New("natsbus: decoder and sink required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{cfg: cfg, dec: dec, sink: sink, logger: logger}, nil
}

// Run subscribes until ctx is cancelled, reconnecting with exponential backoff.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := s.subscribe(ctx)
		if ctx.Err() != nil {
			return fmt.Errorf("natsbus stopped: %w", ctx.Err())
		}
		if err == nil {
			backoff = time.Second
			continue
		}

		s.logger.Warn("NATS subscription error, reconnecting", "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return fmt.Errorf("natsbus stopped: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (s *Subscriber) subscribe(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name("widgetd"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
	}
	if s.cfg.Token != "" {
		opts = append(opts, nats.Token(s.cfg.Token))
	}

	nc, err := nats.Connect(s.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("NATS connect: %w", err)
	}
	defer nc.Close()

	msgCh := make(chan *nats.Msg, 64)
	subject := s.cfg.Subject + ".>"
	sub, err := nc.ChanSubscribe(subject, msgCh)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	s.logger.Info("NATS subscription active", "subject", subject, "url", s.cfg.URL)

	closed := make(chan struct{})
	nc.SetClosedHandler(func(*nats.Conn) { close(closed) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			return errors.New("NATS connection closed")
		case msg := <-msgCh:
			s.handleMessage(msg)
		}
	}
}

// handleMessage decodes one message. Events other than period transitions
// and snapshots belong to the page and are ignored here.
func (s *Subscriber) handleMessage(msg *nats.Msg) {
	ev, err := s.dec.Decode(msg.Data)
	if err != nil {
		s.logger.Debug("skipping malformed NATS message", "subject", msg.Subject, "error", err)
		return
	}

	switch ev.Kind {
	case wire.KindPeriodSnapshot, wire.KindPeriodStarted, wire.KindPeriodEnded:
		s.sink.Submit(ev)
	default:
		s.logger.Debug("ignoring page-only event from NATS", "subject", msg.Subject, "type", string(ev.Kind))
	}
}
