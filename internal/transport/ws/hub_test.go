package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tamzrod/contact-availability/internal/engine"
	"github.com/tamzrod/contact-availability/internal/signal"
	"github.com/tamzrod/contact-availability/internal/wire"
)

// ---- fakes ----

type attachment struct {
	page string
	r    engine.PageRenderer
}

type chanSink struct {
	events   chan wire.Event
	attached chan attachment
	detached chan string
}

func (s *chanSink) Attach(page string, r engine.PageRenderer) {
	s.attached <- attachment{page: page, r: r}
}
func (s *chanSink) Detach(page string)   { s.detached <- page }
func (s *chanSink) Submit(ev wire.Event) { s.events <- ev }

type idleProbe struct{}

func (idleProbe) IsAvailableNow(context.Context) (signal.Value, error) { return signal.Unknown, nil }

type fixedQuerier struct {
	view engine.View
	err  error
}

func (q fixedQuerier) Query(context.Context) (engine.View, error) { return q.view, q.err }

func newHub(t *testing.T, cfg Config) (*Hub, *chanSink) {
	t.Helper()
	dec, err := wire.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder err=%v", err)
	}
	sink := &chanSink{
		events:   make(chan wire.Event, 8),
		attached: make(chan attachment, 8),
		detached: make(chan string, 8),
	}
	h, err := NewHub(cfg, dec, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewHub err=%v", err)
	}
	return h, sink
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial err=%v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func waitConnected(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Connected() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, have %d", n, h.Connected())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// readOps collects the commands a page receives until the socket closes.
func readOps(c *websocket.Conn) <-chan wire.Op {
	ch := make(chan wire.Op, 32)
	go func() {
		defer close(ch)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			var cmd wire.Command
			if json.Unmarshal(data, &cmd) == nil {
				ch <- cmd.Op
			}
		}
	}()
	return ch
}

func waitOp(t *testing.T, ops <-chan wire.Op, want wire.Op) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case op, ok := <-ops:
			if !ok {
				t.Fatalf("socket closed before %s", want)
			}
			if op == want {
				return
			}
		case <-timeout:
			t.Fatalf("no %s received", want)
		}
	}
}

func send(t *testing.T, c *websocket.Conn, msg string) {
	t.Helper()
	if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write err=%v", err)
	}
}

// ---- tests ----

func TestNewHubRequiresDecoderAndSink(t *testing.T) {
	if _, err := NewHub(Config{}, nil, &chanSink{}, nil); err == nil {
		t.Fatalf("expected error without decoder")
	}
	dec, _ := wire.NewDecoder()
	if _, err := NewHub(Config{}, dec, nil, nil); err == nil {
		t.Fatalf("expected error without sink")
	}
}

func TestRoundTrip(t *testing.T) {
	h, sink := newHub(t, Config{})
	srv := httptest.NewServer(Routes(h, fixedQuerier{}, nil))
	defer srv.Close()

	c := dial(t, srv)

	var att attachment
	select {
	case att = <-sink.attached:
	case <-time.After(2 * time.Second):
		t.Fatalf("connection not attached")
	}
	if att.page == "" {
		t.Fatalf("empty page id")
	}

	// inbound: valid event is forwarded with its page, malformed one dropped
	send(t, c, `{"type":"bogus"}`)
	send(t, c, `{"type":"button-ready"}`)

	select {
	case ev := <-sink.events:
		if ev.Kind != wire.KindButtonReady || ev.Page != att.page {
			t.Fatalf("unexpected event %s from %q", ev.Kind, ev.Page)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not forwarded")
	}

	// outbound: render call on the attached renderer becomes a command
	if err := att.r.ShowOffline(); err != nil {
		t.Fatalf("ShowOffline err=%v", err)
	}

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read err=%v", err)
	}
	var cmd wire.Command
	if err := json.Unmarshal(data, &cmd); err != nil || cmd.Op != wire.OpShowOffline {
		t.Fatalf("unexpected command %s (err=%v)", data, err)
	}

	_ = c.Close()
	select {
	case page := <-sink.detached:
		if page != att.page {
			t.Fatalf("detached %q want %q", page, att.page)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("connection not detached")
	}
	waitConnected(t, h, 0)

	if err := att.r.ShowChat(); err == nil {
		t.Fatalf("render on a closed connection succeeded")
	}
}

func TestPageFailureStaysOnItsConnection(t *testing.T) {
	dec, err := wire.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder err=%v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	loop := engine.NewLoop(64)
	eng, err := engine.New(engine.Config{}, engine.Deps{Poster: loop, Probe: idleProbe{}, Logger: logger})
	if err != nil {
		t.Fatalf("engine.New err=%v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	go func() { _ = loop.Run(ctx) }()

	h, err := NewHub(Config{}, dec, eng, logger)
	if err != nil {
		t.Fatalf("NewHub err=%v", err)
	}
	srv := httptest.NewServer(Routes(h, eng, nil))
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitConnected(t, h, 2)
	opsA, opsB := readOps(a), readOps(b)

	send(t, a, `{"type":"button-ready"}`)
	send(t, b, `{"type":"button-ready"}`)
	eng.Submit(wire.Event{Kind: wire.KindPeriodStarted})

	waitOp(t, opsA, wire.OpShowChat)
	waitOp(t, opsB, wire.OpShowChat)

	send(t, a, `{"type":"launch-chat"}`)
	waitOp(t, opsA, wire.OpLaunchChat)

	send(t, a, `{"type":"session-status","status":"Ended","reason":"NoAgentsAvailable"}`)
	waitOp(t, opsA, wire.OpShowOffline)

	v, err := eng.Query(context.Background())
	if err != nil {
		t.Fatalf("Query err=%v", err)
	}
	if len(v.Pages) != 2 {
		t.Fatalf("pages=%d want 2", len(v.Pages))
	}
	demoted, offered := 0, 0
	for _, p := range v.Pages {
		switch {
		case p.Demoted && p.UI == "offline_only":
			demoted++
		case !p.Demoted && !p.Armed && p.UI == "chat_available" && p.InSync:
			offered++
		}
	}
	if demoted != 1 || offered != 1 {
		t.Fatalf("unexpected pages %+v", v.Pages)
	}

	// the query ran after every render, so page b's commands are all sent
	drain := time.After(200 * time.Millisecond)
	for {
		select {
		case op := <-opsB:
			if op == wire.OpLaunchChat || op == wire.OpShowOffline || op == wire.OpHideChat {
				t.Fatalf("page b received %s", op)
			}
		case <-drain:
			return
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		host    string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "widget.local", "", true},
		{"same host", nil, "widget.local", "https://widget.local", true},
		{"foreign host", nil, "widget.local", "https://evil.example", false},
		{"listed", []string{"https://shop.example/"}, "widget.local", "https://shop.example", true},
		{"not listed", []string{"https://shop.example"}, "widget.local", "https://other.example", false},
		{"wildcard", []string{"*"}, "widget.local", "https://other.example", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newHub(t, Config{AllowedOrigins: tc.allowed})
			r := httptest.NewRequest(http.MethodGet, "http://"+tc.host+"/ws", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			if got := h.checkOrigin(r); got != tc.want {
				t.Fatalf("checkOrigin=%v want %v", got, tc.want)
			}
		})
	}
}

func TestHealthzAndWidget(t *testing.T) {
	h, _ := newHub(t, Config{})
	avail := true
	q := fixedQuerier{view: engine.View{UI: "chat_available", Resolved: true, Available: &avail, Source: "probe"}}
	widget := map[string]string{"button_id": "573xx"}

	srv := httptest.NewServer(Routes(h, q, widget))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz err=%v", err)
	}
	defer resp.Body.Close()

	var got map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if got["ui"] != "chat_available" || got["source"] != "probe" {
		t.Fatalf("unexpected healthz body %v", got)
	}

	resp2, err := http.Get(srv.URL + "/widget.json")
	if err != nil {
		t.Fatalf("widget err=%v", err)
	}
	defer resp2.Body.Close()
	var w map[string]string
	_ = json.NewDecoder(resp2.Body).Decode(&w)
	if w["button_id"] != "573xx" {
		t.Fatalf("unexpected widget body %v", w)
	}
}

func TestHealthzEngineUnavailable(t *testing.T) {
	h, _ := newHub(t, Config{})
	srv := httptest.NewServer(Routes(h, fixedQuerier{err: context.DeadlineExceeded}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz err=%v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestInboundEventsRateLimited(t *testing.T) {
	h, sink := newHub(t, Config{EventsPerSecond: 0.001, EventBurst: 1})
	srv := httptest.NewServer(Routes(h, fixedQuerier{}, nil))
	defer srv.Close()

	c := dial(t, srv)
	waitConnected(t, h, 1)

	_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"widget-ready"}`))
	_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"button-ready"}`))

	select {
	case ev := <-sink.events:
		if ev.Kind != wire.KindWidgetReady {
			t.Fatalf("unexpected first event %s", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("first event not forwarded")
	}

	select {
	case ev := <-sink.events:
		t.Fatalf("event beyond burst forwarded: %s", ev.Kind)
	case <-time.After(200 * time.Millisecond):
	}
}
