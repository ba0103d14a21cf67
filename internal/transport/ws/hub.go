// internal/transport/ws/hub.go
package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tamzrod/contact-availability/internal/engine"
	"github.com/tamzrod/contact-availability/internal/wire"
)

// EventSink owns per-page state. engine.Engine satisfies it.
// Attach happens before the first event of a connection is submitted
// and Detach after its last.
type EventSink interface {
	Attach(page string, r engine.PageRenderer)
	Detach(page string)
	Submit(ev wire.Event)
}

// Config for the hub.
type Config struct {
	AllowedOrigins []string // empty => same host only; "*" => any
	WriteTimeout   time.Duration

	// Inbound events per second and burst, per connection. Excess is dropped.
	EventsPerSecond float64
	EventBurst      int
}

// Hub accepts page connections and forwards their events to the sink.
// Each connection is attached as the renderer of its own page session.
type Hub struct {
	cfg      Config
	dec      *wire.Decoder
	sink     EventSink
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*pageConn
}

type pageConn struct {
	id      string
	ws      *websocket.Conn
	timeout time.Duration

	wmu sync.Mutex // gorilla allows one concurrent writer
}

// NewHub builds a hub. Connections are accepted via ServeHTTP.
func NewHub(cfg Config, dec *wire.Decoder, sink EventSink, logger *slog.Logger) (*Hub, error) {
	if dec == nil {
		return nil, errors.New("ws: decoder required")
	}
	if sink == nil {
		return nil, errors.New("ws: event sink required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Second
	}
	if cfg.EventsPerSecond <= 0 {
		cfg.EventsPerSecond = 20
	}
	if cfg.EventBurst <= 0 {
		cfg.EventBurst = 40
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Hub{
		cfg:    cfg,
		dec:    dec,
		sink:   sink,
		logger: logger,
		conns:  make(map[string]*pageConn),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h, nil
}

// Connected returns the number of open page connections.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// ServeHTTP upgrades the request and runs the read loop until the page leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	pc := &pageConn{id: uuid.NewString(), ws: c, timeout: h.cfg.WriteTimeout}
	h.add(pc)
	h.sink.Attach(pc.id, pc)
	defer func() {
		h.sink.Detach(pc.id)
		h.remove(pc)
	}()

	log := h.logger.With("conn", pc.id)
	log.Info("page connected", "remote", r.RemoteAddr)

	limiter := rate.NewLimiter(rate.Limit(h.cfg.EventsPerSecond), h.cfg.EventBurst)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("page read failed", "error", err)
			} else {
				log.Info("page disconnected")
			}
			return
		}

		if !limiter.Allow() {
			log.Debug("page event dropped: rate limited")
			continue
		}

		ev, err := h.dec.Decode(data)
		if err != nil {
			log.Debug("page event dropped", "error", err)
			continue
		}
		ev.Page = pc.id
		h.sink.Submit(ev)
	}
}

func (h *Hub) add(pc *pageConn) {
	h.mu.Lock()
	h.conns[pc.id] = pc
	h.mu.Unlock()
}

func (h *Hub) remove(pc *pageConn) {
	_ = pc.ws.Close()
	h.mu.Lock()
	delete(h.conns, pc.id)
	h.mu.Unlock()
}

// ---- engine.PageRenderer ----

func (pc *pageConn) ShowChat() error    { return pc.send(wire.OpShowChat) }
func (pc *pageConn) HideChat() error    { return pc.send(wire.OpHideChat) }
func (pc *pageConn) ShowOffline() error { return pc.send(wire.OpShowOffline) }
func (pc *pageConn) HideOffline() error { return pc.send(wire.OpHideOffline) }
func (pc *pageConn) LaunchChat() error  { return pc.send(wire.OpLaunchChat) }

func (pc *pageConn) send(op wire.Op) error {
	pc.wmu.Lock()
	defer pc.wmu.Unlock()

	_ = pc.ws.SetWriteDeadline(time.Now().Add(pc.timeout))
	return pc.ws.WriteMessage(websocket.TextMessage, wire.EncodeCommand(op))
}

// ---- origin ----

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(h.cfg.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}

	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	return false
}
