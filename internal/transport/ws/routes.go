// internal/transport/ws/routes.go
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tamzrod/contact-availability/internal/engine"
)

// StateQuerier reads the engine view. engine.Engine satisfies it.
type StateQuerier interface {
	Query(ctx context.Context) (engine.View, error)
}

// Routes mounts the page endpoints:
//
//	/ws           event socket
//	/healthz      engine view
//	/widget.json  static widget parameters for the page
func Routes(hub *Hub, q StateQuerier, widget any) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/ws", hub)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		v, err := q.Query(ctx)
		if err != nil {
			http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, v)
	})

	mux.HandleFunc("/widget.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, widget)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}
