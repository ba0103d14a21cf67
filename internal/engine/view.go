// internal/engine/view.go
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/tamzrod/contact-availability/internal/ui"
)

// View is a read-only copy of the engine state, served by /healthz.
type View struct {
	UI             string     `json:"ui"` // service level, without demotion
	Resolved       bool       `json:"resolved"`
	Available      *bool      `json:"available,omitempty"`
	Source         string     `json:"source,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ProbeActive    bool       `json:"probe_active"`
	ProbeAttempts  int        `json:"probe_attempts"`
	SecondsPending int        `json:"seconds_pending"`
	Pages          []PageView `json:"pages"`
}

// PageView is the state of one page session.
type PageView struct {
	ID          string `json:"id"`
	UI          string `json:"ui"`
	InSync      bool   `json:"in_sync"`
	ButtonReady bool   `json:"button_ready"`
	Demoted     bool   `json:"demoted"`
	Armed       bool   `json:"armed"`
}

// Query runs View on the engine goroutine and waits for the result.
func (e *Engine) Query(ctx context.Context) (View, error) {
	out := make(chan View, 1)
	e.post.Post(func() { out <- e.View() })

	select {
	case v := <-out:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// View must be called on the engine goroutine.
func (e *Engine) View() View {
	st, resolved := e.resolver.Current()

	v := View{
		UI:             ui.Render(st, resolved, false).String(),
		Resolved:       resolved,
		ProbeActive:    e.scheduler.Active(),
		ProbeAttempts:  e.scheduler.Attempts(),
		SecondsPending: e.secondsPending,
		Pages:          make([]PageView, 0, len(e.sessions)),
	}
	if resolved {
		avail := st.Available
		at := st.ResolvedAt
		v.Available = &avail
		v.Source = st.Source.String()
		v.ResolvedAt = &at
	}

	for _, s := range e.sessions {
		_, inSync := s.reconciler.Applied()
		v.Pages = append(v.Pages, PageView{
			ID:          s.id,
			UI:          s.reconciler.Desired().String(),
			InSync:      inSync,
			ButtonReady: s.reconciler.IsReady(),
			Demoted:     s.monitor.Demoted(),
			Armed:       s.monitor.Armed(),
		})
	}
	sort.Slice(v.Pages, func(i, j int) bool { return v.Pages[i].ID < v.Pages[j].ID })

	return v
}
