// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tamzrod/contact-availability/internal/clock"
	"github.com/tamzrod/contact-availability/internal/monitor"
	"github.com/tamzrod/contact-availability/internal/probe"
	"github.com/tamzrod/contact-availability/internal/resolver"
	"github.com/tamzrod/contact-availability/internal/signal"
	"github.com/tamzrod/contact-availability/internal/status"
	"github.com/tamzrod/contact-availability/internal/ui"
	"github.com/tamzrod/contact-availability/internal/wire"
)

const (
	tickInterval = time.Second

	// waitingGrace puts the recheck strictly past the waiting threshold.
	waitingGrace = time.Second
)

// StatusSink receives every status snapshot. writer.StatusWriter satisfies it.
type StatusSink interface {
	WriteStatus(s status.Snapshot) error
}

// PageRenderer drives the affordances of one page.
type PageRenderer interface {
	ui.Renderer
	ui.Launcher
}

// Config holds the tunables of the owned components.
type Config struct {
	Probe   probe.Config
	Monitor monitor.Config
}

// Deps are the collaborators injected into the engine.
type Deps struct {
	Clock  clock.Clock
	Poster Poster
	Probe  probe.Capability

	// Renderer shows service-level availability (no demotion), e.g. the
	// indicator panel. Optional.
	Renderer ui.Renderer

	Status StatusSink // optional
	Logger *slog.Logger
}

// Engine owns the service-wide resolver and probe scheduler, and one
// session (monitor + reconciler) per attached page. Every method except
// Submit, Attach, Detach and Query must run on the Poster's goroutine.
type Engine struct {
	clock      clock.Clock
	post       Poster
	status     StatusSink
	logger     *slog.Logger
	monitorCfg monitor.Config

	resolver  *resolver.Resolver
	scheduler *probe.Scheduler
	panel     *ui.Reconciler // nil without Deps.Renderer
	sessions  map[string]*session

	ctx            context.Context
	started        bool
	secondsPending int
	tickTimer      clock.Timer
}

// session is the page-lifetime state of one visitor.
type session struct {
	id         string
	monitor    *monitor.Monitor
	reconciler *ui.Reconciler
	waitTimer  clock.Timer
	waitGen    int
}

// New wires the components together. Nothing runs until Start.
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Poster == nil {
		return nil, errors.New("engine: poster required")
	}
	if deps.Probe == nil {
		return nil, errors.New("engine: probe capability required")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		clock:      deps.Clock,
		post:       deps.Poster,
		status:     deps.Status,
		logger:     logger,
		monitorCfg: cfg.Monitor,
		sessions:   make(map[string]*session),
		ctx:        context.Background(),
	}

	// resolution is final, so pending time stops counting here
	e.resolver = resolver.New(logger.With("component", "resolver"), func(resolver.State) { e.stopTick() })

	if deps.Renderer != nil {
		e.panel = ui.NewReconciler(deps.Renderer, logger.With("component", "panel"))
		e.panel.Ready()
	}

	sched, err := probe.New(cfg.Probe, deps.Probe, deps.Clock, probe.Hooks{
		Resolved: e.resolver.Resolved,
		Emit: func(sig signal.Signal) {
			e.resolver.Accept(sig)
			e.render()
		},
		Post:    deps.Poster.Post,
		Observe: func(probe.Attempt) { e.publishStatus() },
	}, logger.With("component", "probe"))
	if err != nil {
		return nil, err
	}
	e.scheduler = sched

	return e, nil
}

// Start begins the 1 Hz pending ticker and writes the initial status block.
// The probe chain starts on widget-ready, not here.
func (e *Engine) Start(ctx context.Context) {
	if e.started {
		return
	}
	e.started = true
	e.ctx = ctx

	e.publishStatus()
	if !e.resolver.Resolved() {
		e.scheduleTick()
	}
}

// Stop cancels every pending timer.
func (e *Engine) Stop() {
	e.scheduler.Stop()
	e.stopTick()
	for _, s := range e.sessions {
		e.stopWaitTimer(s)
	}
}

// ---- page sessions ----

// Attach opens a session for page. Safe from any goroutine.
func (e *Engine) Attach(page string, r PageRenderer) {
	e.post.Post(func() { e.attach(page, r) })
}

// Detach ends the session of page. Safe from any goroutine.
func (e *Engine) Detach(page string) {
	e.post.Post(func() { e.detach(page) })
}

func (e *Engine) attach(page string, r PageRenderer) {
	e.detach(page)

	log := e.logger.With("page", page)
	s := &session{
		id:         page,
		monitor:    monitor.New(e.monitorCfg, log.With("component", "monitor"), nil),
		reconciler: ui.NewReconciler(r, log.With("component", "ui")),
	}
	e.sessions[page] = s
	e.renderSession(s)

	log.Debug("page session opened", "pages", len(e.sessions))
}

func (e *Engine) detach(page string) {
	s, ok := e.sessions[page]
	if !ok {
		return
	}
	e.stopWaitTimer(s)
	delete(e.sessions, page)
	e.publishStatus()

	e.logger.Debug("page session closed", "page", page, "pages", len(e.sessions))
}

// ---- events ----

// Submit posts ev onto the engine goroutine. Safe from any goroutine.
func (e *Engine) Submit(ev wire.Event) {
	e.post.Post(func() { e.Handle(ev) })
}

// Handle applies one event and re-renders.
// Availability events are service-wide; the rest belong to ev.Page.
func (e *Engine) Handle(ev wire.Event) {
	switch ev.Kind {
	case wire.KindPeriodSnapshot:
		e.resolver.Accept(signal.New(ev.Value, signal.SourceGenericSnapshot, e.stamp(ev)))

	case wire.KindPeriodStarted:
		e.resolver.Accept(signal.New(signal.True, signal.SourcePeriodStarted, e.stamp(ev)))

	case wire.KindPeriodEnded:
		e.resolver.Accept(signal.New(signal.False, signal.SourcePeriodEnded, e.stamp(ev)))

	case wire.KindWidgetReady:
		e.scheduler.Start(e.ctx)

	case wire.KindButtonReady, wire.KindSessionStatus, wire.KindConversationStarted, wire.KindLaunchChat:
		s, ok := e.sessions[ev.Page]
		if !ok {
			e.logger.Debug("page event without session", "type", string(ev.Kind), "page", ev.Page)
			return
		}
		e.handlePage(s, ev)

	default:
		e.logger.Debug("event ignored", "type", string(ev.Kind))
		return
	}

	e.render()
}

func (e *Engine) handlePage(s *session, ev wire.Event) {
	switch ev.Kind {
	case wire.KindButtonReady:
		s.reconciler.Ready()

	case wire.KindSessionStatus:
		if ev.Session == nil {
			return
		}
		// The waiting threshold is measured on the engine clock only: page
		// timestamps are in another clock domain.
		sig := *ev.Session
		sig.ObservedAt = e.clock.Now()
		s.monitor.Observe(sig)
		e.armWaitTimer(s)

	case wire.KindConversationStarted:
		s.monitor.ConversationStarted()
		e.stopWaitTimer(s)

	case wire.KindLaunchChat:
		e.launch(s)
	}
}

// stamp keeps the sender's time for availability signals; it only feeds
// ResolvedAt.
func (e *Engine) stamp(ev wire.Event) time.Time {
	if ev.At.IsZero() {
		return e.clock.Now()
	}
	return ev.At
}

// launch forwards a visitor click to that visitor's page only, and only
// while chat is offered there.
func (e *Engine) launch(s *session) {
	if s.reconciler.Desired() != ui.ChatAvailable {
		e.logger.Info("launch ignored: chat not offered", "page", s.id, "ui", s.reconciler.Desired().String())
		return
	}

	s.monitor.Arm()
	e.stopWaitTimer(s)

	if err := s.reconciler.Launch(); err != nil {
		e.logger.Warn("launch chat failed", "page", s.id, "error", err)
	}
}

// ---- rendering ----

func (e *Engine) render() {
	st, resolved := e.resolver.Current()
	if e.panel != nil {
		e.panel.Apply(ui.Render(st, resolved, false))
	}
	for _, s := range e.sessions {
		s.reconciler.Apply(ui.Render(st, resolved, s.monitor.Demoted()))
	}
	e.publishStatus()
}

func (e *Engine) renderSession(s *session) {
	st, resolved := e.resolver.Current()
	s.reconciler.Apply(ui.Render(st, resolved, s.monitor.Demoted()))
	e.publishStatus()
}

func (e *Engine) demotedPages() int {
	n := 0
	for _, s := range e.sessions {
		if s.monitor.Demoted() {
			n++
		}
	}
	return n
}

func (e *Engine) publishStatus() {
	if e.status == nil {
		return
	}

	st, resolved := e.resolver.Current()
	snap := status.From(
		ui.Render(st, resolved, false),
		st,
		resolved,
		e.demotedPages(),
		e.secondsPending,
		e.scheduler.Attempts(),
	)
	if err := e.status.WriteStatus(snap); err != nil {
		e.logger.Warn("status write failed", "error", err)
	}
}

// ---- timers ----

func (e *Engine) scheduleTick() {
	e.tickTimer = e.clock.AfterFunc(tickInterval, func() {
		e.post.Post(e.tick)
	})
}

// tick counts seconds spent unresolved. It stops re-arming once resolved.
func (e *Engine) tick() {
	if e.tickTimer == nil {
		return
	}
	e.tickTimer = nil
	if e.ctx.Err() != nil || e.resolver.Resolved() {
		return
	}

	e.secondsPending++
	e.publishStatus()
	e.scheduleTick()
}

func (e *Engine) stopTick() {
	if e.tickTimer != nil {
		e.tickTimer.Stop()
		e.tickTimer = nil
	}
}

func (e *Engine) armWaitTimer(s *session) {
	e.stopWaitTimer(s)

	deadline, ok := s.monitor.WaitingDeadline()
	if !ok || s.monitor.Demoted() {
		return
	}

	gen := s.waitGen
	wait := deadline.Add(waitingGrace).Sub(e.clock.Now())
	s.waitTimer = e.clock.AfterFunc(wait, func() {
		e.post.Post(func() {
			if gen != s.waitGen || e.sessions[s.id] != s {
				return
			}
			s.waitTimer = nil
			if e.ctx.Err() != nil {
				return
			}
			s.monitor.Recheck(e.clock.Now())
			e.renderSession(s)
		})
	})
}

func (e *Engine) stopWaitTimer(s *session) {
	s.waitGen++
	if s.waitTimer != nil {
		s.waitTimer.Stop()
		s.waitTimer = nil
	}
}
