// cmd/widgetd/run.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/contact-availability/internal/clock"
	"github.com/tamzrod/contact-availability/internal/config"
	"github.com/tamzrod/contact-availability/internal/engine"
	"github.com/tamzrod/contact-availability/internal/monitor"
	"github.com/tamzrod/contact-availability/internal/probe"
	"github.com/tamzrod/contact-availability/internal/transport/natsbus"
	"github.com/tamzrod/contact-availability/internal/transport/ws"
	"github.com/tamzrod/contact-availability/internal/ui"
	"github.com/tamzrod/contact-availability/internal/wire"
	"github.com/tamzrod/contact-availability/internal/writer"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the availability daemon",
	Run: func(cmd *cobra.Command, _ []string) {
		runDaemon(configPath)
	},
}

func runDaemon(path string) {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(path)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := newLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// --------------------
	// Build components
	// --------------------

	dec, err := wire.NewDecoder()
	if err != nil {
		log.Fatalf("wire decoder failed: %v", err)
	}

	capability, err := probe.BuildCapability(cfg.Probe)
	if err != nil {
		log.Fatalf("probe build failed: %v", err)
	}

	loop := engine.NewLoop(128)

	var panelRenderer ui.Renderer
	var statusSink engine.StatusSink

	// ---- indicator panel (optional) ----
	if cfg.Panel != nil {
		panel, sw, closePanel, err := writer.BuildPanel(*cfg.Panel)
		if err != nil {
			log.Fatalf("panel build failed (endpoint=%s): %v", cfg.Panel.Endpoint, err)
		}
		defer closePanel()

		panelRenderer = panel
		if sw != nil {
			statusSink = sw
		}
	}

	eng, err := engine.New(engineConfig(cfg), engine.Deps{
		Clock:    clock.Real(),
		Poster:   loop,
		Probe:    capability,
		Renderer: panelRenderer,
		Status:   statusSink,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("engine build failed: %v", err)
	}

	// each page connection attaches its own session to eng
	hub, err := ws.NewHub(ws.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,

		EventsPerSecond: cfg.Server.EventsPerSecond,
		EventBurst:      cfg.Server.EventBurst,
	}, dec, eng, logger.With("component", "ws"))
	if err != nil {
		log.Fatalf("websocket hub failed: %v", err)
	}
	loop.Post(func() { eng.Start(ctx) })

	// ---- NATS (optional) ----
	if cfg.NATS.URL != "" {
		sub, err := natsbus.NewSubscriber(natsbus.Config{
			URL:     cfg.NATS.URL,
			Token:   cfg.NATS.Token,
			Subject: cfg.NATS.Subject,
		}, dec, eng, logger.With("component", "nats"))
		if err != nil {
			log.Fatalf("nats subscriber failed: %v", err)
		}
		go func() { _ = sub.Run(ctx) }()
	}

	// ---- HTTP ----
	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           ws.Routes(hub, eng, cfg.Widget),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("listening", "addr", cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			cancel()
		}
	}()

	// --------------------
	// Engine loop (blocks until shutdown)
	// --------------------
	_ = loop.Run(ctx)

	// loop stopped: no concurrent access to the engine any more
	eng.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("stopped")
}

func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		Probe: probe.BuildConfig(cfg.Probe),
		Monitor: monitor.Config{
			WaitingThreshold: time.Duration(cfg.Monitor.WaitingThresholdMs) * time.Millisecond,
			BenignReasons:    cfg.Monitor.BenignReasons,
		},
	}
}
