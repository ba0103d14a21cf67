// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxProbeAttempts bounds the probe schedule.
const MaxProbeAttempts = 10

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// PROBE
	// ------------------------------------------------------------

	p := cfg.Probe

	if p.URL != "" {
		if err := httpURL("probe.url", p.URL); err != nil {
			return err
		}
	}
	if p.TimeoutMs < 0 {
		return fmt.Errorf("probe.timeout_ms must be >= 0")
	}
	if len(p.DelaysMs) > MaxProbeAttempts {
		return fmt.Errorf("probe.delays_ms: at most %d attempts allowed, got %d", MaxProbeAttempts, len(p.DelaysMs))
	}
	for i, d := range p.DelaysMs {
		if d <= 0 {
			return fmt.Errorf("probe.delays_ms[%d]: must be > 0", i)
		}
		// delays are cumulative offsets, not gaps
		if i > 0 && d <= p.DelaysMs[i-1] {
			return fmt.Errorf("probe.delays_ms[%d]: %d must be greater than previous %d", i, d, p.DelaysMs[i-1])
		}
	}

	// ------------------------------------------------------------
	// MONITOR
	// ------------------------------------------------------------

	if cfg.Monitor.WaitingThresholdMs < 0 {
		return fmt.Errorf("monitor.waiting_threshold_ms must be >= 0")
	}
	for i, r := range cfg.Monitor.BenignReasons {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("monitor.benign_reasons[%d]: empty reason", i)
		}
	}

	// ------------------------------------------------------------
	// SERVER
	// ------------------------------------------------------------

	if cfg.Server.WriteTimeoutMs < 0 {
		return fmt.Errorf("server.write_timeout_ms must be >= 0")
	}
	if cfg.Server.EventsPerSecond < 0 || cfg.Server.EventBurst < 0 {
		return fmt.Errorf("server.events_per_second and server.event_burst must be >= 0")
	}
	for i, o := range cfg.Server.AllowedOrigins {
		if o == "*" {
			continue
		}
		if err := httpURL(fmt.Sprintf("server.allowed_origins[%d]", i), o); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// NATS (opt-in)
	// ------------------------------------------------------------

	if cfg.NATS.URL != "" {
		if strings.ContainsAny(cfg.NATS.Subject, " \t\r\n") {
			return fmt.Errorf("nats.subject %q must not contain whitespace", cfg.NATS.Subject)
		}
		if strings.HasSuffix(cfg.NATS.Subject, ".") {
			return fmt.Errorf("nats.subject %q must not end with '.'", cfg.NATS.Subject)
		}
	}

	// ------------------------------------------------------------
	// PANEL (opt-in)
	// ------------------------------------------------------------

	if pc := cfg.Panel; pc != nil {
		if pc.Endpoint == "" {
			return fmt.Errorf("panel.endpoint is required when panel is configured")
		}
		if pc.ChatCoil == pc.OfflineCoil {
			return fmt.Errorf("panel: chat_coil and offline_coil must differ (both %d)", pc.ChatCoil)
		}
		if pc.TimeoutMs < 0 {
			return fmt.Errorf("panel.timeout_ms must be >= 0")
		}
		if pc.StatusAddress != nil && int(*pc.StatusAddress)+statusBlockSlots > 65536 {
			return fmt.Errorf("panel.status_address %d: status block does not fit in register space", *pc.StatusAddress)
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: expected debug, info, warn or error", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q: expected text or json", cfg.Log.Format)
	}

	return nil
}

// statusBlockSlots mirrors status.SlotsPerBlock; config must not import runtime packages.
const statusBlockSlots = 12

func httpURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https, got %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: host required", field)
	}
	return nil
}
