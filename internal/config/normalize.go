// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultListen             = ":8080"
	DefaultProbeTimeoutMs     = 2000
	DefaultWaitingThresholdMs = 60000
	DefaultNATSSubject        = "contact.availability"
	DefaultPanelTimeoutMs     = 1000
	DefaultWriteTimeoutMs     = 2000
	DefaultEventsPerSecond    = 20
	DefaultEventBurst         = 40
)

// DefaultProbeDelaysMs is the cumulative probe schedule.
var DefaultProbeDelaysMs = []int{1000, 3000, 6000, 10000, 15000}

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}
	if cfg.Server.WriteTimeoutMs == 0 {
		cfg.Server.WriteTimeoutMs = DefaultWriteTimeoutMs
	}
	if cfg.Server.EventsPerSecond == 0 {
		cfg.Server.EventsPerSecond = DefaultEventsPerSecond
	}
	if cfg.Server.EventBurst == 0 {
		cfg.Server.EventBurst = DefaultEventBurst
	}

	if cfg.Probe.TimeoutMs == 0 {
		cfg.Probe.TimeoutMs = DefaultProbeTimeoutMs
	}
	if len(cfg.Probe.DelaysMs) == 0 {
		cfg.Probe.DelaysMs = append([]int(nil), DefaultProbeDelaysMs...)
	}

	if cfg.Monitor.WaitingThresholdMs == 0 {
		cfg.Monitor.WaitingThresholdMs = DefaultWaitingThresholdMs
	}

	if cfg.NATS.URL != "" && cfg.NATS.Subject == "" {
		cfg.NATS.Subject = DefaultNATSSubject
	}

	if cfg.Panel != nil && cfg.Panel.TimeoutMs == 0 {
		cfg.Panel.TimeoutMs = DefaultPanelTimeoutMs
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
