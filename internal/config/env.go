// internal/config/env.go
package config

import "os"

// ApplyEnv overrides selected fields from the environment.
// Call before Validate.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Server.Listen = envOr("WIDGETD_LISTEN", cfg.Server.Listen)
	cfg.NATS.URL = envOr("WIDGETD_NATS_URL", cfg.NATS.URL)
	cfg.NATS.Token = envOr("WIDGETD_NATS_TOKEN", cfg.NATS.Token)
	cfg.Probe.URL = envOr("WIDGETD_PROBE_URL", cfg.Probe.URL)
	cfg.Log.Level = envOr("WIDGETD_LOG_LEVEL", cfg.Log.Level)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
