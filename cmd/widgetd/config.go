// cmd/widgetd/config.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamzrod/contact-availability/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the config file, then exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config OK: listen=%s probe_attempts=%d panel=%v nats=%v\n",
			cfg.Server.Listen, len(cfg.Probe.DelaysMs), cfg.Panel != nil, cfg.NATS.URL != "")
		return nil
	},
}

// loadConfig runs Load, env overrides, Validate and Normalize in that order.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	config.ApplyEnv(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	config.Normalize(cfg)
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
