// internal/probe/builder.go
package probe

import (
	"context"
	"time"

	cfg "github.com/tamzrod/contact-availability/internal/config"
	"github.com/tamzrod/contact-availability/internal/probe/httpprobe"
	"github.com/tamzrod/contact-availability/internal/signal"
)

// BuildConfig converts the probe config into a scheduler Config.
func BuildConfig(pc cfg.ProbeConfig) Config {
	delays := make([]time.Duration, 0, len(pc.DelaysMs))
	for _, ms := range pc.DelaysMs {
		delays = append(delays, time.Duration(ms)*time.Millisecond)
	}
	return Config{
		Delays:  delays,
		Timeout: time.Duration(pc.TimeoutMs) * time.Millisecond,
	}
}

// BuildCapability wires the HTTP probe. Without a URL the capability
// always answers Unknown, so the schedule runs out and fails open.
func BuildCapability(pc cfg.ProbeConfig) (Capability, error) {
	if pc.URL == "" {
		return CapabilityFunc(func(context.Context) (signal.Value, error) {
			return signal.Unknown, nil
		}), nil
	}

	c, err := httpprobe.New(httpprobe.Config{
		URL:     pc.URL,
		Timeout: time.Duration(pc.TimeoutMs) * time.Millisecond,
	}, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}
