package probe

import (
	"context"
	"testing"
	"time"

	cfg "github.com/tamzrod/contact-availability/internal/config"
	"github.com/tamzrod/contact-availability/internal/signal"
)

func TestBuildConfig(t *testing.T) {
	c := BuildConfig(cfg.ProbeConfig{TimeoutMs: 500, DelaysMs: []int{1000, 3000}})

	if c.Timeout != 500*time.Millisecond {
		t.Fatalf("timeout=%v", c.Timeout)
	}
	if len(c.Delays) != 2 || c.Delays[1] != 3*time.Second {
		t.Fatalf("delays=%v", c.Delays)
	}
}

func TestBuildCapability_NoURLAnswersUnknown(t *testing.T) {
	c, err := BuildCapability(cfg.ProbeConfig{})
	if err != nil {
		t.Fatalf("BuildCapability err=%v", err)
	}
	v, err := c.IsAvailableNow(context.Background())
	if err != nil || v != signal.Unknown {
		t.Fatalf("expected unknown/nil, got %s/%v", v, err)
	}
}
