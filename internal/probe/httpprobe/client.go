// internal/probe/httpprobe/client.go
package httpprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tamzrod/contact-availability/internal/signal"
)

// maxBody caps how much of a response is read.
const maxBody = 64 << 10

// HTTPClient is the transport seam used for probing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements probe.Capability against an availability endpoint.
//
// Accepted bodies: {"available": <bool>} or a bare JSON boolean.
// Anything else answers Unknown without an error.
type Client struct {
	url  string
	http HTTPClient
}

type Config struct {
	URL     string
	Timeout time.Duration
}

// New creates a probe client. A nil HTTPClient gets a default one.
func New(cfg Config, hc HTTPClient) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("httpprobe: url required")
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{url: cfg.URL, http: hc}, nil
}

// IsAvailableNow performs one GET.
func (c *Client) IsAvailableNow(ctx context.Context) (signal.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return signal.Unknown, fmt.Errorf("httpprobe: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return signal.Unknown, fmt.Errorf("httpprobe: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return signal.Unknown, fmt.Errorf("httpprobe: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return signal.Unknown, fmt.Errorf("httpprobe: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return decode(body), nil
}

func decode(body []byte) signal.Value {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return signal.Unknown
	}

	switch v := raw.(type) {
	case bool:
		return signal.Of(v)
	case map[string]any:
		return signal.FromAny(v["available"])
	default:
		return signal.Unknown
	}
}
