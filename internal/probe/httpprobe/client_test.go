package httpprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tamzrod/contact-availability/internal/signal"
)

func serve(t *testing.T, status int, body string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	return c
}

func TestIsAvailableNow_Bodies(t *testing.T) {
	cases := []struct {
		name string
		body string
		want signal.Value
	}{
		{"object true", `{"available": true}`, signal.True},
		{"object false", `{"available": false}`, signal.False},
		{"bare true", `true`, signal.True},
		{"missing field", `{"online": true}`, signal.Unknown},
		{"string value", `{"available": "true"}`, signal.Unknown},
		{"null", `null`, signal.Unknown},
		{"not json", `<html>`, signal.Unknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := serve(t, http.StatusOK, c.body).IsAvailableNow(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("got %s want %s", got, c.want)
			}
		})
	}
}

func TestIsAvailableNow_HTTPErrorIsError(t *testing.T) {
	_, err := serve(t, http.StatusServiceUnavailable, "down").IsAvailableNow(context.Background())
	if err == nil {
		t.Fatalf("expected error for 503")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
