// internal/datasource/httpds/client_test.go
//
// These tests exercise the behavior of the HTTP object source, focusing on:
//   - Default configuration and TLS settings.
//   - Single-attempt semantics (no hidden retries).
//   - Not-found status mapping.
//   - Use of custom transports and headers.
//   - Rate limiting and context cancellation.

package httpds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tripetl/internal/datasource"
)

// TestNewClient_Defaults verifies that NewClient applies sensible defaults
// and correctly sets TLS behavior when no custom Transport is supplied.
func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true, BaseURL: "https://example.test/trip-data/"})

	// Ensure a timeout is set; a zero timeout would hang a stuck fetch forever.
	if c.httpClient.Timeout != 30*time.Second {
		t.Fatalf("expected 30s default timeout, got %v", c.httpClient.Timeout)
	}
	if c.limiter != nil {
		t.Fatalf("expected no limiter by default")
	}
	if len(c.notFound) != 3 {
		t.Fatalf("expected default not-found statuses, got %v", c.notFound)
	}

	transport, ok := c.httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", c.httpClient.Transport)
	}
	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify=true when configured")
	}

	if got, want := c.Locate("yellow_tripdata_2024-01.parquet"),
		"https://example.test/trip-data/yellow_tripdata_2024-01.parquet"; got != want {
		t.Fatalf("Locate = %q, want %q", got, want)
	}
}

// TestFetch_Success verifies the body is returned and the request path is
// built from the base URL and the object name.
func TestFetch_Success(t *testing.T) {
	t.Parallel()

	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_, _ = w.Write([]byte("PAR1"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/trip-data", Timeout: 2 * time.Second})
	body, err := c.Fetch(context.Background(), "green_tripdata_2024-02.parquet")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(body) != "PAR1" {
		t.Fatalf("body = %q", body)
	}
	if got := <-paths; got != "/trip-data/green_tripdata_2024-02.parquet" {
		t.Fatalf("path = %q", got)
	}
}

// TestFetch_StatusMapping checks which statuses mean "missing" and that each
// call is exactly one request, even for 5xx.
func TestFetch_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status       int
		wantNotFound bool
	}{
		{http.StatusNotFound, true},
		{http.StatusForbidden, true},
		{http.StatusGone, true},
		{http.StatusInternalServerError, false},
		{http.StatusServiceUnavailable, false},
		{http.StatusTooManyRequests, false},
		{http.StatusBadRequest, false},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()

			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL})
			_, err := c.Fetch(context.Background(), "x.parquet")
			if err == nil {
				t.Fatalf("expected error for status %d", tc.status)
			}

			var se *StatusError
			if !errors.As(err, &se) || se.Code != tc.status {
				t.Fatalf("expected *StatusError with code %d, got %v", tc.status, err)
			}
			if got := errors.Is(err, datasource.ErrNotFound); got != tc.wantNotFound {
				t.Fatalf("errors.Is(ErrNotFound) = %v, want %v", got, tc.wantNotFound)
			}
			if got, want := datasource.Denied(err), tc.status == http.StatusForbidden; got != want {
				t.Fatalf("Denied = %v, want %v", got, want)
			}
			if got := atomic.LoadInt32(&hits); got != 1 {
				t.Fatalf("expected exactly 1 request, got %d", got)
			}
		})
	}
}

// TestFetch_CustomNotFound verifies an explicit status list replaces the
// defaults.
func TestFetch_CustomNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, NotFoundStatuses: []int{http.StatusNotFound}})
	_, err := c.Fetch(context.Background(), "x.parquet")
	if errors.Is(err, datasource.ErrNotFound) {
		t.Fatalf("403 must not be not-found when only 404 is configured")
	}
}

// TestDo_HeadersAndCustomTransport verifies base headers are sent, per-request
// headers override them, and a custom transport is honored.
func TestDo_HeadersAndCustomTransport(t *testing.T) {
	t.Parallel()

	var seen http.Header
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Clone()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       http.NoBody,
			Header:     http.Header{},
			Request:    r,
		}, nil
	})

	c := NewClient(Config{
		Transport:   rt,
		BaseHeaders: http.Header{"User-Agent": {"tripetl/test"}, "X-Base": {"1"}},
	})
	resp, err := c.Get(context.Background(), "http://unused.test/a", http.Header{"X-Base": {"2"}})
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	resp.Body.Close()

	if got := seen.Get("User-Agent"); got != "tripetl/test" {
		t.Fatalf("User-Agent = %q", got)
	}
	if got := seen.Get("X-Base"); got != "2" {
		t.Fatalf("X-Base = %q, want per-request override", got)
	}
}

// TestDo_Validation covers the argument checks.
func TestDo_Validation(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	if _, err := c.Do(context.Background(), "", "http://x", nil); err == nil {
		t.Fatalf("expected error for empty method")
	}
	if _, err := c.Do(context.Background(), http.MethodGet, "", nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

// TestDo_RateLimitRespectsContext verifies that a canceled context aborts the
// limiter wait instead of blocking.
func TestDo_RateLimitRespectsContext(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{RequestsPerSecond: 0.001, Burst: 1, Transport: roundTripFunc(
		func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
		})})

	// First request consumes the single burst token.
	resp, err := c.Get(context.Background(), "http://unused.test/a", nil)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Get(ctx, "http://unused.test/b", nil); err == nil {
		t.Fatalf("expected limiter wait to fail on short deadline")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
