// Package httpds implements a small HTTP object source for the ingestion
// pipeline. Objects are addressed as {BaseURL}/{name} and fetched with a
// single GET per call.
//
// Design goals:
//
//   - Keep a tiny, explicit API (Do, Get, Fetch).
//   - Fixed per-request timeout, no automatic retry.
//   - Map "missing object" statuses onto datasource.ErrNotFound so callers
//     can tell "no data this month" from a real failure.
//   - Optional client-side rate limit to stay polite with the remote host.
//   - Be easy to test by injecting a custom RoundTripper.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tripetl/internal/datasource"
)

// Config configures the HTTP datasource client.
//
// Zero values are given sensible defaults:
//   - Timeout:          30s
//   - NotFoundStatuses: 403, 404, 410
//   - RequestsPerSecond: unlimited
type Config struct {
	// BaseURL is the prefix every object name is appended to.
	BaseURL string

	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// NotFoundStatuses are response codes meaning "object does not exist".
	// CloudFront in front of S3 answers 403 for missing keys, hence the
	// default includes it.
	NotFoundStatuses []int

	// RequestsPerSecond caps the request rate across all goroutines sharing
	// the client. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter burst size; defaults to 1 when limiting is on.
	Burst int

	// InsecureSkipVerify controls whether TLS certificate verification is
	// disabled. This is useful for talking to servers with self-signed or
	// otherwise invalid certificates, but should be used with care.
	InsecureSkipVerify bool

	// BaseHeaders are headers added to every request. Callers can supply
	// additional headers per request; those take precedence.
	BaseHeaders http.Header

	// Transport is an optional custom RoundTripper. When nil, a default
	// *http.Transport is constructed based on the TLS settings.
	Transport http.RoundTripper
}

// DefaultNotFoundStatuses is used when Config.NotFoundStatuses is empty.
var DefaultNotFoundStatuses = []int{http.StatusForbidden, http.StatusNotFound, http.StatusGone}

// StatusError is returned for non-2xx responses. It wraps
// datasource.ErrNotFound when the status is one of the not-found codes.
type StatusError struct {
	URL      string
	Code     int
	notFound bool
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpds: GET %s: status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Unwrap lets errors.Is(err, datasource.ErrNotFound) match missing objects.
func (e *StatusError) Unwrap() error {
	if e.notFound {
		return datasource.ErrNotFound
	}
	return nil
}

// Denied reports whether the response was 403. Stores behind CloudFront
// answer 403 for missing keys, so it may also be a real permission failure.
func (e *StatusError) Denied() bool { return e.Code == http.StatusForbidden }

// Client wraps an http.Client with the not-found mapping and rate limiting.
// It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	notFound    []int
	limiter     *rate.Limiter
	baseHeaders http.Header
}

var _ datasource.Source = (*Client)(nil)

// NewClient constructs a Client from Config, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if len(cfg.NotFoundStatuses) == 0 {
		cfg.NotFoundStatuses = DefaultNotFoundStatuses
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
			},
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	hdr := http.Header{}
	for k, vs := range cfg.BaseHeaders {
		for _, v := range vs {
			hdr.Add(k, v)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		notFound:    slices.Clone(cfg.NotFoundStatuses),
		limiter:     limiter,
		baseHeaders: hdr,
	}
}

// Do sends a single HTTP request. Non-2xx responses are returned as-is; the
// caller must close the body.
func (c *Client) Do(
	ctx context.Context,
	method, url string,
	headers http.Header,
) (*http.Response, error) {
	if method == "" {
		return nil, fmt.Errorf("httpds: method must not be empty")
	}
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("httpds: rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: build request: %w", err)
	}

	// Apply base headers, then per-request headers (which override).
	for k, vs := range c.baseHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpds: %s %s: %w", method, url, err)
	}
	return resp, nil
}

// Get is a convenience wrapper over Do for HTTP GET. The caller must close
// the response body.
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, headers)
}

// Locate returns the absolute URL of the named object.
func (c *Client) Locate(name string) string {
	return c.baseURL + "/" + strings.TrimLeft(name, "/")
}

// Fetch downloads the named object. A not-found status yields a
// *StatusError wrapping datasource.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := c.Locate(name)
	resp, err := c.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &StatusError{
			URL:      url,
			Code:     resp.StatusCode,
			notFound: slices.Contains(c.notFound, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpds: read body %s: %w", url, err)
	}
	return body, nil
}
