// Package http provides the rate-limited, retrying HTTP client used for
// caption downloads.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ytscribe/ratelimit"
	"ytscribe/retry"
)

// Config holds HTTP client configuration.
type Config struct {
	// Timeout for individual HTTP requests.
	Timeout time.Duration

	// Retry policy applied to transient failures.
	Retry retry.Policy

	// UserAgent for outgoing requests.
	UserAgent string

	// Transport configures the underlying connection pool.
	Transport TransportConfig
}

// TransportConfig configures connection pooling.
type TransportConfig struct {
	// MaxIdleConns is the maximum number of idle connections across all hosts.
	MaxIdleConns int
	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int
	// IdleConnTimeout is how long an idle connection stays open.
	IdleConnTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   10 * time.Second,
		Retry:     retry.DefaultPolicy(),
		UserAgent: "ytscribe/1.0",
		Transport: TransportConfig{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Client wraps net/http with the shared rate limiter and retry policy.
// Every attempt, including retries, acquires a permit first.
type Client struct {
	base    *http.Client
	config  *Config
	limiter *ratelimit.Limiter
}

// New creates a client. limiter may be nil, in which case calls are not
// rate limited (used in tests).
func New(cfg *Config, limiter *ratelimit.Limiter) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.Transport.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
	}

	return &Client{
		base: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config:  cfg,
		limiter: limiter,
	}
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get performs a GET request with rate limiting and retries.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// Do performs a request. Transient failures (network errors, 5xx, 429/503)
// are retried per the configured policy; other 4xx responses fail
// immediately as permanent errors.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string) (*Response, error) {
	var out *Response

	err := retry.Do(ctx, c.config.Retry, c.isRetryable, func(ctx context.Context) error {
		if err := c.limiter.Acquire(ctx); err != nil {
			// Gate failures are not the server's fault; surface as-is
			// and never retry past the acquire budget.
			return retry.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.base.Do(req)
		if err != nil {
			return fmt.Errorf("http request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable {
			return &RateLimitError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return &StatusError{StatusCode: resp.StatusCode, Body: body}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		out = &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isRetryable classifies request errors for the retry loop.
func (c *Client) isRetryable(err error) bool {
	if !retry.IsTransient(err) {
		return false
	}

	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}

	// Network-level errors.
	return true
}

// parseRetryAfter extracts the Retry-After header as a duration.
func parseRetryAfter(header http.Header) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c.base != nil {
		c.base.CloseIdleConnections()
	}
	return nil
}
