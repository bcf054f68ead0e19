// Package registries provides shared HTTP plumbing for the external
// bibliographic registries (DOI resolver, CrossRef, OpenLibrary) and the
// web reachability probe.
//
// Every registry client receives an *HTTPClient as an explicit dependency;
// there is no shared global client. Each lookup returns either a payload or
// a typed failure so callers can apply their fail-open or fail-closed
// policy deterministically.
package registries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/refaudit/citation-verification-service/internal/observability"
)

// HTTPClientConfig configures the shared registry HTTP client.
type HTTPClientConfig struct {
	// Timeout is the per-request timeout. Lookups must never hang a batch.
	Timeout time.Duration

	// RateLimit is the maximum requests per second against the registry.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxRetries is the maximum number of retry attempts on 429/5xx.
	MaxRetries int

	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration

	// UserAgent is the User-Agent header sent with requests. Registries
	// throttle or block anonymous clients, so a descriptive value matters.
	UserAgent string

	// FollowRedirects controls whether redirect responses are followed.
	// The DOI resolver client disables this: the redirect status itself is
	// the verification signal.
	FollowRedirects bool

	// Source names the registry for metrics labels, e.g. "CrossRef".
	Source string

	// Metrics records per-registry request metrics. Optional; the CLI
	// runs without a metrics registry.
	Metrics *observability.Metrics
}

// HTTPClient wraps http.Client with rate limiting and bounded retries.
// It is safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	config      HTTPClientConfig
}

// NewHTTPClient creates a registry HTTP client. Zero config fields fall
// back to conservative defaults.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 5
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 5
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "RefAudit-CitationVerification/1.0"
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &HTTPClient{
		client:      client,
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		config:      cfg,
	}
}

// Do executes an HTTP request with rate limiting and retries. It waits for
// the rate limiter before each attempt, sets the User-Agent header, and
// retries on 429 (respecting Retry-After) and on 5xx responses.
//
// When redirects are disabled, 3xx responses are returned to the caller
// as-is rather than followed.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.do(req)
	c.record(start, resp, err)
	return resp, err
}

// record emits per-registry request metrics when a metrics registry and
// source label are configured.
func (c *HTTPClient) record(start time.Time, resp *http.Response, err error) {
	if c.config.Metrics == nil || c.config.Source == "" {
		return
	}
	c.config.Metrics.RecordRegistryRequest(c.config.Source, time.Since(start).Seconds())
	switch {
	case err != nil:
		c.config.Metrics.RecordRegistryRequestFailed(c.config.Source, "transport")
	case resp.StatusCode == http.StatusTooManyRequests:
		c.config.Metrics.RecordRegistryRequestFailed(c.config.Source, "rate_limited")
	case resp.StatusCode >= 500:
		c.config.Metrics.RecordRegistryRequestFailed(c.config.Source, "server_error")
	}
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.rateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt < c.config.MaxRetries {
				if err := c.waitForRetry(req.Context(), c.config.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		// Return the final response even when its status is retryable:
		// checkers map raw status codes (404, 429, 5xx) onto confidence
		// contributions and must see them.
		if !c.shouldRetry(resp.StatusCode) || attempt == c.config.MaxRetries {
			return resp, nil
		}

		retryDelay := c.retryDelay(resp)
		if resp.Body != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
		if err := c.waitForRetry(req.Context(), retryDelay); err != nil {
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("unexpected error: no response received")
}

// shouldRetry reports whether the status code warrants another attempt.
func (c *HTTPClient) shouldRetry(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= 500 && statusCode < 600
}

// retryDelay determines the wait before the next attempt, honoring the
// Retry-After header when present.
func (c *HTTPClient) retryDelay(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return c.config.RetryDelay
	}

	if seconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil {
		if seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		return c.config.RetryDelay
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return c.config.RetryDelay
}

// waitForRetry waits for the given duration, respecting context cancellation.
func (c *HTTPClient) waitForRetry(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
