// Package webprobe checks whether a cited URL is reachable. Website
// citations carry no registry identifier, so an HTTP probe of the URL
// itself is the only authenticity signal available.
package webprobe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/refaudit/citation-verification-service/internal/observability"
	"github.com/refaudit/citation-verification-service/internal/registries"
)

const (
	// DefaultRateLimit is the default rate limit in requests per second.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration for the web probe client.
type Config struct {
	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Metrics records per-request registry metrics. Optional.
	Metrics *observability.Metrics
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Client probes URLs for reachability.
type Client struct {
	config     Config
	httpClient *registries.HTTPClient
}

// New creates a web probe client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := registries.NewHTTPClient(registries.HTTPClientConfig{
		Timeout:         cfg.Timeout,
		RateLimit:       cfg.RateLimit,
		BurstSize:       cfg.BurstSize,
		UserAgent:       "RefAudit-CitationVerification/1.0",
		FollowRedirects: true,
		Source:          "web",
		Metrics:         cfg.Metrics,
	})

	return &Client{config: cfg, httpClient: httpClient}
}

// NewWithHTTPClient creates a web probe client with a custom HTTP client.
// Useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *registries.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Probe reports whether the URL answers with 200 OK after redirects. It
// issues a HEAD request first and falls back to GET when the server rejects
// HEAD with 405 or 501. A transport failure is returned as an error so the
// caller can distinguish "unreachable" from "answered badly".
func (c *Client) Probe(ctx context.Context, rawURL string) (bool, error) {
	probeURL, err := normalizeURL(rawURL)
	if err != nil {
		return false, err
	}

	status, err := c.request(ctx, http.MethodHead, probeURL)
	if err != nil {
		return false, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = c.request(ctx, http.MethodGet, probeURL)
		if err != nil {
			return false, err
		}
	}

	return status == http.StatusOK, nil
}

// request executes a single probe request and returns the status code.
func (c *Client) request(ctx context.Context, method, probeURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, probeURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	return resp.StatusCode, nil
}

// normalizeURL validates the URL and supplies an https scheme when the
// citation omitted one.
func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	if u.Scheme == "" {
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return "", fmt.Errorf("parsing URL: %w", err)
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", rawURL)
	}
	return u.String(), nil
}
