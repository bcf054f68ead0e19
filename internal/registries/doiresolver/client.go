// Package doiresolver provides a client for the DOI redirect service.
//
// Resolution does not follow redirects: the status code of the first
// response is itself the verification signal. A 3xx means the DOI is
// registered and points somewhere; a 404 means the registry does not know
// it; other codes are interpreted by the authenticity checker.
package doiresolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/refaudit/citation-verification-service/internal/observability"
	"github.com/refaudit/citation-verification-service/internal/registries"
)

const (
	// DefaultBaseURL is the default DOI resolver endpoint.
	DefaultBaseURL = "https://doi.org"

	// DefaultRateLimit is the default rate limit in requests per second.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second
)

// shapeRe validates the 10.<registrant>/ prefix shape. A DOI with a valid
// prefix but a garbage suffix passes this check; the resolver's response
// decides its fate.
var shapeRe = regexp.MustCompile(`^10\.\d+/`)

// ValidShape reports whether doi has the 10.<registrant>/ prefix shape.
func ValidShape(doi string) bool {
	return shapeRe.MatchString(doi)
}

// Config holds configuration for the DOI resolver client.
type Config struct {
	// BaseURL is the resolver endpoint. Defaults to https://doi.org.
	BaseURL string

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
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
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

// Client resolves DOIs against the redirect service.
type Client struct {
	config     Config
	httpClient *registries.HTTPClient
}

// New creates a DOI resolver client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := registries.NewHTTPClient(registries.HTTPClientConfig{
		Timeout:         cfg.Timeout,
		RateLimit:       cfg.RateLimit,
		BurstSize:       cfg.BurstSize,
		FollowRedirects: false,
		Source:          "doi.org",
		Metrics:         cfg.Metrics,
	})

	return &Client{config: cfg, httpClient: httpClient}
}

// NewWithHTTPClient creates a DOI resolver client with a custom HTTP
// client. Useful for testing with mock servers; the supplied client should
// not follow redirects.
func NewWithHTTPClient(cfg Config, httpClient *registries.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Resolve issues a GET for the DOI and returns the raw status code of the
// first response. It returns an error only on transport failure; any HTTP
// status, including 404, is a successful resolution attempt.
func (c *Client) Resolve(ctx context.Context, doi string) (int, error) {
	resolveURL, err := c.buildResolveURL(doi)
	if err != nil {
		return 0, fmt.Errorf("building resolve URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolveURL, nil)
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

// buildResolveURL constructs the resolver URL for the given DOI.
func (c *Client) buildResolveURL(doi string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	// The DOI suffix may contain slashes and must keep them unescaped;
	// resolvers handle the path as-is.
	baseURL.Path = "/" + strings.TrimPrefix(doi, "/")
	return baseURL.String(), nil
}
