// Package crossref provides a client for the CrossRef REST API, the
// authoritative metadata registry for DOI-identified works.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/observability"
	"github.com/refaudit/citation-verification-service/internal/registries"
)

const (
	// DefaultBaseURL is the default CrossRef API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit in requests per second.
	// CrossRef's polite pool expects a mailto and modest request rates.
	DefaultRateLimit = 2.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxResults is the default number of rows per search request.
	DefaultMaxResults = 5

	// maxBodyBytes bounds response decoding against oversized payloads.
	maxBodyBytes = 10 << 20
)

// Config holds configuration for the CrossRef client.
type Config struct {
	// BaseURL is the CrossRef API base URL. Defaults to https://api.crossref.org.
	BaseURL string

	// Email is the contact email for the polite pool.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the number of rows requested per search.
	MaxResults int

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
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client queries the CrossRef REST API.
type Client struct {
	config     Config
	httpClient *registries.HTTPClient
}

// New creates a CrossRef client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := "RefAudit-CitationVerification/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	httpClient := registries.NewHTTPClient(registries.HTTPClientConfig{
		Timeout:         cfg.Timeout,
		RateLimit:       cfg.RateLimit,
		BurstSize:       cfg.BurstSize,
		UserAgent:       userAgent,
		FollowRedirects: true,
		Source:          "CrossRef",
		Metrics:         cfg.Metrics,
	})

	return &Client{config: cfg, httpClient: httpClient}
}

// NewWithHTTPClient creates a CrossRef client with a custom HTTP client.
// Useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *registries.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// WorkByDOI fetches the work record registered for the given DOI.
// Returns domain.NotFoundError when CrossRef does not know the DOI.
func (c *Client) WorkByDOI(ctx context.Context, doi string) (*Work, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	// CrossRef expects the DOI as-is in the path, slashes included.
	baseURL.Path = "/works/" + doi
	c.addMailto(baseURL)

	var resp workResponse
	if err := c.getJSON(ctx, baseURL.String(), doi, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

// SearchTitles runs a free-text title search and returns candidate works.
func (c *Client) SearchTitles(ctx context.Context, query string) ([]Work, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = "/works"

	params := url.Values{}
	params.Set("query.title", query)
	params.Set("rows", strconv.Itoa(c.config.MaxResults))
	baseURL.RawQuery = params.Encode()
	c.addMailto(baseURL)

	var resp workListResponse
	if err := c.getJSON(ctx, baseURL.String(), query, &resp); err != nil {
		return nil, err
	}
	return resp.Message.Items, nil
}

// SearchJournals runs a journal-name search and returns candidate journals.
func (c *Client) SearchJournals(ctx context.Context, query string) ([]Journal, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = "/journals"

	params := url.Values{}
	params.Set("query", query)
	params.Set("rows", strconv.Itoa(c.config.MaxResults))
	baseURL.RawQuery = params.Encode()
	c.addMailto(baseURL)

	var resp journalListResponse
	if err := c.getJSON(ctx, baseURL.String(), query, &resp); err != nil {
		return nil, err
	}
	return resp.Message.Items, nil
}

// getJSON executes a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, requestURL, id string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewNotFoundError("work", id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return domain.NewExternalAPIError("CrossRef", resp.StatusCode, string(body), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// addMailto appends the polite-pool mailto parameter when configured.
func (c *Client) addMailto(u *url.URL) {
	if c.config.Email == "" {
		return
	}
	params := u.Query()
	params.Set("mailto", c.config.Email)
	u.RawQuery = params.Encode()
}
