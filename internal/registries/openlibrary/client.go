// Package openlibrary provides a client for the Open Library books API,
// used to verify ISBN registrations.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/observability"
	"github.com/refaudit/citation-verification-service/internal/registries"
)

const (
	// DefaultBaseURL is the default Open Library API base URL.
	DefaultBaseURL = "https://openlibrary.org"

	// DefaultRateLimit is the default rate limit in requests per second.
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// maxBodyBytes bounds response decoding against oversized payloads.
	maxBodyBytes = 5 << 20
)

// Config holds configuration for the Open Library client.
type Config struct {
	// BaseURL is the Open Library API base URL. Defaults to https://openlibrary.org.
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

// Book is the subset of an Open Library record used by verification.
type Book struct {
	Title       string      `json:"title"`
	Publishers  []Publisher `json:"publishers"`
	PublishDate string      `json:"publish_date"`
}

// Publisher is a publisher entry on an Open Library record.
type Publisher struct {
	Name string `json:"name"`
}

// Client queries the Open Library books API.
type Client struct {
	config     Config
	httpClient *registries.HTTPClient
}

// New creates an Open Library client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := registries.NewHTTPClient(registries.HTTPClientConfig{
		Timeout:         cfg.Timeout,
		RateLimit:       cfg.RateLimit,
		BurstSize:       cfg.BurstSize,
		UserAgent:       "RefAudit-CitationVerification/1.0",
		FollowRedirects: true,
		Source:          "OpenLibrary",
		Metrics:         cfg.Metrics,
	})

	return &Client{config: cfg, httpClient: httpClient}
}

// NewWithHTTPClient creates an Open Library client with a custom HTTP
// client. Useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *registries.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// BookByISBN looks up the book registered for the given ISBN. Hyphens and
// spaces in the ISBN are stripped before the lookup. Returns
// domain.NotFoundError when Open Library has no record, which the
// authenticity checker treats as evidence of fabrication.
func (c *Client) BookByISBN(ctx context.Context, isbn string) (*Book, error) {
	normalized := normalizeISBN(isbn)
	if normalized == "" {
		return nil, domain.NewValidationError("isbn", "ISBN is empty")
	}
	bibkey := "ISBN:" + normalized

	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = "/api/books"

	params := url.Values{}
	params.Set("bibkeys", bibkey)
	params.Set("format", "json")
	params.Set("jscmd", "data")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError("OpenLibrary", resp.StatusCode, string(body), nil)
	}

	// The books endpoint answers 200 with an object keyed by bibkey; an
	// unknown ISBN yields an empty object, not a 404.
	var records map[string]Book
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	book, ok := records[bibkey]
	if !ok {
		return nil, domain.NewNotFoundError("book", normalized)
	}
	return &book, nil
}

// normalizeISBN strips hyphens and spaces from an ISBN.
func normalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, isbn)
}
