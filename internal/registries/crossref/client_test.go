package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refaudit/citation-verification-service/internal/domain"
	"github.com/refaudit/citation-verification-service/internal/registries"
)

// newTestClient creates a client configured for testing with the given server URL.
func newTestClient(serverURL string) *Client {
	cfg := Config{
		BaseURL:    serverURL,
		Email:      "test@example.com",
		Timeout:    5 * time.Second,
		RateLimit:  100, // High rate for testing
		BurstSize:  100,
		MaxResults: 5,
	}

	httpClient := registries.NewHTTPClient(registries.HTTPClientConfig{
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		BurstSize:  cfg.BurstSize,
		RetryDelay: time.Millisecond,
		UserAgent:  "TestClient/1.0",
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// sampleWork returns a sample CrossRef work record for testing.
func sampleWork() Work {
	return Work{
		DOI:            "10.1038/nature12373",
		Title:          []string{"CRISPR-Cas Systems for Editing Genomes"},
		ContainerTitle: []string{"Nature Biotechnology"},
		Volume:         "32",
		Issue:          "4",
		Page:           "347-355",
		Issued:         DateParts{DateParts: [][]int{{2014, 6, 5}}},
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client with default config", func(t *testing.T) {
		client := New(Config{})

		require.NotNil(t, client)
		assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
		assert.Equal(t, DefaultTimeout, client.config.Timeout)
		assert.Equal(t, DefaultRateLimit, client.config.RateLimit)
		assert.Equal(t, DefaultBurstSize, client.config.BurstSize)
		assert.Equal(t, DefaultMaxResults, client.config.MaxResults)
	})

	t.Run("creates client with custom config", func(t *testing.T) {
		cfg := Config{
			BaseURL:    "https://custom.api.org",
			Email:      "researcher@university.edu",
			Timeout:    60 * time.Second,
			RateLimit:  20.0,
			BurstSize:  20,
			MaxResults: 50,
		}
		client := New(cfg)

		require.NotNil(t, client)
		assert.Equal(t, "https://custom.api.org", client.config.BaseURL)
		assert.Equal(t, "researcher@university.edu", client.config.Email)
		assert.Equal(t, 60*time.Second, client.config.Timeout)
		assert.Equal(t, 20.0, client.config.RateLimit)
		assert.Equal(t, 20, client.config.BurstSize)
		assert.Equal(t, 50, client.config.MaxResults)
	})
}

func TestClient_WorkByDOI(t *testing.T) {
	t.Run("returns registered work", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works/10.1038/nature12373", r.URL.Path)
			assert.Equal(t, "test@example.com", r.URL.Query().Get("mailto"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(workResponse{Status: "ok", Message: sampleWork()})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		work, err := client.WorkByDOI(context.Background(), "10.1038/nature12373")
		require.NoError(t, err)
		require.NotNil(t, work)

		assert.Equal(t, "10.1038/nature12373", work.DOI)
		assert.Equal(t, "CRISPR-Cas Systems for Editing Genomes", work.PrimaryTitle())
		assert.Equal(t, "Nature Biotechnology", work.PrimaryContainerTitle())
		assert.Equal(t, "32", work.Volume)
		assert.Equal(t, 2014, work.Issued.Year())
	})

	t.Run("unknown DOI returns not found error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		work, err := client.WorkByDOI(context.Background(), "10.9999/nope")
		require.Error(t, err)
		assert.Nil(t, work)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("server error returns external API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("bad request"))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.WorkByDOI(context.Background(), "10.1038/nature12373")
		require.Error(t, err)

		var apiErr *domain.ExternalAPIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "CrossRef", apiErr.Source)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("malformed response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.WorkByDOI(context.Background(), "10.1038/nature12373")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding response")
	})
}

func TestClient_SearchTitles(t *testing.T) {
	t.Run("returns candidate works", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works", r.URL.Path)
			assert.Equal(t, "gene editing", r.URL.Query().Get("query.title"))
			assert.Equal(t, "5", r.URL.Query().Get("rows"))

			var resp workListResponse
			resp.Status = "ok"
			resp.Message.Items = []Work{sampleWork()}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		works, err := client.SearchTitles(context.Background(), "gene editing")
		require.NoError(t, err)
		require.Len(t, works, 1)
		assert.Equal(t, "CRISPR-Cas Systems for Editing Genomes", works[0].PrimaryTitle())
	})

	t.Run("empty result list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var resp workListResponse
			resp.Status = "ok"
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		works, err := client.SearchTitles(context.Background(), "no such title")
		require.NoError(t, err)
		assert.Empty(t, works)
	})
}

func TestClient_SearchJournals(t *testing.T) {
	t.Run("returns candidate journals", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/journals", r.URL.Path)
			assert.Equal(t, "sports medicine", r.URL.Query().Get("query"))

			var resp journalListResponse
			resp.Status = "ok"
			resp.Message.Items = []Journal{
				{Title: "Sports Medicine"},
				{Title: "Sports Medicine - Open"},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		journals, err := client.SearchJournals(context.Background(), "sports medicine")
		require.NoError(t, err)
		require.Len(t, journals, 2)
		assert.Equal(t, "Sports Medicine", journals[0].Title)
	})
}

func TestDateParts_Year(t *testing.T) {
	assert.Equal(t, 2014, DateParts{DateParts: [][]int{{2014, 6}}}.Year())
	assert.Equal(t, 0, DateParts{}.Year())
	assert.Equal(t, 0, DateParts{DateParts: [][]int{{}}}.Year())
}
