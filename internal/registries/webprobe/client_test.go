package webprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refaudit/citation-verification-service/internal/registries"
)

// newTestClient creates a client configured for testing.
func newTestClient() *Client {
	cfg := Config{
		Timeout:   5 * time.Second,
		RateLimit: 100, // High rate for testing
		BurstSize: 100,
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

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		want    string
		wantErr bool
	}{
		{"https kept", "https://example.org/page", "https://example.org/page", false},
		{"http kept", "http://example.org", "http://example.org", false},
		{"scheme supplied", "example.org/report", "https://example.org/report", false},
		{"ftp rejected", "ftp://example.org/file", "", true},
		{"no host", "https://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeURL(tt.rawURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Probe(t *testing.T) {
	t.Run("reachable URL answers HEAD", func(t *testing.T) {
		var method string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
		}))
		defer server.Close()

		ok, err := newTestClient().Probe(context.Background(), server.URL)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, http.MethodHead, method)
	})

	t.Run("falls back to GET when HEAD rejected", func(t *testing.T) {
		var methods []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		}))
		defer server.Close()

		ok, err := newTestClient().Probe(context.Background(), server.URL)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
	})

	t.Run("non-200 success status reports unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		ok, err := newTestClient().Probe(context.Background(), server.URL)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing page reports unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		ok, err := newTestClient().Probe(context.Background(), server.URL+"/gone")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("dead host returns transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := newTestClient().Probe(context.Background(), server.URL)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "executing request"))
	})

	t.Run("invalid scheme rejected without request", func(t *testing.T) {
		_, err := newTestClient().Probe(context.Background(), "ftp://example.org/file")
		require.Error(t, err)
	})
}
