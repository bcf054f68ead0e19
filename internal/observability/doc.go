// Package observability provides logging, metrics, and context helpers for
// the citation verification service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for batches, citations, and registry lookups
//   - Context helpers for propagating request and batch identifiers
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stderr",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("batch_id", batchID).Msg("batch started")
//
// Add batch context to logger:
//
//	logger = observability.WithBatchContext(logger, batchID, total)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("citation_verification")
//
// Record metrics:
//
//	metrics.BatchesStarted.Inc()
//	metrics.CitationsByStatus.WithLabelValues("valid").Inc()
//	metrics.RegistryRequestsTotal.WithLabelValues("crossref").Inc()
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	reqID := observability.RequestIDFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - batch_id: Verification batch identifier
//   - line_number: 1-based citation position within the batch
//   - registry: External registry name (doi.org, crossref, openlibrary)
//   - status: Overall verification status
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
