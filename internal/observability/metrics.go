package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the citation verification
// service. Metrics are organized by subsystem: batches, citations, and
// registry lookups. All counters and histograms are registered via promauto
// for automatic registration with the default Prometheus registry.
type Metrics struct {
	// BatchesStarted counts the total number of verification batches initiated.
	BatchesStarted prometheus.Counter

	// BatchesCompleted counts the total number of batches that finished.
	BatchesCompleted prometheus.Counter

	// BatchesCancelled counts the total number of batches cancelled mid-run.
	BatchesCancelled prometheus.Counter

	// BatchDuration observes the end-to-end duration of batches in seconds.
	BatchDuration prometheus.Histogram

	// CitationsProcessed counts citations processed across all batches.
	CitationsProcessed prometheus.Counter

	// CitationsSkipped counts input lines discarded as noise.
	CitationsSkipped prometheus.Counter

	// CitationsByStatus counts results by overall status.
	CitationsByStatus *prometheus.CounterVec

	// ExtractionConfidence observes the distribution of extraction confidence.
	ExtractionConfidence prometheus.Histogram

	// AuthenticityScore observes the distribution of authenticity confidence.
	AuthenticityScore prometheus.Histogram

	// ProcessingErrors counts citations that hit an unexpected internal fault.
	ProcessingErrors prometheus.Counter

	// RegistryRequestsTotal counts lookups against external registries,
	// labeled by registry.
	RegistryRequestsTotal *prometheus.CounterVec

	// RegistryRequestsFailed counts failed registry lookups, labeled by
	// registry and error type.
	RegistryRequestsFailed *prometheus.CounterVec

	// RegistryRequestDuration observes registry lookup duration in seconds.
	RegistryRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Batches
		BatchesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_started_total",
			Help:      "Total number of verification batches started",
		}),
		BatchesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_completed_total",
			Help:      "Total number of verification batches completed",
		}),
		BatchesCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_cancelled_total",
			Help:      "Total number of verification batches cancelled",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of verification batches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}),

		// Citations
		CitationsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citations_processed_total",
			Help:      "Total number of citations processed",
		}),
		CitationsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citations_skipped_total",
			Help:      "Total number of input lines skipped as noise",
		}),
		CitationsByStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citations_by_status_total",
			Help:      "Total number of citations by overall verification status",
		}, []string{"status"}),
		ExtractionConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_confidence",
			Help:      "Distribution of extraction confidence scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.2},
		}),
		AuthenticityScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "authenticity_score",
			Help:      "Distribution of authenticity confidence scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),
		ProcessingErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processing_errors_total",
			Help:      "Total number of citations that hit an internal fault",
		}),

		// Registries
		RegistryRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_requests_total",
			Help:      "Total number of requests to external registries",
		}, []string{"registry"}),
		RegistryRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_requests_failed_total",
			Help:      "Total number of failed requests to external registries",
		}, []string{"registry", "error_type"}),
		RegistryRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registry_request_duration_seconds",
			Help:      "Duration of external registry requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}, []string{"registry"}),
	}
}

// RecordBatchStarted increments the batch started counter.
func (m *Metrics) RecordBatchStarted() {
	m.BatchesStarted.Inc()
}

// RecordBatchCompleted records a completed batch and its duration.
func (m *Metrics) RecordBatchCompleted(durationSeconds float64) {
	m.BatchesCompleted.Inc()
	m.BatchDuration.Observe(durationSeconds)
}

// RecordBatchCancelled increments the batch cancelled counter.
func (m *Metrics) RecordBatchCancelled() {
	m.BatchesCancelled.Inc()
}

// RecordCitation records one processed citation with its verdict scores.
func (m *Metrics) RecordCitation(status string, extractionConfidence, authenticityScore float64) {
	m.CitationsProcessed.Inc()
	m.CitationsByStatus.WithLabelValues(status).Inc()
	m.ExtractionConfidence.Observe(extractionConfidence)
	m.AuthenticityScore.Observe(authenticityScore)
}

// RecordCitationSkipped increments the skipped-line counter.
func (m *Metrics) RecordCitationSkipped() {
	m.CitationsSkipped.Inc()
}

// RecordProcessingError increments the internal fault counter.
func (m *Metrics) RecordProcessingError() {
	m.ProcessingErrors.Inc()
}

// RecordRegistryRequest records one registry lookup and its duration.
func (m *Metrics) RecordRegistryRequest(registry string, durationSeconds float64) {
	m.RegistryRequestsTotal.WithLabelValues(registry).Inc()
	m.RegistryRequestDuration.WithLabelValues(registry).Observe(durationSeconds)
}

// RecordRegistryRequestFailed records a failed registry lookup.
func (m *Metrics) RecordRegistryRequestFailed(registry, errorType string) {
	m.RegistryRequestsFailed.WithLabelValues(registry, errorType).Inc()
}
