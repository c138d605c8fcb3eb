package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the book recommendation service.
// Metrics are organized by subsystem: searches, books, recommendations, likes,
// and the metadata provider. All counters and histograms are registered via
// promauto for automatic registration with the default Prometheus registry.
type Metrics struct {
	// SearchesTotal counts catalog searches performed.
	SearchesTotal prometheus.Counter

	// SearchesFailed counts searches that failed, labeled by reason
	// (e.g., "validation", "provider").
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes end-to-end search duration in seconds.
	SearchDuration prometheus.Histogram

	// SearchResults observes the distribution of merged result counts per search.
	SearchResults prometheus.Histogram

	// SearchDuplicates counts local results overwritten by remote entries
	// during merge deduplication.
	SearchDuplicates prometheus.Counter

	// BooksCreated counts books created, labeled by origin ("user", "backfill").
	BooksCreated *prometheus.CounterVec

	// RecommendationsUpserted counts recommendation posts, labeled by
	// outcome ("created", "updated").
	RecommendationsUpserted *prometheus.CounterVec

	// RecommendationsFailed counts recommendation posts that failed.
	RecommendationsFailed prometheus.Counter

	// LikesToggled counts like toggles, labeled by result ("added", "removed").
	LikesToggled *prometheus.CounterVec

	// ProviderRequestsTotal counts HTTP requests to the metadata provider,
	// labeled by endpoint ("search", "volume").
	ProviderRequestsTotal *prometheus.CounterVec

	// ProviderRequestsFailed counts failed provider requests, labeled by
	// endpoint and error type.
	ProviderRequestsFailed *prometheus.CounterVec

	// ProviderRequestDuration observes provider request duration in seconds,
	// labeled by endpoint.
	ProviderRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of catalog searches performed",
		}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of catalog searches that failed",
		}, []string{"reason"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end catalog search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SearchResults: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Distribution of merged result counts per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		SearchDuplicates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_duplicates_total",
			Help:      "Total number of local results overwritten by remote entries during merge",
		}),
		BooksCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_created_total",
			Help:      "Total number of books created",
		}, []string{"origin"}),
		RecommendationsUpserted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_upserted_total",
			Help:      "Total number of recommendations created or updated",
		}, []string{"outcome"}),
		RecommendationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_failed_total",
			Help:      "Total number of recommendation posts that failed",
		}),
		LikesToggled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_toggled_total",
			Help:      "Total number of like toggles",
		}, []string{"result"}),
		ProviderRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of HTTP requests to the metadata provider",
		}, []string{"endpoint"}),
		ProviderRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_failed_total",
			Help:      "Total number of failed metadata provider requests",
		}, []string{"endpoint", "error_type"}),
		ProviderRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Metadata provider request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// RecordSearchCompleted records a finished catalog search.
func (m *Metrics) RecordSearchCompleted(resultCount, duplicateCount int, durationSeconds float64) {
	m.SearchesTotal.Inc()
	m.SearchDuration.Observe(durationSeconds)
	m.SearchResults.Observe(float64(resultCount))
	if duplicateCount > 0 {
		m.SearchDuplicates.Add(float64(duplicateCount))
	}
}

// RecordSearchFailed records a failed catalog search.
func (m *Metrics) RecordSearchFailed(reason string) {
	m.SearchesFailed.WithLabelValues(reason).Inc()
}

// RecordBookCreated records a book creation by origin.
func (m *Metrics) RecordBookCreated(origin string) {
	m.BooksCreated.WithLabelValues(origin).Inc()
}

// RecordRecommendationUpserted records a recommendation post by outcome.
func (m *Metrics) RecordRecommendationUpserted(created bool) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	m.RecommendationsUpserted.WithLabelValues(outcome).Inc()
}

// RecordRecommendationFailed records a failed recommendation post.
func (m *Metrics) RecordRecommendationFailed() {
	m.RecommendationsFailed.Inc()
}

// RecordLikeToggled records a like toggle by result.
func (m *Metrics) RecordLikeToggled(added bool) {
	result := "removed"
	if added {
		result = "added"
	}
	m.LikesToggled.WithLabelValues(result).Inc()
}

// RecordProviderRequest records a metadata provider request.
func (m *Metrics) RecordProviderRequest(endpoint string, durationSeconds float64) {
	m.ProviderRequestsTotal.WithLabelValues(endpoint).Inc()
	m.ProviderRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordProviderRequestFailed records a failed metadata provider request.
func (m *Metrics) RecordProviderRequestFailed(endpoint, errorType string) {
	m.ProviderRequestsFailed.WithLabelValues(endpoint, errorType).Inc()
}
