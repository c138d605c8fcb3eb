// Package observability provides logging and metrics support for the
// book recommendation service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for searches, books, recommendations, and likes
//   - Context helpers for propagating request data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("query", query).Msg("search started")
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("bookrec")
//
// Record metrics:
//
//	metrics.SearchesTotal.Inc()
//	metrics.LikesToggled.WithLabelValues("added").Inc()
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: Inbound request identifier
//   - user_id: Authenticated user identifier
//   - query: Catalog search query
//   - book_id: Internal book identifier
//   - external_id: Provider volume ID or LOCALDB placeholder
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
