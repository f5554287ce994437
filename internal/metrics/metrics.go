// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed request metrics
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total recommendation requests by ranking source",
		},
		[]string{"source"}, // "cf", "hybrid", "fallback", "empty"
	)

	FeedRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_request_duration_seconds",
			Help:    "End-to-end recommendation request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	FallbackActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_fallback_activations_total",
			Help: "Requests served entirely by the cold-start fallback path",
		},
	)

	// Snapshot cache metrics
	CacheRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_rebuilds_total",
			Help: "Cache sub-state rebuilds by outcome",
		},
		[]string{"sub_state", "status"}, // sub_state: "cf", "content", "social"
	)

	CacheRebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_cache_rebuild_duration_seconds",
			Help:    "Cache sub-state rebuild duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"sub_state"},
	)

	// Ad metrics
	AdsInjected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_ads_injected_total",
			Help: "Sponsored slots spliced into responses",
		},
	)

	ImpressionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_ad_impressions_recorded_total",
			Help: "Impression records created by ad injection",
		},
	)

	// Interest profile pipeline metrics
	ProfileEventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_profile_events_processed_total",
			Help: "Engagement events consumed by the profile updater",
		},
		[]string{"action", "status"},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	DBCircuitBreakerOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_db_circuit_breaker_open",
			Help: "1 when the database circuit breaker is open",
		},
	)

	// HTTP metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordFeedRequest records one recommendation request.
func RecordFeedRequest(source string, duration time.Duration) {
	FeedRequests.WithLabelValues(source).Inc()
	FeedRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFallbackActivation counts a request served by the fallback path.
func RecordFallbackActivation() {
	FallbackActivations.Inc()
}

// RecordCacheRebuild records one cache sub-state rebuild attempt.
func RecordCacheRebuild(subState, status string, duration time.Duration) {
	CacheRebuilds.WithLabelValues(subState, status).Inc()
	CacheRebuildDuration.WithLabelValues(subState).Observe(duration.Seconds())
}

// RecordAdInjection counts a spliced ad and whether its impression record
// was persisted.
func RecordAdInjection(impressionRecorded bool) {
	AdsInjected.Inc()
	if impressionRecorded {
		ImpressionsRecorded.Inc()
	}
}

// RecordProfileEvent records one consumed engagement event.
func RecordProfileEvent(action string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ProfileEventsProcessed.WithLabelValues(action, status).Inc()
}

// RecordDBQuery records one database query by operation name.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetDBCircuitBreakerOpen flips the circuit breaker gauge.
func SetDBCircuitBreakerOpen(open bool) {
	if open {
		DBCircuitBreakerOpen.Set(1)
	} else {
		DBCircuitBreakerOpen.Set(0)
	}
}

// RecordAPIRequest records one HTTP request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequests.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
