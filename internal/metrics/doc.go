// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package metrics provides Prometheus instrumentation for the feed
// engine: request throughput and latency by ranking source, cache
// rebuild outcomes, ad injection and impression counts, profile event
// processing, database query performance, and HTTP surface metrics.
//
// All collectors are registered with the default registry via promauto
// and exposed on /metrics by the API server. Degraded paths (fallback
// activations, rebuild failures, circuit breaker state) are first-class
// series so systemic failure is visible to operators, not hidden behind
// gracefully-empty responses.
package metrics
