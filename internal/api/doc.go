// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package api provides the thin HTTP surface over the feed engine using
// the Chi router.
//
// Endpoints:
//
//	GET  /healthz                       liveness probe
//	GET  /metrics                       Prometheus metrics
//	GET  /api/v1/feed/user/{userID}     assembled feed page (?limit=N)
//	POST /api/v1/events/engagement      publish an engagement event
//
// The API layer only parses, clamps, and serializes; all ranking
// semantics live in the feed package. /api/v1 routes are rate limited
// per client IP.
package api
