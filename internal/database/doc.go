// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package database provides the embedded DuckDB store backing the feed
// engine's data provider contracts: interactions, posts, videos, follow
// edges, ads, impression records, and interest profiles.
//
// FeedProvider is the single implementation of feed.DataProvider. All
// queries run through a shared gobreaker circuit breaker so a failing
// store degrades the engine quickly rather than piling up slow queries;
// breaker transitions are logged and exported as a gauge.
//
// The schema is bootstrapped idempotently on startup. Durability
// guarantees beyond what DuckDB provides are out of scope — the engine's
// snapshot cache is the read path, and each process owns its own cache.
package database
