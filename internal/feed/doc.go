// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package feed implements the hybrid recommendation engine.
//
// The engine turns raw user/post/video/follow/ad records into a ranked,
// mixed-type content feed. It maintains an in-process snapshot cache
// (user×item interaction matrix, item-item cosine similarity, content
// token index, social graph), blends collaborative-filtering signals
// with content-keyword and social-graph signals, degrades gracefully
// for cold-start users, and interleaves sponsored slots under a per-day
// frequency cap.
//
// # Architecture
//
//	DataProvider  -->  Store (cf / content / social sub-states)
//	                       |
//	                    Engine.GetRecommendations
//	                       |-- CF aggregate ranking   (warm users)
//	                       |-- hybrid ranking         (cold, with profile)
//	                       |-- fallback ranking       (cold, no profile; top-up)
//	                       `-- ad selection + injection
//
// Each cache sub-state is built into a private holder and published by
// atomic pointer swap; concurrent rebuilds coalesce via singleflight.
// Sub-states version independently — the scorer combines them
// additively, so mixed freshness epochs are acceptable. All other
// components are pure functions over their inputs.
//
// The engine never returns an error to the feed caller: collaborator
// failures are logged, counted, and degrade the response to fallback or
// empty results.
package feed
