// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package profile maintains per-user interest profiles from explicit
// engagement events.
//
// Likes, comments, and significant or completed watches are published
// as EngagementEvents on an in-process Watermill bus. The Updater
// consumes them, tokenizes the item's keywords, and accumulates a fixed
// per-action weight onto each keyword through the Sink. The scorer only
// ever reads profiles; this package is their sole writer. Decoupling
// the two through the bus keeps profile side effects out of the
// recommendation read path.
package profile
