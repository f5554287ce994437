// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import "errors"

var (
	// ErrInvalidConfig indicates a configuration value that would break
	// ranking or injection.
	ErrInvalidConfig = errors.New("feed: invalid config")

	// ErrNoDataProvider indicates the engine was constructed without a
	// data provider.
	ErrNoDataProvider = errors.New("feed: no data provider")

	// ErrCacheBuildFailure wraps a panic raised during matrix or
	// similarity construction. The affected sub-state degrades to empty.
	ErrCacheBuildFailure = errors.New("feed: cache build failure")
)
