// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package main

import (
	"github.com/rs/zerolog"

	"github.com/driftworks/feedengine/internal/config"
	"github.com/driftworks/feedengine/internal/feed"
)

// buildEngine assembles the feed configuration from app-level knobs and
// constructs the engine. Scoring weights keep their canonical defaults;
// the operational knobs (seed, limits, ad cadence) come from config.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildEngine(cfg *config.Config, provider feed.DataProvider, logger zerolog.Logger) (*feed.Engine, error) {
	feedCfg := feed.DefaultConfig()
	feedCfg.RandomSeed = cfg.Engine.RandomSeed
	feedCfg.Limits.Default = cfg.Engine.DefaultLimit
	feedCfg.Limits.Max = cfg.Engine.MaxLimit
	feedCfg.Ads.FrequencyCap = cfg.Engine.AdFrequencyCap
	feedCfg.Ads.GapMin = cfg.Engine.AdGapMin
	feedCfg.Ads.GapMax = cfg.Engine.AdGapMax
	feedCfg.Ads.RandomFallback = cfg.Engine.AdRandomFallback

	return feed.NewEngine(feedCfg, provider, logger)
}
