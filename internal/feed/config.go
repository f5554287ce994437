// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import "fmt"

// Config holds all tunable weights and limits for the engine.
// Several inconsistent historical weight sets existed for this product;
// the defaults below are the canonical scheme, and every weight is
// configuration rather than a hidden constant.
type Config struct {
	Interaction InteractionWeights `json:"interaction"`
	Scoring     ScoringConfig      `json:"scoring"`
	Fallback    FallbackConfig     `json:"fallback"`
	Ads         AdConfig           `json:"ads"`
	Limits      LimitConfig        `json:"limits"`

	// RandomSeed seeds the engine's rng (ad cadence jitter, random-ad
	// fallback). A fixed seed makes full responses reproducible in tests.
	RandomSeed int64 `json:"random_seed"`
}

// InteractionWeights derives the scalar interaction score from one
// interaction record. The score is the sum of every matching term.
type InteractionWeights struct {
	// WatchShortSeconds and WatchLongSeconds are the watch-time
	// thresholds for the two watch bonuses. The long bonus stacks on
	// top of the short one.
	WatchShortSeconds float64 `json:"watch_short_seconds"`
	WatchLongSeconds  float64 `json:"watch_long_seconds"`

	WatchShort float64 `json:"watch_short"`
	WatchLong  float64 `json:"watch_long"`
	Completed  float64 `json:"completed"`
	Liked      float64 `json:"liked"`
	Disliked   float64 `json:"disliked"`
	Shared     float64 `json:"shared"`
	Commented  float64 `json:"commented"`

	// Materiality is the minimum per-item score for a user to count as
	// warm on the collaborative-filtering path.
	Materiality float64 `json:"materiality"`
}

// ScoringConfig weights the hybrid score. Posts and videos keep separate
// engagement formulas: posts have no watch-time signal, and collapsing
// the two tuples changes ranking behavior.
type ScoringConfig struct {
	// EngagementWeight and InterestWeight blend the two components of
	// the final hybrid score.
	EngagementWeight float64 `json:"engagement_weight"`
	InterestWeight   float64 `json:"interest_weight"`

	// ViewLogWeight scales log10(views+1) for both kinds.
	ViewLogWeight float64 `json:"view_log_weight"`

	PostLike    float64 `json:"post_like"`
	PostComment float64 `json:"post_comment"`

	VideoLike      float64 `json:"video_like"`
	VideoComment   float64 `json:"video_comment"`
	VideoCompleted float64 `json:"video_completed"`

	// WatchLogWeight scales log10(watch_seconds+1), video only.
	WatchLogWeight float64 `json:"watch_log_weight"`
}

// FallbackConfig tunes the cold-start ranking path.
type FallbackConfig struct {
	// KeywordBoost is multiplied by the number of tokens an item shares
	// with the global interest vocabulary.
	KeywordBoost float64 `json:"keyword_boost"`

	// FollowedBoost is applied multiplicatively when the item's creator
	// is followed: score += boost * (1 + score).
	FollowedBoost float64 `json:"followed_boost"`
}

// AdConfig tunes ad eligibility and injection.
type AdConfig struct {
	// FrequencyCap is the maximum impressions per (ad, user, day).
	FrequencyCap int `json:"frequency_cap"`

	// GapMin/GapMax bound the organic-item gap between ads. The gap is
	// drawn fresh for every slot so the cadence is not predictable.
	GapMin int `json:"gap_min"`
	GapMax int `json:"gap_max"`

	// RandomFallback permits choosing a random eligible ad when no ad
	// has positive interest similarity. Whether a zero-relevance ad
	// should be shown at all is a product decision, so it is switchable.
	RandomFallback bool `json:"random_fallback"`
}

// LimitConfig bounds the requested page size.
type LimitConfig struct {
	Default int `json:"default"`
	Max     int `json:"max"`
}

// DefaultConfig returns the canonical production configuration.
func DefaultConfig() Config {
	return Config{
		Interaction: InteractionWeights{
			WatchShortSeconds: 60,
			WatchLongSeconds:  300,
			WatchShort:        1,
			WatchLong:         1,
			Completed:         2,
			Liked:             3,
			Disliked:          -2,
			Shared:            2,
			Commented:         3,
			Materiality:       0.1,
		},
		Scoring: ScoringConfig{
			EngagementWeight: 0.7,
			InterestWeight:   0.3,
			ViewLogWeight:    0.2,
			PostLike:         0.4,
			PostComment:      0.5,
			VideoLike:        0.3,
			VideoComment:     0.4,
			VideoCompleted:   0.2,
			WatchLogWeight:   0.1,
		},
		Fallback: FallbackConfig{
			KeywordBoost:  0.1,
			FollowedBoost: 0.5,
		},
		Ads: AdConfig{
			FrequencyCap:   3,
			GapMin:         7,
			GapMax:         10,
			RandomFallback: true,
		},
		Limits: LimitConfig{
			Default: 10,
			Max:     50,
		},
		RandomSeed: 42,
	}
}

// Validate checks the configuration for values that would break ranking.
func (c *Config) Validate() error {
	if c.Scoring.EngagementWeight < 0 || c.Scoring.InterestWeight < 0 {
		return fmt.Errorf("%w: blend weights must be non-negative", ErrInvalidConfig)
	}
	if c.Scoring.EngagementWeight == 0 && c.Scoring.InterestWeight == 0 {
		return fmt.Errorf("%w: at least one blend weight must be positive", ErrInvalidConfig)
	}
	if c.Interaction.WatchShortSeconds < 0 || c.Interaction.WatchLongSeconds < c.Interaction.WatchShortSeconds {
		return fmt.Errorf("%w: watch thresholds must satisfy 0 <= short <= long", ErrInvalidConfig)
	}
	if c.Ads.FrequencyCap < 1 {
		return fmt.Errorf("%w: ad frequency cap must be at least 1", ErrInvalidConfig)
	}
	if c.Ads.GapMin < 1 || c.Ads.GapMax < c.Ads.GapMin {
		return fmt.Errorf("%w: ad gap range must satisfy 1 <= min <= max", ErrInvalidConfig)
	}
	if c.Limits.Default < 1 || c.Limits.Max < c.Limits.Default {
		return fmt.Errorf("%w: limits must satisfy 1 <= default <= max", ErrInvalidConfig)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() Config {
	// All fields are value types.
	return *c
}
