// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/driftworks/feedengine/internal/metrics"
)

// Engine is the recommendation orchestrator and the only entry point the
// presentation layer talks to. It sequences cache freshness, candidate
// scoring, fallback top-up, and ad injection, and always terminates in a
// (possibly empty) ranked list: collaborator failures degrade, they do
// not escape GetRecommendations.
type Engine struct {
	cfg      Config
	provider DataProvider
	store    *Store
	logger   zerolog.Logger

	// now is swappable for ad time-window tests.
	now func() time.Time
}

// NewEngine creates an engine over the given provider.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, provider DataProvider, logger zerolog.Logger) (*Engine, error) {
	if provider == nil {
		return nil, ErrNoDataProvider
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engineLogger := logger.With().Str("component", "feed-engine").Logger()
	return &Engine{
		cfg:      cfg,
		provider: provider,
		store:    NewStore(provider, cfg, logger),
		logger:   engineLogger,
		now:      time.Now,
	}, nil
}

// requestRNG derives the per-request rng for ad cadence jitter and the
// random-ad fallback. Seeding from (config seed, user) makes identical
// requests over identical snapshots reproduce exactly, while gap draws
// still vary per slot and per user.
func (e *Engine) requestRNG(userID int64) *rand.Rand {
	return rand.New(rand.NewSource(e.cfg.RandomSeed ^ userID)) //nolint:gosec // ranking jitter, not security
}

// Refresh rebuilds stale cache sub-states, or all of them when force is
// true. Used by the periodic rebuild service and admin triggers.
func (e *Engine) Refresh(ctx context.Context, force bool) error {
	return e.store.EnsureFresh(ctx, force)
}

// GetRecommendations assembles the ranked mixed-type feed page for a
// user.
//
// Warm users (present in the CF matrix with a material interaction) get
// the pure-CF aggregate ranking topped up by fallback; cold users with
// an interest profile get the hybrid ranking; everyone else gets the
// fallback ranking. The organic page is deduplicated, truncated to
// limit, and spliced with eligible ads. limit is clamped to
// [0, Limits.Max]; limit 0 returns an empty page with no side effects.
func (e *Engine) GetRecommendations(ctx context.Context, userID int64, limit int) *Response {
	start := e.now()
	resp := &Response{
		UserID:      userID,
		Items:       []FeedItem{},
		Source:      SourceEmpty,
		RequestID:   uuid.NewString(),
		GeneratedAt: start,
	}
	defer func() {
		resp.LatencyMS = time.Since(start).Milliseconds()
		metrics.RecordFeedRequest(string(resp.Source), time.Since(start))
	}()

	if limit <= 0 {
		return resp
	}
	if limit > e.cfg.Limits.Max {
		limit = e.cfg.Limits.Max
	}

	if err := e.store.EnsureFresh(ctx, false); err != nil {
		// Partially stale sub-states still serve; the scorer combines
		// whatever is available additively.
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("cache refresh degraded")
	}
	cf := e.store.cf.Load()
	content := e.store.content.Load()
	social := e.store.social.Load()

	profile, err := e.provider.FetchInterestProfile(ctx, userID)
	if err != nil {
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("interest profile fetch failed")
		profile = nil
	}

	organic, source := e.rankOrganic(cf, content, social, userID, profile, limit)
	resp.Source = source
	if source == SourceFallback {
		metrics.RecordFallbackActivation()
	}
	if len(organic) == 0 {
		return resp
	}

	rng := e.requestRNG(userID)
	ads := e.selectAds(ctx, userID, profile, rng)
	resp.Items = e.injectAds(ctx, userID, organic, ads, rng)
	return resp
}

// rankOrganic produces the deduplicated organic page and reports which
// ranking path filled it.
func (e *Engine) rankOrganic(
	cf *cfState,
	content *contentState,
	social *socialState,
	userID int64,
	profile InterestProfile,
	limit int,
) ([]FeedItem, Source) {
	if content == nil || len(content.candidates) == 0 {
		return nil, SourceEmpty
	}

	placed := make(map[ItemKey]struct{}, limit)
	items := make([]FeedItem, 0, limit)
	appendItem := func(item *ContentItem, score float64) {
		key := item.Key()
		if _, dup := placed[key]; dup {
			return
		}
		placed[key] = struct{}{}
		items = append(items, FeedItem{Kind: item.Kind, ID: item.ID, Score: score, Item: item})
	}

	source := SourceFallback
	switch {
	case isWarm(cf, userID, e.cfg.Interaction.Materiality):
		source = SourceCF
		for _, ranked := range cfAggregate(cf, userID, e.cfg.Interaction.Materiality) {
			if len(items) == limit {
				break
			}
			item, ok := content.items[ranked.key]
			if !ok {
				// The CF and content sub-states can be at different
				// epochs; skip items the content state no longer knows.
				continue
			}
			appendItem(item, ranked.score)
		}
	case len(profile) > 0:
		source = SourceHybrid
		for _, sc := range scoreHybrid(content, profile, e.cfg.Scoring) {
			if len(items) == limit {
				break
			}
			appendItem(sc.item, sc.score)
		}
	}

	// Fallback fills the whole page for cold users without a profile,
	// and tops up any shortfall from the paths above.
	if len(items) < limit {
		for _, sc := range scoreFallback(content, social, userID, placed, e.cfg.Fallback) {
			if len(items) == limit {
				break
			}
			appendItem(sc.item, sc.score)
		}
	}
	if len(items) == 0 {
		return nil, SourceEmpty
	}
	return items, source
}
