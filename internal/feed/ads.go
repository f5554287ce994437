// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"context"
	"math/rand"
	"sort"

	"github.com/driftworks/feedengine/internal/metrics"
)

// selectedAd pairs an eligible ad with its interest similarity score.
type selectedAd struct {
	ad    *Ad
	score float64
}

// selectAds returns the ranked list of ads eligible for this request.
//
// Eligibility: status live, current time inside [target_start, target_end)
// with a missing bound treated as unbounded, and fewer than the frequency
// cap of impressions for (ad, user) today. Eligible ads are ranked by
// interest similarity; when no ad has positive similarity, one random
// eligible ad may be chosen if the random fallback is enabled — a
// documented product tradeoff, never a silent drop.
func (e *Engine) selectAds(ctx context.Context, userID int64, profile InterestProfile, rng *rand.Rand) []selectedAd {
	ads, err := e.provider.FetchLiveAds(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("ad fetch failed, serving organic-only feed")
		return nil
	}

	now := e.now()
	eligible := make([]selectedAd, 0, len(ads))
	for i := range ads {
		ad := &ads[i]
		if ad.Status != AdStatusLive {
			continue
		}
		if ad.TargetStart != nil && now.Before(*ad.TargetStart) {
			continue
		}
		if ad.TargetEnd != nil && !now.Before(*ad.TargetEnd) {
			continue
		}
		shown, err := e.provider.CountImpressions(ctx, ad.ID, userID, now)
		if err != nil {
			// Fail closed: an uncountable cap must not over-serve the ad.
			e.logger.Warn().Err(err).Int64("ad_id", ad.ID).Msg("impression count failed, skipping ad")
			continue
		}
		if shown >= e.cfg.Ads.FrequencyCap {
			continue
		}
		eligible = append(eligible, selectedAd{
			ad:    ad,
			score: interestSimilarity(profile, Tokenize(ad.Keywords)),
		})
	}
	if len(eligible) == 0 {
		return nil
	}

	ranked := eligible[:0:0]
	for _, c := range eligible {
		if c.score > 0 {
			ranked = append(ranked, c)
		}
	}
	if len(ranked) == 0 {
		if !e.cfg.Ads.RandomFallback {
			return nil
		}
		return []selectedAd{eligible[rng.Intn(len(eligible))]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].ad.ID < ranked[j].ad.ID
	})
	return ranked
}

// injectAds interleaves ads into the organic feed, one ad after every N
// organic items with N drawn fresh per gap from the configured range.
// Each ad spliced in records exactly one impression; an empty organic
// feed gets no ads at all.
func (e *Engine) injectAds(ctx context.Context, userID int64, organic []FeedItem, ads []selectedAd, rng *rand.Rand) []FeedItem {
	if len(organic) == 0 || len(ads) == 0 {
		return organic
	}

	out := make([]FeedItem, 0, len(organic)+len(ads))
	next := 0
	gap := e.adGap(rng)
	sinceAd := 0
	for _, item := range organic {
		out = append(out, item)
		sinceAd++
		if sinceAd < gap || next >= len(ads) {
			continue
		}
		sel := ads[next]
		next++
		sinceAd = 0
		gap = e.adGap(rng)

		out = append(out, FeedItem{
			Kind:  KindAd,
			ID:    sel.ad.ID,
			Score: sel.score,
			Ad:    sel.ad,
		})
		err := e.provider.RecordImpression(ctx, sel.ad.ID, userID, sel.score)
		if err != nil {
			e.logger.Warn().Err(err).Int64("ad_id", sel.ad.ID).Msg("impression record failed")
		}
		metrics.RecordAdInjection(err == nil)
	}
	return out
}

// adGap draws the next organic-item gap from [GapMin, GapMax].
func (e *Engine) adGap(rng *rand.Rand) int {
	lo, hi := e.cfg.Ads.GapMin, e.cfg.Ads.GapMax
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
