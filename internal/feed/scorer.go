// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"math"
	"sort"
)

// scoredItem pairs a candidate with its computed score during ranking.
type scoredItem struct {
	item  *ContentItem
	score float64
}

// engagementScore computes the raw engagement component for one item.
//
// Posts and videos keep separate formulas: the video formula adds
// watch-time and completion terms that posts cannot have. The two weight
// tuples are intentionally distinct; do not unify them.
func engagementScore(item *ContentItem, cfg ScoringConfig) float64 {
	stats := item.Stats
	score := cfg.ViewLogWeight * math.Log10(float64(stats.Views)+1)
	switch item.Kind {
	case KindVideo:
		score += cfg.VideoLike*float64(stats.Likes) +
			cfg.VideoComment*float64(stats.Comments) +
			cfg.WatchLogWeight*math.Log10(stats.WatchSeconds+1) +
			cfg.VideoCompleted*float64(stats.CompletedWatches)
	default:
		score += cfg.PostLike*float64(stats.Likes) +
			cfg.PostComment*float64(stats.Comments)
	}
	return score
}

// interestSimilarity sums the user's per-keyword affinity weight over the
// item's tokens. A nil profile or empty token set scores 0.
func interestSimilarity(profile InterestProfile, tokens TokenSet) float64 {
	if len(profile) == 0 || len(tokens) == 0 {
		return 0
	}
	score := 0.0
	for tok := range tokens {
		score += profile[tok]
	}
	return score
}

// hybridScore blends engagement and interest similarity with the
// configured weights.
func hybridScore(engagement, similarity float64, cfg ScoringConfig) float64 {
	return cfg.EngagementWeight*engagement + cfg.InterestWeight*similarity
}

// scoreHybrid ranks all candidates for a user by the hybrid score.
func scoreHybrid(content *contentState, profile InterestProfile, cfg ScoringConfig) []scoredItem {
	if content == nil {
		return nil
	}
	scored := make([]scoredItem, 0, len(content.candidates))
	for _, item := range content.candidates {
		e := engagementScore(item, cfg)
		sim := interestSimilarity(profile, content.tokens[item.Key()])
		scored = append(scored, scoredItem{item: item, score: hybridScore(e, sim, cfg)})
	}
	sortScored(scored)
	return scored
}

// isWarm reports whether a user qualifies for the CF path: present in
// the matrix with at least one interaction score above the materiality
// threshold.
func isWarm(st *cfState, userID int64, materiality float64) bool {
	row := st.userRow(userID)
	if row == nil {
		return false
	}
	for _, v := range row {
		if v > materiality {
			return true
		}
	}
	return false
}

// cfAggregate computes the pure-CF ranking for a warm user.
//
// For every item the user materially interacted with, the user's score
// for that item is multiplied into the item's similarity row and summed
// across all items. Items the user already interacted with are then
// masked to -inf and excluded from the returned ranking.
func cfAggregate(st *cfState, userID int64, materiality float64) []scoredKey {
	row := st.userRow(userID)
	if row == nil || st.empty() {
		return nil
	}

	agg := make([]float64, len(st.items))
	for j, userScore := range row {
		if userScore <= materiality {
			continue
		}
		for k, sim := range st.sim[j] {
			agg[k] += userScore * sim
		}
	}
	for j, userScore := range row {
		if userScore != 0 {
			agg[j] = math.Inf(-1)
		}
	}

	ranked := make([]scoredKey, 0, len(agg))
	for j, score := range agg {
		if math.IsInf(score, -1) || score <= 0 {
			continue
		}
		ranked = append(ranked, scoredKey{key: st.items[j], score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return lessItemKey(ranked[i].key, ranked[j].key)
	})
	return ranked
}

// scoredKey pairs an item key with its CF aggregate score.
type scoredKey struct {
	key   ItemKey
	score float64
}

// sortScored orders candidates by score descending, with ties broken by
// recency (newest first) and then item key ascending, so identical
// snapshots always produce identical orderings.
func sortScored(scored []scoredItem) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.item.CreatedAt.Equal(b.item.CreatedAt) {
			return a.item.CreatedAt.After(b.item.CreatedAt)
		}
		return lessItemKey(a.item.Key(), b.item.Key())
	})
}
