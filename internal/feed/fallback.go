// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

// scoreFallback ranks candidates without any CF dependency, for
// cold-start users or when the CF state is empty or short.
//
// Every item starts at 0, gains keyword_boost per token shared with the
// global interest vocabulary, and, when the uploader is followed by the
// requesting user, a multiplicative boost: score += boost * (1 + score).
// The multiplicative form makes the follow boost compound on top of the
// keyword boost instead of adding a flat constant.
//
// exclude removes items already placed by another ranking path. The
// function tolerates nil states, zero items, and zero follows.
func scoreFallback(
	content *contentState,
	social *socialState,
	userID int64,
	exclude map[ItemKey]struct{},
	cfg FallbackConfig,
) []scoredItem {
	if content == nil {
		return nil
	}
	scored := make([]scoredItem, 0, len(content.candidates))
	for _, item := range content.candidates {
		if _, skip := exclude[item.Key()]; skip {
			continue
		}
		score := cfg.KeywordBoost * float64(content.tokens[item.Key()].Overlap(content.vocabulary))
		if social.followedBy(userID, item.CreatorID) {
			score += cfg.FollowedBoost * (1 + score)
		}
		scored = append(scored, scoredItem{item: item, score: score})
	}
	sortScored(scored)
	return scored
}
