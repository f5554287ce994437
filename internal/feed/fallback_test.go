// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"math"
	"testing"
)

// buildTestContentState assembles a content state directly from items,
// with the vocabulary drawn from the given keyword text.
func buildTestContentState(vocab string, items ...*ContentItem) *contentState {
	st := &contentState{
		items:      make(map[ItemKey]*ContentItem, len(items)),
		tokens:     make(map[ItemKey]TokenSet, len(items)),
		vocabulary: Tokenize(vocab),
	}
	for _, item := range items {
		st.items[item.Key()] = item
		st.tokens[item.Key()] = TokenizeAll(item.Tags, item.Keywords, item.Description)
		st.candidates = append(st.candidates, item)
	}
	return st
}

func buildTestSocialState(edges ...FollowEdge) *socialState {
	st := &socialState{follows: make(map[int64]map[int64]struct{})}
	for _, e := range edges {
		set, ok := st.follows[e.FollowerID]
		if !ok {
			set = make(map[int64]struct{})
			st.follows[e.FollowerID] = set
		}
		set[e.FollowedID] = struct{}{}
	}
	return st
}

func TestScoreFallbackKeywordBoost(t *testing.T) {
	cfg := DefaultConfig().Fallback
	content := buildTestContentState("travel japan hiking",
		&ContentItem{ID: 1, Kind: KindVideo, Keywords: "travel japan"},
		&ContentItem{ID: 2, Kind: KindVideo, Keywords: "cooking"},
	)

	scored := scoreFallback(content, nil, 1, nil, cfg)
	if len(scored) != 2 {
		t.Fatalf("scored = %d, want 2", len(scored))
	}
	if scored[0].item.ID != 1 {
		t.Fatalf("top item = %d, want 1", scored[0].item.ID)
	}
	if math.Abs(scored[0].score-0.2) > 1e-9 {
		t.Errorf("score = %v, want 0.2 (two shared tokens)", scored[0].score)
	}
	if scored[1].score != 0 {
		t.Errorf("no-overlap score = %v, want 0", scored[1].score)
	}
}

func TestScoreFallbackFollowBoostIsMultiplicative(t *testing.T) {
	cfg := DefaultConfig().Fallback
	content := buildTestContentState("travel japan",
		&ContentItem{ID: 1, Kind: KindVideo, Keywords: "travel japan", CreatorID: 10},
	)
	social := buildTestSocialState(FollowEdge{FollowerID: 1, FollowedID: 10})

	scored := scoreFallback(content, social, 1, nil, cfg)
	// 0.2 keyword base, then += 0.5 * (1 + 0.2).
	almostEqual(t, scored[0].score, 0.2+0.5*1.2, "followed creator score")

	// Same item for a non-follower keeps the keyword score only.
	scored = scoreFallback(content, social, 2, nil, cfg)
	almostEqual(t, scored[0].score, 0.2, "non-follower score")
}

func TestScoreFallbackFollowBoostOnZeroBase(t *testing.T) {
	cfg := DefaultConfig().Fallback
	content := buildTestContentState("travel",
		&ContentItem{ID: 1, Kind: KindPost, Keywords: "cooking", CreatorID: 10},
	)
	social := buildTestSocialState(FollowEdge{FollowerID: 1, FollowedID: 10})

	scored := scoreFallback(content, social, 1, nil, cfg)
	almostEqual(t, scored[0].score, 0.5, "follow boost on zero keyword base")
}

func TestScoreFallbackExcludesPlacedItems(t *testing.T) {
	cfg := DefaultConfig().Fallback
	content := buildTestContentState("travel",
		&ContentItem{ID: 1, Kind: KindVideo, Keywords: "travel"},
		&ContentItem{ID: 2, Kind: KindVideo, Keywords: "travel"},
	)
	exclude := map[ItemKey]struct{}{
		{Kind: KindVideo, ID: 1}: {},
	}

	scored := scoreFallback(content, nil, 1, exclude, cfg)
	if len(scored) != 1 {
		t.Fatalf("scored = %d, want 1", len(scored))
	}
	if scored[0].item.ID != 2 {
		t.Errorf("item = %d, want 2", scored[0].item.ID)
	}
}

func TestScoreFallbackNilStates(t *testing.T) {
	cfg := DefaultConfig().Fallback
	if got := scoreFallback(nil, nil, 1, nil, cfg); got != nil {
		t.Errorf("nil content state scored %v, want nil", got)
	}

	content := buildTestContentState("")
	if got := scoreFallback(content, nil, 1, nil, cfg); len(got) != 0 {
		t.Errorf("empty content scored %d items, want 0", len(got))
	}
}
