// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnsureFreshBuildsAllSubStates(t *testing.T) {
	provider := warmDataset()
	store := NewStore(provider, DefaultConfig(), testLogger())

	if err := store.EnsureFresh(context.Background(), false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	if store.cf.Load() == nil {
		t.Error("cf state not published")
	}
	if store.content.Load() == nil {
		t.Error("content state not published")
	}
	if store.social.Load() == nil {
		t.Error("social state not published")
	}
}

func TestEnsureFreshIsIdempotentWhenFresh(t *testing.T) {
	provider := warmDataset()
	store := NewStore(provider, DefaultConfig(), testLogger())
	ctx := context.Background()

	if err := store.EnsureFresh(ctx, false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	if err := store.EnsureFresh(ctx, false); err != nil {
		t.Fatalf("second EnsureFresh: %v", err)
	}
	if calls := atomic.LoadInt32(&provider.fetchInteractionsCalls); calls != 1 {
		t.Errorf("interaction fetches = %d, want 1 (no work when fresh)", calls)
	}
}

func TestEnsureFreshForceRebuilds(t *testing.T) {
	provider := warmDataset()
	store := NewStore(provider, DefaultConfig(), testLogger())
	ctx := context.Background()

	if err := store.EnsureFresh(ctx, false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	before := store.cf.Load().version
	if err := store.EnsureFresh(ctx, true); err != nil {
		t.Fatalf("forced EnsureFresh: %v", err)
	}
	if after := store.cf.Load().version; after <= before {
		t.Errorf("cf version = %d after force, want > %d", after, before)
	}
	if calls := atomic.LoadInt32(&provider.fetchInteractionsCalls); calls != 2 {
		t.Errorf("interaction fetches = %d, want 2", calls)
	}
}

func TestEnsureFreshContentFailureDoesNotBlockCF(t *testing.T) {
	provider := warmDataset()
	provider.itemsErr = errors.New("content table locked")
	store := NewStore(provider, DefaultConfig(), testLogger())

	err := store.EnsureFresh(context.Background(), false)
	if err == nil {
		t.Fatal("expected aggregated error from failed content rebuild")
	}
	if store.cf.Load() == nil {
		t.Error("cf state must publish despite content failure")
	}
	if store.social.Load() == nil {
		t.Error("social state must publish despite content failure")
	}
	if store.content.Load() != nil {
		t.Error("failed content rebuild must not publish a state")
	}
}

func TestEnsureFreshFetchFailureKeepsPreviousState(t *testing.T) {
	provider := warmDataset()
	store := NewStore(provider, DefaultConfig(), testLogger())
	ctx := context.Background()

	if err := store.EnsureFresh(ctx, false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	prev := store.cf.Load()

	provider.interactionsErr = errors.New("interaction table locked")
	if err := store.EnsureFresh(ctx, true); err == nil {
		t.Fatal("expected error from failed forced rebuild")
	}
	if got := store.cf.Load(); got != prev {
		t.Error("fetch failure must keep the previous cf state serving")
	}
}

func TestEnsureFreshConcurrentCallsCoalesce(t *testing.T) {
	provider := warmDataset()
	provider.fetchDelay = 50 * time.Millisecond
	store := NewStore(provider, DefaultConfig(), testLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_ = store.EnsureFresh(ctx, false)
		}()
	}
	close(start)
	wg.Wait()

	if calls := atomic.LoadInt32(&provider.fetchInteractionsCalls); calls != 1 {
		t.Errorf("interaction fetches = %d, want 1 (concurrent rebuilds coalesce)", calls)
	}
	if store.cf.Load() == nil || store.content.Load() == nil || store.social.Load() == nil {
		t.Error("all sub-states must be published after coalesced rebuild")
	}
}

func TestInvalidateDropsAllSubStates(t *testing.T) {
	provider := warmDataset()
	store := NewStore(provider, DefaultConfig(), testLogger())
	ctx := context.Background()

	if err := store.EnsureFresh(ctx, false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	store.Invalidate()
	if store.cf.Load() != nil || store.content.Load() != nil || store.social.Load() != nil {
		t.Fatal("Invalidate must drop every sub-state")
	}

	if err := store.EnsureFresh(ctx, false); err != nil {
		t.Fatalf("EnsureFresh after Invalidate: %v", err)
	}
	if calls := atomic.LoadInt32(&provider.fetchInteractionsCalls); calls != 2 {
		t.Errorf("interaction fetches = %d, want 2 (rebuild after invalidate)", calls)
	}
}

func TestRebuildContentResolvesVideoStatsFromSourcePost(t *testing.T) {
	provider := &mockDataProvider{
		posts: []ContentItem{
			{ID: 1, Kind: KindPost, Keywords: "travel japan",
				Stats: EngagementStats{Views: 500, Likes: 20, Comments: 5}},
		},
		videos: []ContentItem{
			{ID: 10, Kind: KindVideo, SourcePostID: 1},
			{ID: 11, Kind: KindVideo, Stats: EngagementStats{Views: 7}},
		},
	}
	store := NewStore(provider, DefaultConfig(), testLogger())
	if err := store.EnsureFresh(context.Background(), false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}

	content := store.content.Load()
	mirrored := content.items[ItemKey{Kind: KindVideo, ID: 10}]
	if mirrored == nil {
		t.Fatal("mirrored video missing from content state")
	}
	if mirrored.Stats.Views != 500 || mirrored.Stats.Likes != 20 {
		t.Errorf("mirrored stats = %+v, want the source post's counters", mirrored.Stats)
	}
	plain := content.items[ItemKey{Kind: KindVideo, ID: 11}]
	if plain.Stats.Views != 7 {
		t.Errorf("unmirrored video stats = %+v, want its own counters", plain.Stats)
	}
}

func TestRebuildContentVocabularyFromPostKeywordsOnly(t *testing.T) {
	provider := &mockDataProvider{
		posts: []ContentItem{
			{ID: 1, Kind: KindPost, Keywords: "travel japan", Description: "ignored description"},
		},
		videos: []ContentItem{
			{ID: 2, Kind: KindVideo, Keywords: "cooking"},
		},
	}
	store := NewStore(provider, DefaultConfig(), testLogger())
	if err := store.EnsureFresh(context.Background(), false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}

	vocab := store.content.Load().vocabulary
	if !vocab.Contains("travel") || !vocab.Contains("japan") {
		t.Errorf("vocabulary %v missing post keywords", tokensOf(vocab))
	}
	if vocab.Contains("cooking") {
		t.Error("video keywords must not enter the vocabulary")
	}
	if vocab.Contains("ignored") {
		t.Error("post descriptions must not enter the vocabulary")
	}
}

func TestRebuildContentCandidatesSorted(t *testing.T) {
	provider := &mockDataProvider{
		posts: []ContentItem{
			{ID: 3, Kind: KindPost},
			{ID: 1, Kind: KindPost},
		},
		videos: []ContentItem{
			{ID: 2, Kind: KindVideo},
		},
	}
	store := NewStore(provider, DefaultConfig(), testLogger())
	if err := store.EnsureFresh(context.Background(), false); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}

	candidates := store.content.Load().candidates
	for i := 1; i < len(candidates); i++ {
		if !lessItemKey(candidates[i-1].Key(), candidates[i].Key()) {
			t.Fatalf("candidates out of order at %d: %v then %v",
				i, candidates[i-1].Key(), candidates[i].Key())
		}
	}
}
