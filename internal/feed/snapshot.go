// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/driftworks/feedengine/internal/metrics"
)

// Sub-state names used for coalescing keys, logs, and metrics.
const (
	subStateCF      = "cf"
	subStateContent = "content"
	subStateSocial  = "social"
)

// contentState maps items to their token sets and holds the global
// interest vocabulary. Engagement counters for post-sourced videos are
// resolved here, from the post side. Immutable once published.
type contentState struct {
	items  map[ItemKey]*ContentItem
	tokens map[ItemKey]TokenSet

	// candidates holds every post and video in deterministic (kind, id)
	// order; ranking paths iterate this slice.
	candidates []*ContentItem

	// vocabulary is the union of tokens from every post's keyword field,
	// the interest universe fallback and ad scoring measure overlap
	// against.
	vocabulary TokenSet

	version uint64
	builtAt time.Time
}

// socialState maps a user to the set of creator ids they follow.
// Immutable once published.
type socialState struct {
	follows map[int64]map[int64]struct{}

	version uint64
	builtAt time.Time
}

// followedBy reports whether follower follows creator.
func (st *socialState) followedBy(follower, creator int64) bool {
	if st == nil {
		return false
	}
	_, ok := st.follows[follower][creator]
	return ok
}

// Store is the versioned snapshot cache shared by all request goroutines.
//
// Each sub-state (cf, content, social) is built into a private holder and
// published by pointer swap, so a reader never observes a half-written
// state. The sub-states carry independent versions and may be at
// different freshness epochs; the scorer combines them additively, not
// transactionally. Concurrent rebuilds of the same sub-state coalesce
// through singleflight.
type Store struct {
	provider DataProvider
	cfg      Config
	logger   zerolog.Logger

	cf      atomic.Pointer[cfState]
	content atomic.Pointer[contentState]
	social  atomic.Pointer[socialState]

	version atomic.Uint64
	group   singleflight.Group
}

// NewStore creates a snapshot store over the given provider.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(provider DataProvider, cfg Config, logger zerolog.Logger) *Store {
	return &Store{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With().Str("component", "snapshot-store").Logger(),
	}
}

// EnsureFresh rebuilds exactly the sub-states that are absent, or all of
// them when force is true. Readers keep the previous snapshot while a
// rebuild is in flight. The returned error aggregates per-sub-state
// failures; a partially failed refresh still leaves the store usable.
func (s *Store) EnsureFresh(ctx context.Context, force bool) error {
	var errs []error
	if force || s.cf.Load() == nil {
		if err := s.rebuild(ctx, subStateCF, s.rebuildCF); err != nil {
			errs = append(errs, err)
		}
	}
	if force || s.content.Load() == nil {
		if err := s.rebuild(ctx, subStateContent, s.rebuildContent); err != nil {
			errs = append(errs, err)
		}
	}
	if force || s.social.Load() == nil {
		if err := s.rebuild(ctx, subStateSocial, s.rebuildSocial); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Invalidate drops all sub-states so the next EnsureFresh rebuilds them.
func (s *Store) Invalidate() {
	s.cf.Store(nil)
	s.content.Store(nil)
	s.social.Store(nil)
}

// rebuild runs one sub-state rebuild. Concurrent callers for the same
// sub-state coalesce into a single execution and share its result, so
// the log line and metric fire once per actual rebuild.
func (s *Store) rebuild(ctx context.Context, name string, fn func(context.Context) error) error {
	_, err, _ := s.group.Do(name, func() (interface{}, error) {
		start := time.Now()
		buildErr := fn(ctx)
		status := "ok"
		if buildErr != nil {
			status = "error"
			s.logger.Warn().Err(buildErr).Str("sub_state", name).Msg("sub-state rebuild failed")
		} else {
			s.logger.Debug().
				Str("sub_state", name).
				Dur("duration", time.Since(start)).
				Msg("sub-state rebuilt")
		}
		metrics.RecordCacheRebuild(name, status, time.Since(start))
		return nil, buildErr
	})
	return err
}

// rebuildCF fetches interactions and publishes a fresh CF state. A fetch
// failure keeps the previous state; a build failure publishes an empty
// state so the engine degrades to content and fallback paths instead of
// retrying on every request.
func (s *Store) rebuildCF(ctx context.Context) error {
	interactions, err := s.provider.FetchInteractions(ctx)
	if err != nil {
		return fmt.Errorf("fetch interactions: %w", err)
	}

	version := s.version.Add(1)
	st, err := buildCFState(interactions, s.cfg.Interaction, version)
	if err != nil {
		s.cf.Store(&cfState{
			userIndex: map[int64]int{},
			itemIndex: map[ItemKey]int{},
			version:   version,
			builtAt:   time.Now(),
		})
		return err
	}

	s.cf.Store(st)
	s.logger.Info().
		Uint64("version", version).
		Int("users", len(st.users)).
		Int("items", len(st.items)).
		Msg("cf state published")
	return nil
}

// rebuildContent fetches posts and videos and publishes the content
// state. Failure leaves the previous state untouched; content problems
// never block CF availability.
func (s *Store) rebuildContent(ctx context.Context) error {
	posts, err := s.provider.FetchItems(ctx, KindPost)
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}
	videos, err := s.provider.FetchItems(ctx, KindVideo)
	if err != nil {
		return fmt.Errorf("fetch videos: %w", err)
	}

	st := &contentState{
		items:      make(map[ItemKey]*ContentItem, len(posts)+len(videos)),
		tokens:     make(map[ItemKey]TokenSet, len(posts)+len(videos)),
		vocabulary: make(TokenSet),
		version:    s.version.Add(1),
		builtAt:    time.Now(),
	}

	postByID := make(map[int64]*ContentItem, len(posts))
	for i := range posts {
		p := posts[i]
		p.Kind = KindPost
		st.items[p.Key()] = &p
		postByID[p.ID] = &p
		st.vocabulary.Add(Tokenize(p.Keywords))
	}
	for i := range videos {
		v := videos[i]
		v.Kind = KindVideo
		if v.SourcePostID != 0 {
			if src, ok := postByID[v.SourcePostID]; ok {
				v.Stats = src.Stats
			}
		}
		st.items[v.Key()] = &v
	}

	for key, item := range st.items {
		st.tokens[key] = TokenizeAll(item.Tags, item.Keywords, item.Description)
		st.candidates = append(st.candidates, item)
	}
	sort.Slice(st.candidates, func(i, j int) bool {
		return lessItemKey(st.candidates[i].Key(), st.candidates[j].Key())
	})

	s.content.Store(st)
	s.logger.Info().
		Uint64("version", st.version).
		Int("items", len(st.items)).
		Int("vocabulary", len(st.vocabulary)).
		Msg("content state published")
	return nil
}

// rebuildSocial fetches follow edges and publishes the social state.
func (s *Store) rebuildSocial(ctx context.Context) error {
	edges, err := s.provider.FetchFollowEdges(ctx)
	if err != nil {
		return fmt.Errorf("fetch follow edges: %w", err)
	}

	st := &socialState{
		follows: make(map[int64]map[int64]struct{}),
		version: s.version.Add(1),
		builtAt: time.Now(),
	}
	for _, e := range edges {
		set, ok := st.follows[e.FollowerID]
		if !ok {
			set = make(map[int64]struct{})
			st.follows[e.FollowerID] = set
		}
		set[e.FollowedID] = struct{}{}
	}

	s.social.Store(st)
	s.logger.Info().
		Uint64("version", st.version).
		Int("users", len(st.follows)).
		Msg("social state published")
	return nil
}
