// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"context"
	"time"
)

// ItemKind discriminates the content variants that can appear in a feed.
type ItemKind string

const (
	// KindPost is user-authored text/image content.
	KindPost ItemKind = "post"

	// KindVideo is uploaded or post-sourced video content.
	KindVideo ItemKind = "video"

	// KindAd is a sponsored slot spliced into the organic feed.
	KindAd ItemKind = "ad"
)

// ItemKey uniquely identifies a content item. Post and video identifier
// spaces are independent, so the kind is part of the identity.
type ItemKey struct {
	Kind ItemKind
	ID   int64
}

// EngagementStats holds the raw engagement counters for a content item.
type EngagementStats struct {
	Views            int64
	Likes            int64
	Comments         int64
	WatchSeconds     float64
	CompletedWatches int64
}

// ContentItem is one candidate for recommendation: a post or a video.
type ContentItem struct {
	ID          int64
	Kind        ItemKind
	Title       string
	Description string
	Tags        string
	Keywords    string
	CreatorID   int64
	CreatedAt   time.Time
	Stats       EngagementStats

	// SourcePostID links a video mirrored from a post. When non-zero,
	// engagement counters are read from the post side during content
	// state resolution.
	SourcePostID int64
}

// Key returns the item's identity.
func (c *ContentItem) Key() ItemKey {
	return ItemKey{Kind: c.Kind, ID: c.ID}
}

// Interaction is the single interaction record for a (user, item) pair.
// Last write wins; the pair is the identity.
type Interaction struct {
	UserID   int64
	ItemKind ItemKind
	ItemID   int64

	WatchSeconds float64

	// Liked is tri-state: nil means no opinion, true liked, false disliked.
	Liked *bool

	Shared    bool
	Completed bool
	Commented bool
}

// Key returns the identity of the item the interaction refers to.
func (in *Interaction) Key() ItemKey {
	return ItemKey{Kind: in.ItemKind, ID: in.ItemID}
}

// AdStatusLive is the only ad status eligible for selection.
const AdStatusLive = "live"

// Ad is a sponsored item with targeting metadata.
type Ad struct {
	ID       int64
	Status   string
	Title    string
	Keywords string

	// TargetStart/TargetEnd bound the active window [start, end).
	// A nil bound is unbounded on that side.
	TargetStart *time.Time
	TargetEnd   *time.Time
}

// FollowEdge is an asymmetric follow relationship.
type FollowEdge struct {
	FollowerID int64
	FollowedID int64
}

// InterestProfile maps a keyword to the user's accumulated affinity weight.
type InterestProfile map[string]float64

// FeedItem is one entry in the assembled feed. Exactly one of Item or Ad
// is set, matching Kind.
type FeedItem struct {
	Kind  ItemKind     `json:"type"`
	ID    int64        `json:"id"`
	Score float64      `json:"score"`
	Item  *ContentItem `json:"item,omitempty"`
	Ad    *Ad          `json:"ad,omitempty"`
}

// Source identifies which ranking path produced the organic portion of a
// response.
type Source string

const (
	SourceCF       Source = "cf"
	SourceHybrid   Source = "hybrid"
	SourceFallback Source = "fallback"
	SourceEmpty    Source = "empty"
)

// Response is the result of one recommendation request.
type Response struct {
	UserID      int64      `json:"user_id"`
	Items       []FeedItem `json:"items"`
	Source      Source     `json:"source"`
	RequestID   string     `json:"request_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	LatencyMS   int64      `json:"latency_ms"`
}

// DataProvider supplies the engine with raw records. Implementations are
// expected to be safe for concurrent use. Query failures degrade the
// engine to fallback or empty results; they are never propagated to the
// feed caller.
type DataProvider interface {
	// FetchInteractions returns all interaction records.
	FetchInteractions(ctx context.Context) ([]Interaction, error)

	// FetchItems returns all content items of the given kind.
	FetchItems(ctx context.Context, kind ItemKind) ([]ContentItem, error)

	// FetchFollowEdges returns all follow edges.
	FetchFollowEdges(ctx context.Context) ([]FollowEdge, error)

	// FetchLiveAds returns ads whose status is live. Time-window and
	// frequency-cap filtering remain the engine's responsibility.
	FetchLiveAds(ctx context.Context) ([]Ad, error)

	// CountImpressions returns the number of impressions recorded for
	// (ad, user) on the given day.
	CountImpressions(ctx context.Context, adID, userID int64, day time.Time) (int, error)

	// RecordImpression stores one impression for (ad, user, now) with the
	// score the ad was selected at.
	RecordImpression(ctx context.Context, adID, userID int64, score float64) error

	// FetchInterestProfile returns the user's keyword affinity weights,
	// or nil when the user has no profile.
	FetchInterestProfile(ctx context.Context, userID int64) (InterestProfile, error)
}
