// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/driftworks/feedengine/internal/feed"
	"github.com/driftworks/feedengine/internal/logging"
	"github.com/driftworks/feedengine/internal/metrics"
)

// FeedProvider implements feed.DataProvider over DuckDB.
//
// Every query runs through a shared circuit breaker: a store that starts
// failing trips the breaker, and the engine degrades to fallback or
// empty responses quickly instead of stacking up slow failing queries.
type FeedProvider struct {
	db *DB
	cb *gobreaker.CircuitBreaker[any]
}

// Compile-time interface compliance check.
var _ feed.DataProvider = (*FeedProvider)(nil)

// NewFeedProvider creates the provider with its circuit breaker.
func NewFeedProvider(db *DB) *FeedProvider {
	settings := gobreaker.Settings{
		Name:        "feed-db",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetDBCircuitBreakerOpen(to == gobreaker.StateOpen)
			logging.Warn().
				Str("component", "database").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
	return &FeedProvider{
		db: db,
		cb: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// query runs one named query through the breaker and records metrics.
func (p *FeedProvider) query(operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	out, err := p.cb.Execute(fn)
	metrics.RecordDBQuery(operation, time.Since(start), err)
	return out, err
}

// FetchInteractions returns every interaction record.
func (p *FeedProvider) FetchInteractions(ctx context.Context) ([]feed.Interaction, error) {
	out, err := p.query("fetch_interactions", func() (any, error) {
		rows, err := p.db.conn.QueryContext(ctx, `
			SELECT user_id, item_kind, item_id, watch_seconds, liked, shared, completed, commented
			FROM interactions`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var interactions []feed.Interaction
		for rows.Next() {
			var in feed.Interaction
			var kind string
			var liked sql.NullBool
			if err := rows.Scan(&in.UserID, &kind, &in.ItemID, &in.WatchSeconds,
				&liked, &in.Shared, &in.Completed, &in.Commented); err != nil {
				return nil, err
			}
			in.ItemKind = feed.ItemKind(kind)
			if liked.Valid {
				v := liked.Bool
				in.Liked = &v
			}
			interactions = append(interactions, in)
		}
		return interactions, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}
	return out.([]feed.Interaction), nil
}

// FetchItems returns all posts or all videos.
func (p *FeedProvider) FetchItems(ctx context.Context, kind feed.ItemKind) ([]feed.ContentItem, error) {
	var q string
	switch kind {
	case feed.KindPost:
		q = `SELECT id, title, description, tags, keywords, creator_id, created_at,
			views, likes, comments, 0.0, 0, 0
			FROM posts`
	case feed.KindVideo:
		q = `SELECT id, title, description, tags, keywords, creator_id, created_at,
			views, likes, comments, watch_seconds, completed_watches, source_post_id
			FROM videos`
	default:
		return nil, fmt.Errorf("fetch items: unsupported kind %q", kind)
	}

	out, err := p.query("fetch_items_"+string(kind), func() (any, error) {
		rows, err := p.db.conn.QueryContext(ctx, q)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var items []feed.ContentItem
		for rows.Next() {
			item := feed.ContentItem{Kind: kind}
			if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Tags,
				&item.Keywords, &item.CreatorID, &item.CreatedAt,
				&item.Stats.Views, &item.Stats.Likes, &item.Stats.Comments,
				&item.Stats.WatchSeconds, &item.Stats.CompletedWatches,
				&item.SourcePostID); err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s items: %w", kind, err)
	}
	return out.([]feed.ContentItem), nil
}

// FetchFollowEdges returns all follow edges.
func (p *FeedProvider) FetchFollowEdges(ctx context.Context) ([]feed.FollowEdge, error) {
	out, err := p.query("fetch_follow_edges", func() (any, error) {
		rows, err := p.db.conn.QueryContext(ctx,
			`SELECT follower_id, followed_id FROM follows`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var edges []feed.FollowEdge
		for rows.Next() {
			var e feed.FollowEdge
			if err := rows.Scan(&e.FollowerID, &e.FollowedID); err != nil {
				return nil, err
			}
			edges = append(edges, e)
		}
		return edges, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch follow edges: %w", err)
	}
	return out.([]feed.FollowEdge), nil
}

// FetchLiveAds returns ads in live status. Window and frequency-cap
// filtering stay with the engine.
func (p *FeedProvider) FetchLiveAds(ctx context.Context) ([]feed.Ad, error) {
	out, err := p.query("fetch_live_ads", func() (any, error) {
		rows, err := p.db.conn.QueryContext(ctx, `
			SELECT id, status, title, keywords, target_start, target_end
			FROM ads WHERE status = ?`, feed.AdStatusLive)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var ads []feed.Ad
		for rows.Next() {
			var ad feed.Ad
			var start, end sql.NullTime
			if err := rows.Scan(&ad.ID, &ad.Status, &ad.Title, &ad.Keywords, &start, &end); err != nil {
				return nil, err
			}
			if start.Valid {
				t := start.Time
				ad.TargetStart = &t
			}
			if end.Valid {
				t := end.Time
				ad.TargetEnd = &t
			}
			ads = append(ads, ad)
		}
		return ads, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch live ads: %w", err)
	}
	return out.([]feed.Ad), nil
}

// CountImpressions returns the impressions recorded for (ad, user) on
// the given day.
func (p *FeedProvider) CountImpressions(ctx context.Context, adID, userID int64, day time.Time) (int, error) {
	out, err := p.query("count_impressions", func() (any, error) {
		var n int
		err := p.db.conn.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM ad_impressions
			WHERE ad_id = ? AND user_id = ? AND shown_on = CAST(? AS DATE)`,
			adID, userID, day.Format("2006-01-02")).Scan(&n)
		return n, err
	})
	if err != nil {
		return 0, fmt.Errorf("count impressions: %w", err)
	}
	return out.(int), nil
}

// RecordImpression stores one impression row for (ad, user, today).
func (p *FeedProvider) RecordImpression(ctx context.Context, adID, userID int64, score float64) error {
	now := time.Now()
	_, err := p.query("record_impression", func() (any, error) {
		return p.db.conn.ExecContext(ctx, `
			INSERT INTO ad_impressions (ad_id, user_id, shown_on, score, shown_at)
			VALUES (?, ?, CAST(? AS DATE), ?, ?)`,
			adID, userID, now.Format("2006-01-02"), score, now)
	})
	if err != nil {
		return fmt.Errorf("record impression: %w", err)
	}
	return nil
}

// FetchInterestProfile returns the user's keyword weights, or nil when
// the user has no profile rows.
func (p *FeedProvider) FetchInterestProfile(ctx context.Context, userID int64) (feed.InterestProfile, error) {
	out, err := p.query("fetch_interest_profile", func() (any, error) {
		rows, err := p.db.conn.QueryContext(ctx,
			`SELECT keyword, weight FROM interest_keywords WHERE user_id = ?`, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var profile feed.InterestProfile
		for rows.Next() {
			var keyword string
			var weight float64
			if err := rows.Scan(&keyword, &weight); err != nil {
				return nil, err
			}
			if profile == nil {
				profile = make(feed.InterestProfile)
			}
			profile[keyword] = weight
		}
		return profile, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch interest profile: %w", err)
	}
	profile, _ := out.(feed.InterestProfile)
	if len(profile) == 0 {
		return nil, nil
	}
	return profile, nil
}

// AddKeywordWeight accumulates affinity weight for (user, keyword). Used
// by the profile updater, not by the read path.
func (p *FeedProvider) AddKeywordWeight(ctx context.Context, userID int64, keyword string, delta float64) error {
	_, err := p.query("add_keyword_weight", func() (any, error) {
		return p.db.conn.ExecContext(ctx, `
			INSERT INTO interest_keywords (user_id, keyword, weight)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, keyword)
			DO UPDATE SET weight = interest_keywords.weight + excluded.weight`,
			userID, keyword, delta)
	})
	if err != nil {
		return fmt.Errorf("add keyword weight: %w", err)
	}
	return nil
}
