// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/driftworks/feedengine/internal/feed"
)

// TopicEngagement carries engagement events from the write path to the
// profile updater.
const TopicEngagement = "engagement.events"

// Engagement actions. Each action contributes a fixed affinity weight to
// every keyword of the item it touched.
const (
	ActionLike             = "like"
	ActionComment          = "comment"
	ActionWatchComplete    = "watch_complete"
	ActionWatchSignificant = "watch_significant"
)

// actionWeights maps an action to its per-keyword affinity contribution.
var actionWeights = map[string]float64{
	ActionLike:             1.5,
	ActionComment:          2.0,
	ActionWatchComplete:    2.5,
	ActionWatchSignificant: 1.0,
}

// ActionWeight returns the affinity weight for an action, or 0 for
// unknown actions.
func ActionWeight(action string) float64 {
	return actionWeights[action]
}

// EngagementEvent is one user engagement with a content item. Keywords
// carries the item's free-text keywords so the updater does not have to
// query the item back.
type EngagementEvent struct {
	UserID     int64         `json:"user_id"`
	ItemKind   feed.ItemKind `json:"item_kind"`
	ItemID     int64         `json:"item_id"`
	Action     string        `json:"action"`
	Keywords   string        `json:"keywords"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Validate rejects events the updater cannot apply.
func (ev *EngagementEvent) Validate() error {
	if ev.UserID == 0 {
		return fmt.Errorf("engagement event: missing user_id")
	}
	if _, ok := actionWeights[ev.Action]; !ok {
		return fmt.Errorf("engagement event: unknown action %q", ev.Action)
	}
	return nil
}

// Publisher publishes engagement events to the in-process bus.
type Publisher struct {
	publisher message.Publisher
}

// NewPublisher wraps a watermill publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{publisher: pub}
}

// PublishEngagement validates and publishes one event.
func (p *Publisher) PublishEngagement(ctx context.Context, ev EngagementEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal engagement event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.publisher.Publish(TopicEngagement, msg)
}
