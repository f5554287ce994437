// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package profile

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/driftworks/feedengine/internal/feed"
	"github.com/driftworks/feedengine/internal/metrics"
)

// Sink persists accumulated keyword affinity. Implemented by the
// database provider.
type Sink interface {
	AddKeywordWeight(ctx context.Context, userID int64, keyword string, delta float64) error
}

// Updater consumes engagement events and accumulates interest-profile
// keyword weights. It is the only writer of interest profiles; the
// scorer reads them through the data provider.
type Updater struct {
	subscriber message.Subscriber
	sink       Sink
	logger     zerolog.Logger
	name       string
}

// NewUpdater creates the profile updater.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewUpdater(sub message.Subscriber, sink Sink, logger zerolog.Logger) *Updater {
	return &Updater{
		subscriber: sub,
		sink:       sink,
		logger:     logger.With().Str("component", "profile-updater").Logger(),
		name:       "profile-updater",
	}
}

// Serve implements suture.Service. It consumes the engagement topic
// until the context is canceled.
func (u *Updater) Serve(ctx context.Context) error {
	msgs, err := u.subscriber.Subscribe(ctx, TopicEngagement)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicEngagement, err)
	}
	u.logger.Info().Str("topic", TopicEngagement).Msg("profile updater running")

	for {
		select {
		case <-ctx.Done():
			u.logger.Info().Msg("profile updater shutting down")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("engagement subscription closed")
			}
			u.handle(ctx, msg)
		}
	}
}

// handle applies one event. Malformed events are acked and dropped:
// the bus has no redelivery that could fix a bad payload.
func (u *Updater) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var ev EngagementEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		u.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("undecodable engagement event dropped")
		metrics.RecordProfileEvent("unknown", err)
		return
	}
	err := u.apply(ctx, ev)
	metrics.RecordProfileEvent(ev.Action, err)
	if err != nil {
		u.logger.Warn().
			Err(err).
			Int64("user_id", ev.UserID).
			Str("action", ev.Action).
			Msg("engagement event not applied")
	}
}

// apply accumulates the action weight onto every keyword of the item.
func (u *Updater) apply(ctx context.Context, ev EngagementEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	weight := ActionWeight(ev.Action)
	tokens := feed.Tokenize(ev.Keywords)
	if len(tokens) == 0 {
		return nil
	}
	for tok := range tokens {
		if err := u.sink.AddKeywordWeight(ctx, ev.UserID, tok, weight); err != nil {
			return err
		}
	}
	u.logger.Debug().
		Int64("user_id", ev.UserID).
		Str("action", ev.Action).
		Int("keywords", len(tokens)).
		Msg("interest profile updated")
	return nil
}

// String returns the service name for supervisor logging.
func (u *Updater) String() string {
	return u.name
}
