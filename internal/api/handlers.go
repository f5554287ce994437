// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/driftworks/feedengine/internal/feed"
	"github.com/driftworks/feedengine/internal/profile"
)

// FeedService is the engine surface the handlers need. Narrowed to an
// interface so tests can swap the engine out.
type FeedService interface {
	GetRecommendations(ctx context.Context, userID int64, limit int) *feed.Response
}

// EventPublisher publishes engagement events onto the profile bus.
type EventPublisher interface {
	PublishEngagement(ctx context.Context, ev profile.EngagementEvent) error
}

// Handler holds the HTTP handlers for the feed API.
type Handler struct {
	feed         FeedService
	events       EventPublisher
	defaultLimit int
	maxLimit     int
	logger       zerolog.Logger
}

// NewHandler creates the handler set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(svc FeedService, events EventPublisher, defaultLimit, maxLimit int, logger zerolog.Logger) *Handler {
	return &Handler{
		feed:         svc,
		events:       events,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetFeed handles GET /api/v1/feed/user/{userID}?limit=N.
//
// The limit defaults when absent or unparsable and is clamped to
// (0, max]; the engine clamps again defensively. The response is the
// assembled mixed-type page.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID < 1 {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp := h.feed.GetRecommendations(ctx, userID, limit)
	respondJSON(w, http.StatusOK, resp)
}

// PostEngagement handles POST /api/v1/events/engagement. The event is
// validated and published to the profile pipeline; processing is
// asynchronous, so success is 202.
func (h *Handler) PostEngagement(w http.ResponseWriter, r *http.Request) {
	var ev profile.EngagementEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_EVENT", "Malformed event payload", err)
		return
	}
	if err := ev.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_EVENT", err.Error(), nil)
		return
	}
	if err := h.events.PublishEngagement(r.Context(), ev); err != nil {
		respondError(w, http.StatusInternalServerError, "PUBLISH_FAILED", "Event could not be accepted", err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
