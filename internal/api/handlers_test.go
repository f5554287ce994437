// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/driftworks/feedengine/internal/config"
	"github.com/driftworks/feedengine/internal/feed"
	"github.com/driftworks/feedengine/internal/profile"
)

type mockFeedService struct {
	lastUserID int64
	lastLimit  int
	resp       *feed.Response
}

func (m *mockFeedService) GetRecommendations(_ context.Context, userID int64, limit int) *feed.Response {
	m.lastUserID = userID
	m.lastLimit = limit
	if m.resp != nil {
		return m.resp
	}
	return &feed.Response{UserID: userID, Items: []feed.FeedItem{}, Source: feed.SourceEmpty}
}

type mockPublisher struct {
	events []profile.EngagementEvent
	err    error
}

func (m *mockPublisher) PublishEngagement(_ context.Context, ev profile.EngagementEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func newTestRouter(svc FeedService, events EventPublisher) http.Handler {
	handler := NewHandler(svc, events, 10, 50, zerolog.Nop())
	server := NewServer(config.ServerConfig{}, handler, zerolog.Nop())
	return server.Routes()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var env APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&mockFeedService{}, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Errorf("envelope status = %q, want success", env.Status)
	}
}

func TestGetFeed(t *testing.T) {
	svc := &mockFeedService{
		resp: &feed.Response{
			UserID: 42,
			Items: []feed.FeedItem{
				{Kind: feed.KindVideo, ID: 7, Score: 1.5},
			},
			Source: feed.SourceCF,
		},
	}
	router := newTestRouter(svc, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed/user/42?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != 42 {
		t.Errorf("engine called with user %d, want 42", svc.lastUserID)
	}
	if svc.lastLimit != 5 {
		t.Errorf("engine called with limit %d, want 5", svc.lastLimit)
	}

	env := decodeEnvelope(t, rec)
	raw, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var resp feed.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decode feed response: %v", err)
	}
	if resp.Source != feed.SourceCF || len(resp.Items) != 1 {
		t.Errorf("response = %+v, want cf source with one item", resp)
	}
}

func TestGetFeedInvalidUserID(t *testing.T) {
	for _, path := range []string{
		"/api/v1/feed/user/abc",
		"/api/v1/feed/user/0",
		"/api/v1/feed/user/-3",
	} {
		rec := httptest.NewRecorder()
		router := newTestRouter(&mockFeedService{}, &mockPublisher{})
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
			continue
		}
		env := decodeEnvelope(t, rec)
		if env.Error == nil || env.Error.Code != "INVALID_USER_ID" {
			t.Errorf("%s: error = %+v, want INVALID_USER_ID", path, env.Error)
		}
	}
}

func TestGetFeedLimitHandling(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "absent uses default", query: "", want: 10},
		{name: "unparsable uses default", query: "?limit=abc", want: 10},
		{name: "negative uses default", query: "?limit=-5", want: 10},
		{name: "valid passes through", query: "?limit=25", want: 25},
		{name: "oversized clamps to max", query: "?limit=5000", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockFeedService{}
			router := newTestRouter(svc, &mockPublisher{})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed/user/1"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if svc.lastLimit != tt.want {
				t.Errorf("limit = %d, want %d", svc.lastLimit, tt.want)
			}
		})
	}
}

func TestPostEngagement(t *testing.T) {
	pub := &mockPublisher{}
	router := newTestRouter(&mockFeedService{}, pub)

	body := `{"user_id":7,"item_kind":"video","item_id":3,"action":"like","keywords":"travel japan"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/engagement", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", rec.Code, rec.Body.String())
	}
	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.UserID != 7 || ev.Action != profile.ActionLike || ev.ItemKind != feed.KindVideo {
		t.Errorf("event = %+v, want user 7 like on video", ev)
	}
}

func TestPostEngagementRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"user_id":`},
		{name: "missing user", body: `{"action":"like"}`},
		{name: "unknown action", body: `{"user_id":7,"action":"poke"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{}
			router := newTestRouter(&mockFeedService{}, pub)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events/engagement", strings.NewReader(tt.body))
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(pub.events) != 0 {
				t.Errorf("published events = %d, want 0", len(pub.events))
			}
		})
	}
}

func TestPostEngagementPublishFailure(t *testing.T) {
	pub := &mockPublisher{err: errors.New("bus closed")}
	router := newTestRouter(&mockFeedService{}, pub)

	body := `{"user_id":7,"action":"like","keywords":"travel"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/engagement", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRateLimitApplied(t *testing.T) {
	router := newTestRouter(&mockFeedService{}, &mockPublisher{})

	// RateLimit 0 in the test config disables the limiter entirely; a
	// burst well above any sane per-minute budget must still pass.
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed/user/1", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	limited := NewServer(config.ServerConfig{RateLimit: 2}, NewHandler(&mockFeedService{}, &mockPublisher{}, 10, 50, zerolog.Nop()), zerolog.Nop()).Routes()
	saw429 := false
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/user/1", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		limited.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			saw429 = true
			break
		}
	}
	if !saw429 {
		t.Error("limiter never returned 429 under burst")
	}
}
