// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/driftworks/feedengine/internal/config"
)

// Server is the HTTP surface. It implements suture.Service so the
// supervisor owns its lifecycle.
type Server struct {
	cfg     config.ServerConfig
	handler *Handler
	logger  zerolog.Logger
	name    string
}

// NewServer creates the server around the given handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewServer(cfg config.ServerConfig, handler *Handler, logger zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With().Str("component", "api").Logger(),
		name:    "http-server",
	}
}

// Routes assembles the router. Split out so tests can drive the full
// middleware stack with httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)

	r.Get("/healthz", s.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Get("/feed/user/{userID}", s.handler.GetFeed)
		r.Post("/events/engagement", s.handler.PostEngagement)
	})

	return r
}

// Serve implements suture.Service: it runs the HTTP server until the
// context is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("http shutdown incomplete")
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// String returns the service name for supervisor logging.
func (s *Server) String() string {
	return s.name
}
