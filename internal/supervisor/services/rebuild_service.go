// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package services provides Suture service wrappers for application
// components.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotRefresher is the engine surface the rebuild service needs.
// An interface here keeps the service free of engine internals.
type SnapshotRefresher interface {
	// Refresh rebuilds stale cache sub-states, or all of them when
	// force is true.
	Refresh(ctx context.Context, force bool) error
}

// RebuildServiceConfig holds configuration for the cache rebuild
// service.
type RebuildServiceConfig struct {
	// RebuildOnStartup warms the cache when the service starts.
	RebuildOnStartup bool

	// RebuildInterval is how often to force a full rebuild.
	RebuildInterval time.Duration
}

// RebuildService periodically forces a full snapshot rebuild so request
// paths rarely pay the build cost. Readers keep the previous snapshot
// while a rebuild runs.
type RebuildService struct {
	engine SnapshotRefresher
	config RebuildServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRebuildService creates the rebuild service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(engine SnapshotRefresher, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	return &RebuildService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "rebuild").Logger(),
		name:   "rebuild-service",
	}
}

// Serve implements the suture.Service interface.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("rebuild_on_startup", s.config.RebuildOnStartup).
		Dur("rebuild_interval", s.config.RebuildInterval).
		Msg("rebuild service starting")

	if s.config.RebuildOnStartup {
		if err := s.rebuild(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup rebuild degraded (will retry on schedule)")
		}
	}

	interval := s.config.RebuildInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := s.rebuild(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled rebuild degraded")
			}
		}
	}
}

// rebuild runs one forced rebuild cycle with a bounded timeout.
func (s *RebuildService) rebuild(ctx context.Context) error {
	rebuildCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	start := time.Now()
	err := s.engine.Refresh(rebuildCtx, true)
	if err == nil {
		s.logger.Info().Dur("duration", time.Since(start)).Msg("snapshot rebuild complete")
	}
	return err
}

// String returns the service name for logging.
func (s *RebuildService) String() string {
	return s.name
}
