// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Command server runs the feed engine: the embedded DuckDB store, the
// recommendation engine with its snapshot cache, the interest-profile
// event pipeline, and the HTTP API, all under one supervision tree.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftworks/feedengine/internal/api"
	"github.com/driftworks/feedengine/internal/config"
	"github.com/driftworks/feedengine/internal/database"
	"github.com/driftworks/feedengine/internal/logging"
	"github.com/driftworks/feedengine/internal/profile"
	"github.com/driftworks/feedengine/internal/supervisor"
	"github.com/driftworks/feedengine/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()
	logger.Info().Msg("feedengine starting")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("database close failed")
		}
	}()

	provider := database.NewFeedProvider(db)
	engine, err := buildEngine(cfg, provider, logger)
	if err != nil {
		return err
	}

	bus := profile.NewBus(logger)
	defer func() {
		if cerr := bus.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("event bus close failed")
		}
	}()
	publisher := profile.NewPublisher(bus)
	updater := profile.NewUpdater(bus, provider, logger)

	handler := api.NewHandler(engine, publisher,
		cfg.Engine.DefaultLimit, cfg.Engine.MaxLimit, logger)
	server := api.NewServer(cfg.Server, handler, logger)

	rebuild := services.NewRebuildService(engine, services.RebuildServiceConfig{
		RebuildOnStartup: cfg.Engine.RebuildOnStartup,
		RebuildInterval:  cfg.Engine.RebuildInterval,
	}, logger)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddEngineService(rebuild)
	tree.AddEngineService(updater)
	tree.AddAPIService(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Int("port", cfg.Server.Port).Msg("supervision tree starting")
	return tree.Serve(ctx)
}
