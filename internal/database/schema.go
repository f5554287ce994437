// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the tables backing the seven provider
// contracts. DuckDB executes these idempotently on every boot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGINT PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		description VARCHAR NOT NULL DEFAULT '',
		tags VARCHAR NOT NULL DEFAULT '',
		keywords VARCHAR NOT NULL DEFAULT '',
		creator_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		views BIGINT NOT NULL DEFAULT 0,
		likes BIGINT NOT NULL DEFAULT 0,
		comments BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id BIGINT PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		description VARCHAR NOT NULL DEFAULT '',
		tags VARCHAR NOT NULL DEFAULT '',
		keywords VARCHAR NOT NULL DEFAULT '',
		creator_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		views BIGINT NOT NULL DEFAULT 0,
		likes BIGINT NOT NULL DEFAULT 0,
		comments BIGINT NOT NULL DEFAULT 0,
		watch_seconds DOUBLE NOT NULL DEFAULT 0,
		completed_watches BIGINT NOT NULL DEFAULT 0,
		source_post_id BIGINT NOT NULL DEFAULT 0
	)`,
	// One row per (user, item); writers upsert with last-write-wins.
	`CREATE TABLE IF NOT EXISTS interactions (
		user_id BIGINT NOT NULL,
		item_kind VARCHAR NOT NULL,
		item_id BIGINT NOT NULL,
		watch_seconds DOUBLE NOT NULL DEFAULT 0,
		liked BOOLEAN,
		shared BOOLEAN NOT NULL DEFAULT FALSE,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		commented BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, item_kind, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS follows (
		follower_id BIGINT NOT NULL,
		followed_id BIGINT NOT NULL,
		PRIMARY KEY (follower_id, followed_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ads (
		id BIGINT PRIMARY KEY,
		status VARCHAR NOT NULL,
		title VARCHAR NOT NULL DEFAULT '',
		keywords VARCHAR NOT NULL DEFAULT '',
		target_start TIMESTAMP,
		target_end TIMESTAMP
	)`,
	// Frequency capping counts rows per (ad, user, day); uniqueness is
	// deliberately not enforced here.
	`CREATE TABLE IF NOT EXISTS ad_impressions (
		ad_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		shown_on DATE NOT NULL,
		score DOUBLE NOT NULL DEFAULT 0,
		shown_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS interest_keywords (
		user_id BIGINT NOT NULL,
		keyword VARCHAR NOT NULL,
		weight DOUBLE NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, keyword)
	)`,
}

// initSchema creates all tables if absent.
func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
