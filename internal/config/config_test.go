// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no stray feedengine.yaml from the repo root

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 300 {
		t.Errorf("server.rate_limit = %d, want 300", cfg.Server.RateLimit)
	}
	if cfg.Engine.AdFrequencyCap != 3 || cfg.Engine.AdGapMin != 7 || cfg.Engine.AdGapMax != 10 {
		t.Errorf("ad defaults = %d/%d/%d, want 3/7/10",
			cfg.Engine.AdFrequencyCap, cfg.Engine.AdGapMin, cfg.Engine.AdGapMax)
	}
	if cfg.Engine.RebuildInterval != 15*time.Minute {
		t.Errorf("engine.rebuild_interval = %s, want 15m", cfg.Engine.RebuildInterval)
	}
	if cfg.Database.Path == "" {
		t.Error("database.path default missing")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FEEDENGINE_SERVER__PORT", "9999")
	t.Setenv("FEEDENGINE_ENGINE__AD_GAP_MIN", "5")
	t.Setenv("FEEDENGINE_LOGGING__LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Engine.AdGapMin != 5 {
		t.Errorf("engine.ad_gap_min = %d, want 5", cfg.Engine.AdGapMin)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := []byte("server:\n  port: 7070\nengine:\n  max_limit: 25\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want 7070 from file", cfg.Server.Port)
	}
	if cfg.Engine.MaxLimit != 25 {
		t.Errorf("engine.max_limit = %d, want 25 from file", cfg.Engine.MaxLimit)
	}
	// Untouched keys keep their defaults.
	if cfg.Engine.DefaultLimit != 10 {
		t.Errorf("engine.default_limit = %d, want default 10", cfg.Engine.DefaultLimit)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("FEEDENGINE_SERVER__PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("server.port = %d, want 6060 (env over file)", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "empty db path", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "zero default limit", mutate: func(c *Config) { c.Engine.DefaultLimit = 0 }},
		{name: "max below default", mutate: func(c *Config) {
			c.Engine.DefaultLimit = 30
			c.Engine.MaxLimit = 20
		}},
		{name: "rebuild interval too short", mutate: func(c *Config) {
			c.Engine.RebuildInterval = time.Second
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FEEDENGINE_SERVER__PORT", "server.port"},
		{"FEEDENGINE_ENGINE__AD_GAP_MIN", "engine.ad_gap_min"},
		{"FEEDENGINE_LOGGING__LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
