// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package config loads application configuration with Koanf v2, layered
// as defaults < YAML file < environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority
// order. The first file found wins.
var DefaultConfigPaths = []string{
	"feedengine.yaml",
	"feedengine.yml",
	"/etc/feedengine/feedengine.yaml",
	"/etc/feedengine/feedengine.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "FEEDENGINE_CONFIG"

// envPrefix namespaces all environment overrides. A double underscore
// separates nesting levels so key names may contain single underscores:
// FEEDENGINE_SERVER__PORT -> server.port
// FEEDENGINE_ENGINE__AD_GAP_MIN -> engine.ad_gap_min
const envPrefix = "FEEDENGINE_"

// Config is the application-level configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Database DatabaseConfig `koanf:"database"`
	Engine   EngineConfig   `koanf:"engine"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is requests per minute per client IP. 0 disables.
	RateLimit int `koanf:"rate_limit"`
}

// LoggingConfig configures the zerolog backend.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`

	// Threads for DuckDB workers. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// EngineConfig holds the operational engine knobs. Scoring weight tuning
// beyond these lives in the feed package configuration, which cmd/server
// assembles from this section.
type EngineConfig struct {
	RandomSeed   int64 `koanf:"random_seed"`
	DefaultLimit int   `koanf:"default_limit"`
	MaxLimit     int   `koanf:"max_limit"`

	RebuildOnStartup bool          `koanf:"rebuild_on_startup"`
	RebuildInterval  time.Duration `koanf:"rebuild_interval"`

	AdFrequencyCap   int  `koanf:"ad_frequency_cap"`
	AdGapMin         int  `koanf:"ad_gap_min"`
	AdGapMax         int  `koanf:"ad_gap_max"`
	AdRandomFallback bool `koanf:"ad_random_fallback"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/feedengine.duckdb",
			MaxMemory: "2GB",
			Threads:   0,
		},
		Engine: EngineConfig{
			RandomSeed:       42,
			DefaultLimit:     10,
			MaxLimit:         50,
			RebuildOnStartup: true,
			RebuildInterval:  15 * time.Minute,
			AdFrequencyCap:   3,
			AdGapMin:         7,
			AdGapMax:         10,
			AdRandomFallback: true,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file, and
// FEEDENGINE_* environment variables, in increasing priority.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Engine.DefaultLimit < 1 || c.Engine.MaxLimit < c.Engine.DefaultLimit {
		return fmt.Errorf("engine limits must satisfy 1 <= default <= max")
	}
	if c.Engine.RebuildInterval < time.Minute {
		return fmt.Errorf("engine.rebuild_interval must be at least 1m, got %s", c.Engine.RebuildInterval)
	}
	return nil
}

// envTransform maps FEEDENGINE_SECTION__KEY_NAME to section.key_name.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// findConfigFile returns the first existing config file, honoring the
// FEEDENGINE_CONFIG override.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
