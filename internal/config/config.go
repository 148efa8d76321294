// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package config

import "time"

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Config is immutable after LoadWithKoanf and safe for concurrent reads.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Safety    SafetyConfig    `koanf:"safety"`
	Recommend RecommendConfig `koanf:"recommend"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Enrich    EnrichConfig    `koanf:"enrich"`
	Store     StoreConfig     `koanf:"store"`
	Events    EventsConfig    `koanf:"events"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings for the catalog, profiles, trips and zones.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)

	// SeedDemoData inserts the Cancún and Medellín demo catalog on startup.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// SafetyConfig holds safety zone directory settings.
type SafetyConfig struct {
	// DatasetPath is a GeoJSON FeatureCollection of zones. Empty keeps the
	// zones already stored in the database.
	DatasetPath string `koanf:"dataset_path"`

	// CacheTTL bounds how long zone lookups are cached.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// RefreshSchedule is a cron expression (robfig/cron syntax, descriptors
	// such as "@every 15m" allowed) for reloading DatasetPath. Empty disables.
	RefreshSchedule string `koanf:"refresh_schedule"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	CatalogLimit        int     `koanf:"catalog_limit"`
	VerifiedPlacesOnly  bool    `koanf:"verified_places_only"`
	MinExperienceRating float64 `koanf:"min_experience_rating"`

	ZoneTimeout    time.Duration `koanf:"zone_timeout"`
	CatalogTimeout time.Duration `koanf:"catalog_timeout"`
	StoreTimeout   time.Duration `koanf:"store_timeout"`
	ProfileTimeout time.Duration `koanf:"profile_timeout"`

	HistoryLimit    int `koanf:"history_limit"`
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// BudgetSignal is "flat" or "price_tier".
	BudgetSignal  string `koanf:"budget_signal"`
	DefaultBudget string `koanf:"default_budget"`
}

// BreakerConfig holds the catalog circuit breaker settings.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// EnrichConfig holds context enrichment settings.
type EnrichConfig struct {
	StepTimeout time.Duration `koanf:"step_timeout"`
}

// StoreConfig holds the Badger recommendation record store settings.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// EventsConfig holds recommendation event publishing settings.
type EventsConfig struct {
	// Backend is "none", "memory" (Watermill GoChannel) or "nats".
	Backend string `koanf:"backend"`

	// Topic receives one message per generated recommendation.
	Topic string `koanf:"topic"`

	NATSURL        string        `koanf:"nats_url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	Path    string `koanf:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}
