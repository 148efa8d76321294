// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

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

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cappi/config.yaml",
	"/etc/cappi/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Event backends.
const (
	EventsBackendNone   = "none"
	EventsBackendMemory = "memory"
	EventsBackendNATS   = "nats"
)

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "/data/cappi.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			SeedDemoData: false,
		},
		Safety: SafetyConfig{
			DatasetPath:     "data/zones.geojson",
			CacheTTL:        5 * time.Minute,
			RefreshSchedule: "@every 15m",
		},
		Recommend: RecommendConfig{
			CatalogLimit:        10,
			VerifiedPlacesOnly:  true,
			MinExperienceRating: 4.0,
			ZoneTimeout:         500 * time.Millisecond,
			CatalogTimeout:      2 * time.Second,
			StoreTimeout:        2 * time.Second,
			ProfileTimeout:      time.Second,
			HistoryLimit:        5,
			MaxHistoryLimit:     50,
			BudgetSignal:        "flat",
			DefaultBudget:       "MODERATE",
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Enrich: EnrichConfig{
			StepTimeout: time.Second,
		},
		Store: StoreConfig{
			Path:     "/data/recommendations",
			InMemory: false,
		},
		Events: EventsConfig{
			Backend:        EventsBackendNone,
			Topic:          "recommendations.generated",
			NATSURL:        "nats://127.0.0.1:4222",
			ConnectTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9464",
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
//
// Loading order (later sources override earlier):
//  1. Built-in defaults (from defaultConfig())
//  2. Config file (config.yaml, or the path in CONFIG_PATH)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// DUCKDB_PATH -> database.path
	// RECOMMEND_ZONE_TIMEOUT -> recommend.zone_timeout
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when none exists.
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

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	// Safety zones
	"safety_dataset_path":     "safety.dataset_path",
	"safety_cache_ttl":        "safety.cache_ttl",
	"safety_refresh_schedule": "safety.refresh_schedule",

	// Recommendation engine
	"recommend_catalog_limit":         "recommend.catalog_limit",
	"recommend_verified_places_only":  "recommend.verified_places_only",
	"recommend_min_experience_rating": "recommend.min_experience_rating",
	"recommend_zone_timeout":          "recommend.zone_timeout",
	"recommend_catalog_timeout":       "recommend.catalog_timeout",
	"recommend_store_timeout":         "recommend.store_timeout",
	"recommend_profile_timeout":       "recommend.profile_timeout",
	"recommend_history_limit":         "recommend.history_limit",
	"recommend_max_history_limit":     "recommend.max_history_limit",
	"recommend_budget_signal":         "recommend.budget_signal",
	"recommend_default_budget":        "recommend.default_budget",

	// Catalog circuit breaker
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Enrichment
	"enrich_step_timeout": "enrich.step_timeout",

	// Record store
	"store_path":      "store.path",
	"store_in_memory": "store.in_memory",

	// Events
	"events_backend":         "events.backend",
	"events_topic":           "events.topic",
	"nats_url":               "events.nats_url",
	"events_connect_timeout": "events.connect_timeout",

	// Metrics
	"metrics_enabled": "metrics.enabled",
	"metrics_addr":    "metrics.addr",
	"metrics_path":    "metrics.path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf paths.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// ConfigFile returns the config file LoadWithKoanf reads, or "" when none
// exists.
func ConfigFile() string {
	return findConfigFile()
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for synchronizing access to a reloaded Config.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
