// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package config provides centralized configuration management for Cappi.

Configuration is layered with Koanf v2. Later sources override earlier ones:

  - Built-in defaults (defaultConfig)
  - YAML config file: CONFIG_PATH, else config.yaml, config.yml,
    /etc/cappi/config.yaml, /etc/cappi/config.yml
  - Environment variables (mapped names only; unknown variables are ignored)

# Environment Variables

Database (DatabaseConfig):
  - DUCKDB_PATH: Database file path (default: /data/cappi.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
  - DUCKDB_THREADS: DuckDB threads, 0 = NumCPU (default: 0)
  - SEED_DEMO_DATA: Insert the demo catalog on startup (default: false)

Safety zones (SafetyConfig):
  - SAFETY_DATASET_PATH: GeoJSON zone dataset (default: data/zones.geojson)
  - SAFETY_CACHE_TTL: Zone lookup cache TTL (default: 5m)
  - SAFETY_REFRESH_SCHEDULE: Cron schedule for reloading the dataset (default: @every 15m)

Recommendations (RecommendConfig):
  - RECOMMEND_CATALOG_LIMIT: Candidates per entity type (default: 10)
  - RECOMMEND_VERIFIED_PLACES_ONLY: Only verified partner places (default: true)
  - RECOMMEND_MIN_EXPERIENCE_RATING: Experience rating cutoff (default: 4.0)
  - RECOMMEND_ZONE_TIMEOUT, RECOMMEND_CATALOG_TIMEOUT, RECOMMEND_STORE_TIMEOUT,
    RECOMMEND_PROFILE_TIMEOUT: Dependency timeouts (defaults: 500ms, 2s, 2s, 1s)
  - RECOMMEND_HISTORY_LIMIT, RECOMMEND_MAX_HISTORY_LIMIT: History page sizes (defaults: 5, 50)
  - RECOMMEND_BUDGET_SIGNAL: flat or price_tier (default: flat)
  - RECOMMEND_DEFAULT_BUDGET: Budget level when the request has none (default: MODERATE)

Catalog circuit breaker (BreakerConfig):
  - BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_MIN_REQUESTS, BREAKER_FAILURE_RATIO

Enrichment (EnrichConfig):
  - ENRICH_STEP_TIMEOUT: Per-step timeout (default: 1s)

Record store (StoreConfig):
  - STORE_PATH: Badger directory (default: /data/recommendations)
  - STORE_IN_MEMORY: Keep records in memory only (default: false)

Events (EventsConfig):
  - EVENTS_BACKEND: none, memory or nats (default: none)
  - EVENTS_TOPIC: Topic for generated recommendations (default: recommendations.generated)
  - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
  - EVENTS_CONNECT_TIMEOUT: NATS connect timeout (default: 5s)

Metrics (MetricsConfig):
  - METRICS_ENABLED, METRICS_ADDR, METRICS_PATH (defaults: true, :9464, /metrics)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller information (default: false)

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}

A loaded Config is never mutated and is safe for concurrent reads.
*/
package config
