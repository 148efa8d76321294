// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateDatabase,
		c.validateSafety,
		c.validateRecommend,
		c.validateBreaker,
		c.validateEnrich,
		c.validateStore,
		c.validateEvents,
		c.validateMetrics,
		c.validateLogging,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateDatabase validates DuckDB settings
func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

// validateSafety validates the zone directory settings
func (c *Config) validateSafety() error {
	if c.Safety.CacheTTL <= 0 {
		return fmt.Errorf("SAFETY_CACHE_TTL must be positive, got %v", c.Safety.CacheTTL)
	}
	if c.Safety.RefreshSchedule == "" {
		return nil
	}
	if c.Safety.DatasetPath == "" {
		return fmt.Errorf("SAFETY_REFRESH_SCHEDULE requires SAFETY_DATASET_PATH")
	}
	if _, err := cron.ParseStandard(c.Safety.RefreshSchedule); err != nil {
		return fmt.Errorf("SAFETY_REFRESH_SCHEDULE is invalid: %w", err)
	}
	return nil
}

// validateRecommend checks the ranges the engine cannot recover from.
// Budget names are checked by the engine's own configuration.
func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.CatalogLimit < 1 {
		return fmt.Errorf("RECOMMEND_CATALOG_LIMIT must be positive, got %d", r.CatalogLimit)
	}
	if r.MinExperienceRating < 0 || r.MinExperienceRating > 5 {
		return fmt.Errorf("RECOMMEND_MIN_EXPERIENCE_RATING must be in [0, 5], got %v", r.MinExperienceRating)
	}
	if r.ZoneTimeout <= 0 || r.CatalogTimeout <= 0 || r.StoreTimeout <= 0 || r.ProfileTimeout <= 0 {
		return fmt.Errorf("recommendation timeouts must be positive")
	}
	if r.HistoryLimit < 1 || r.MaxHistoryLimit < r.HistoryLimit {
		return fmt.Errorf("RECOMMEND_MAX_HISTORY_LIMIT (%d) must be >= RECOMMEND_HISTORY_LIMIT (%d) >= 1", r.MaxHistoryLimit, r.HistoryLimit)
	}
	return nil
}

// validateBreaker validates the catalog circuit breaker
func (c *Config) validateBreaker() error {
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got %v", c.Breaker.Timeout)
	}
	return nil
}

func (c *Config) validateEnrich() error {
	if c.Enrich.StepTimeout <= 0 {
		return fmt.Errorf("ENRICH_STEP_TIMEOUT must be positive, got %v", c.Enrich.StepTimeout)
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	return nil
}

// validEventBackends defines the allowed event backends
var validEventBackends = map[string]bool{
	EventsBackendNone:   true,
	EventsBackendMemory: true,
	EventsBackendNATS:   true,
}

// validateEvents validates event publishing settings
func (c *Config) validateEvents() error {
	if !validEventBackends[c.Events.Backend] {
		return fmt.Errorf("EVENTS_BACKEND must be one of: none, memory, nats")
	}
	if c.Events.Backend == EventsBackendNone {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_BACKEND=%s", c.Events.Backend)
	}
	if c.Events.Backend == EventsBackendNATS {
		if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	}
	return nil
}

// validateNATSURL validates that the NATS URL is properly formatted
// Supports: nats://, tls://, ws:// and wss:// schemes
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222, nats.example.com)")
	}

	return nil
}

func (c *Config) validateMetrics() error {
	if !c.Metrics.Enabled {
		return nil
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("METRICS_ADDR is required when METRICS_ENABLED=true")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with /, got %q", c.Metrics.Path)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
