// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no default config file is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
	t.Setenv(ConfigPathEnvVar, "")
	return tmpDir
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path != "/data/cappi.duckdb" {
		t.Errorf("Database.Path = %q, want /data/cappi.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "1GB" {
		t.Errorf("Database.MaxMemory = %q, want 1GB", cfg.Database.MaxMemory)
	}
	if cfg.Safety.CacheTTL != 5*time.Minute {
		t.Errorf("Safety.CacheTTL = %v, want 5m", cfg.Safety.CacheTTL)
	}
	if cfg.Recommend.ZoneTimeout != 500*time.Millisecond {
		t.Errorf("Recommend.ZoneTimeout = %v, want 500ms", cfg.Recommend.ZoneTimeout)
	}
	if cfg.Recommend.MinExperienceRating != 4.0 {
		t.Errorf("Recommend.MinExperienceRating = %v, want 4.0", cfg.Recommend.MinExperienceRating)
	}
	if !cfg.Recommend.VerifiedPlacesOnly {
		t.Error("Recommend.VerifiedPlacesOnly should be true by default")
	}
	if cfg.Recommend.HistoryLimit != 5 || cfg.Recommend.MaxHistoryLimit != 50 {
		t.Errorf("history limits = %d/%d, want 5/50", cfg.Recommend.HistoryLimit, cfg.Recommend.MaxHistoryLimit)
	}
	if cfg.Enrich.StepTimeout != time.Second {
		t.Errorf("Enrich.StepTimeout = %v, want 1s", cfg.Enrich.StepTimeout)
	}
	if cfg.Events.Backend != EventsBackendNone {
		t.Errorf("Events.Backend = %q, want none", cfg.Events.Backend)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"DUCKDB_THREADS", "database.threads"},
		{"SEED_DEMO_DATA", "database.seed_demo_data"},
		{"SAFETY_DATASET_PATH", "safety.dataset_path"},
		{"SAFETY_REFRESH_SCHEDULE", "safety.refresh_schedule"},
		{"RECOMMEND_ZONE_TIMEOUT", "recommend.zone_timeout"},
		{"RECOMMEND_BUDGET_SIGNAL", "recommend.budget_signal"},
		{"BREAKER_FAILURE_RATIO", "breaker.failure_ratio"},
		{"ENRICH_STEP_TIMEOUT", "enrich.step_timeout"},
		{"STORE_IN_MEMORY", "store.in_memory"},
		{"EVENTS_BACKEND", "events.backend"},
		{"NATS_URL", "events.nats_url"},
		{"METRICS_ADDR", "metrics.addr"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	t.Run("no config file exists", func(t *testing.T) {
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, customPath)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")

		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	chdirTemp(t)

	t.Setenv("DUCKDB_PATH", "/tmp/cappi-test.duckdb")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_ZONE_TIMEOUT", "750ms")
	t.Setenv("RECOMMEND_CATALOG_LIMIT", "25")
	t.Setenv("STORE_IN_MEMORY", "true")
	t.Setenv("EVENTS_BACKEND", "nats")
	t.Setenv("NATS_URL", "nats://nats.internal:4222")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/cappi-test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.ZoneTimeout != 750*time.Millisecond {
		t.Errorf("Recommend.ZoneTimeout = %v, want 750ms", cfg.Recommend.ZoneTimeout)
	}
	if cfg.Recommend.CatalogLimit != 25 {
		t.Errorf("Recommend.CatalogLimit = %d, want 25", cfg.Recommend.CatalogLimit)
	}
	if !cfg.Store.InMemory {
		t.Error("Store.InMemory should be true")
	}
	if cfg.Events.Backend != EventsBackendNATS || cfg.Events.NATSURL != "nats://nats.internal:4222" {
		t.Errorf("Events = %+v", cfg.Events)
	}

	// Untouched values keep their defaults
	if cfg.Recommend.CatalogTimeout != 2*time.Second {
		t.Errorf("Recommend.CatalogTimeout = %v, want 2s", cfg.Recommend.CatalogTimeout)
	}
}

// TestLoadWithKoanfConfigFile tests file loading and env precedence over the file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	content := `
database:
  path: /srv/cappi/catalog.duckdb
  seed_demo_data: true
safety:
  dataset_path: /srv/cappi/zones.geojson
  refresh_schedule: "*/10 * * * *"
recommend:
  budget_signal: price_tier
  min_experience_rating: 4.5
logging:
  level: warn
  format: console
`
	configPath := filepath.Join(tmpDir, "cappi.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Database.Path != "/srv/cappi/catalog.duckdb" || !cfg.Database.SeedDemoData {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Safety.RefreshSchedule != "*/10 * * * *" {
		t.Errorf("Safety.RefreshSchedule = %q", cfg.Safety.RefreshSchedule)
	}
	if cfg.Recommend.BudgetSignal != "price_tier" || cfg.Recommend.MinExperienceRating != 4.5 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("environment should override the file: Logging.Level = %q", cfg.Logging.Level)
	}
}

// TestLoadWithKoanfValidationError verifies that invalid values are rejected
func TestLoadWithKoanfValidationError(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error should name LOG_LEVEL: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty database path", func(c *Config) { c.Database.Path = " " }, "DUCKDB_PATH"},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "DUCKDB_THREADS"},
		{"bad refresh schedule", func(c *Config) { c.Safety.RefreshSchedule = "every now and then" }, "SAFETY_REFRESH_SCHEDULE"},
		{"schedule without dataset", func(c *Config) { c.Safety.DatasetPath = "" }, "SAFETY_DATASET_PATH"},
		{"no schedule without dataset", func(c *Config) { c.Safety.DatasetPath = ""; c.Safety.RefreshSchedule = "" }, ""},
		{"zero catalog limit", func(c *Config) { c.Recommend.CatalogLimit = 0 }, "RECOMMEND_CATALOG_LIMIT"},
		{"rating above five", func(c *Config) { c.Recommend.MinExperienceRating = 5.5 }, "RECOMMEND_MIN_EXPERIENCE_RATING"},
		{"zero zone timeout", func(c *Config) { c.Recommend.ZoneTimeout = 0 }, "timeouts"},
		{"history max below default", func(c *Config) { c.Recommend.MaxHistoryLimit = 2 }, "RECOMMEND_MAX_HISTORY_LIMIT"},
		{"failure ratio zero", func(c *Config) { c.Breaker.FailureRatio = 0 }, "BREAKER_FAILURE_RATIO"},
		{"zero step timeout", func(c *Config) { c.Enrich.StepTimeout = 0 }, "ENRICH_STEP_TIMEOUT"},
		{"store without path", func(c *Config) { c.Store.Path = "" }, "STORE_PATH"},
		{"in-memory store without path", func(c *Config) { c.Store.Path = ""; c.Store.InMemory = true }, ""},
		{"unknown backend", func(c *Config) { c.Events.Backend = "kafka" }, "EVENTS_BACKEND"},
		{"nats with http url", func(c *Config) { c.Events.Backend = EventsBackendNATS; c.Events.NATSURL = "http://nats:4222" }, "NATS_URL"},
		{"nats without host", func(c *Config) { c.Events.Backend = EventsBackendNATS; c.Events.NATSURL = "nats://" }, "NATS_URL"},
		{"memory without topic", func(c *Config) { c.Events.Backend = EventsBackendMemory; c.Events.Topic = "" }, "EVENTS_TOPIC"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "METRICS_PATH"},
		{"metrics disabled ignores addr", func(c *Config) { c.Metrics.Enabled = false; c.Metrics.Addr = "" }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
