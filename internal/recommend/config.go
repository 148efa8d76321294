// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/cappi/internal/models"
)

// ModelVersion tags every record produced by this engine.
const ModelVersion = "v1-safe-first"

// Budget signal names accepted by Config.BudgetSignal.
const (
	BudgetSignalFlat      = "flat"
	BudgetSignalPriceTier = "price_tier"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// ModelVersion is stored on every record.
	ModelVersion string `json:"model_version"`

	// Catalog contains candidate selection parameters.
	Catalog CatalogConfig `json:"catalog"`

	// Timeouts bound each dependency call.
	Timeouts TimeoutConfig `json:"timeouts"`

	// History contains recommendation history parameters.
	History HistoryConfig `json:"history"`

	// BudgetSignal selects the budget fit signal: "flat" or "price_tier".
	BudgetSignal string `json:"budget_signal"`

	// DefaultBudget applies when the request carries no budget level.
	DefaultBudget models.BudgetLevel `json:"default_budget"`
}

// CatalogConfig controls which catalog entries become candidates.
type CatalogConfig struct {
	// Limit is the number of candidates fetched per entity type.
	Limit int `json:"limit"`

	// VerifiedPlacesOnly restricts places to verified partners.
	VerifiedPlacesOnly bool `json:"verified_places_only"`

	// MinExperienceRating excludes lower-rated experiences.
	MinExperienceRating float64 `json:"min_experience_rating"`
}

// TimeoutConfig bounds dependency calls.
type TimeoutConfig struct {
	// Zones bounds the safety zone fetch. On expiry generation continues without zone data.
	Zones time.Duration `json:"zones"`

	// Catalog bounds each catalog call.
	Catalog time.Duration `json:"catalog"`

	// Store bounds record persistence and history reads.
	Store time.Duration `json:"store"`

	// Profile bounds the traveler profile lookup.
	Profile time.Duration `json:"profile"`
}

// HistoryConfig contains recommendation history parameters.
type HistoryConfig struct {
	// DefaultLimit applies when Latest is called with a non-positive limit.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps Latest.
	MaxLimit int `json:"max_limit"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		ModelVersion: ModelVersion,
		Catalog: CatalogConfig{
			Limit:               10,
			VerifiedPlacesOnly:  true,
			MinExperienceRating: 4.0,
		},
		Timeouts: TimeoutConfig{
			Zones:   500 * time.Millisecond,
			Catalog: 2 * time.Second,
			Store:   2 * time.Second,
			Profile: time.Second,
		},
		History: HistoryConfig{
			DefaultLimit: 5,
			MaxLimit:     50,
		},
		BudgetSignal:  BudgetSignalFlat,
		DefaultBudget: models.BudgetModerate,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.ModelVersion == "" {
		return fmt.Errorf("model_version must not be empty")
	}
	if c.Catalog.Limit < 1 {
		return fmt.Errorf("catalog.limit must be positive, got %d", c.Catalog.Limit)
	}
	if c.Catalog.MinExperienceRating < 0 || c.Catalog.MinExperienceRating > 5 {
		return fmt.Errorf("catalog.min_experience_rating must be in [0, 5], got %f", c.Catalog.MinExperienceRating)
	}
	if c.Timeouts.Zones <= 0 || c.Timeouts.Catalog <= 0 || c.Timeouts.Store <= 0 || c.Timeouts.Profile <= 0 {
		return fmt.Errorf("timeouts must be positive, got %+v", c.Timeouts)
	}
	if c.History.DefaultLimit < 1 {
		return fmt.Errorf("history.default_limit must be positive, got %d", c.History.DefaultLimit)
	}
	if c.History.MaxLimit < c.History.DefaultLimit {
		return fmt.Errorf("history.max_limit must be >= history.default_limit, got %d < %d", c.History.MaxLimit, c.History.DefaultLimit)
	}
	switch c.BudgetSignal {
	case BudgetSignalFlat, BudgetSignalPriceTier:
	default:
		return fmt.Errorf("budget_signal must be %q or %q, got %q", BudgetSignalFlat, BudgetSignalPriceTier, c.BudgetSignal)
	}
	if !c.DefaultBudget.Valid() {
		return fmt.Errorf("default_budget is not a budget level: %q", c.DefaultBudget)
	}
	return nil
}

// budgetFit returns the configured budget signal.
func (c *Config) budgetFit() BudgetFit {
	if c.BudgetSignal == BudgetSignalPriceTier {
		return PriceTierBudgetFit{}
	}
	return FlatBudgetFit{}
}
