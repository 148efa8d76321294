// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package models

import (
	"strings"
	"time"
)

// RiskTolerance is how much risk a traveler accepts.
type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "LOW"
	RiskToleranceMedium RiskTolerance = "MEDIUM"
	RiskToleranceHigh   RiskTolerance = "HIGH"
)

// Valid reports whether r is one of the known tolerances.
func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskToleranceLow, RiskToleranceMedium, RiskToleranceHigh:
		return true
	}
	return false
}

// ParseRiskTolerance parses a tolerance, case-insensitively.
func ParseRiskTolerance(s string) (RiskTolerance, bool) {
	r := RiskTolerance(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// BudgetLevel is the spending band of a trip or request.
type BudgetLevel string

const (
	BudgetEconomy     BudgetLevel = "BUDGET"
	BudgetModerate    BudgetLevel = "MODERATE"
	BudgetLuxury      BudgetLevel = "LUXURY"
	BudgetUltraLuxury BudgetLevel = "ULTRA_LUXURY"
)

// Tier maps the budget level onto the 1-4 catalog price tier scale.
// Unknown levels return 0.
func (b BudgetLevel) Tier() int {
	switch b {
	case BudgetEconomy:
		return 1
	case BudgetModerate:
		return 2
	case BudgetLuxury:
		return 3
	case BudgetUltraLuxury:
		return 4
	default:
		return 0
	}
}

// Valid reports whether b is one of the known budget levels.
func (b BudgetLevel) Valid() bool {
	return b.Tier() > 0
}

// RequestContext holds the parameters of a generation request. A copy is
// stored in every RecommendationRecord.
type RequestContext struct {
	City          string         `json:"city" validate:"required,max=120"`
	Country       string         `json:"country,omitempty" validate:"omitempty,max=120"`
	BudgetLevel   BudgetLevel    `json:"budget_level,omitempty" validate:"omitempty,budget_level"`
	RiskTolerance RiskTolerance  `json:"risk_tolerance,omitempty" validate:"omitempty,risk_tolerance"`
	PartySize     int            `json:"party_size,omitempty" validate:"omitempty,min=1,max=50"`
	Preferences   map[string]any `json:"preferences,omitempty"`
}

// RankedItem is a scored candidate in a recommendation record.
type RankedItem struct {
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Name        string     `json:"name"`
	Score       int        `json:"score"`
	Reasons     []string   `json:"reasons"`
	SafetyScore int        `json:"safety_score"`
}

// RecommendationRecord is an immutable snapshot of one generation.
// Records are append-only: never updated or deleted by the engine.
type RecommendationRecord struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Context      RequestContext `json:"context"`
	Items        []RankedItem   `json:"items"`
	ModelVersion string         `json:"model_version"`
	CreatedAt    time.Time      `json:"created_at"`
}
