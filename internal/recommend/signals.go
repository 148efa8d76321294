// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package recommend

import (
	"github.com/tomtom215/cappi/internal/models"
	"github.com/tomtom215/cappi/internal/safety"
)

// MaxSignal is the upper bound of every pluggable signal.
const MaxSignal = 20

// SignalContext carries the per-request inputs signals may look at.
type SignalContext struct {
	Budget models.BudgetLevel
	// Zones are the zones already fetched for the request city.
	Zones []models.SafetyZone
}

// BudgetFit rates how well a candidate matches the requested budget, in [0, MaxSignal].
type BudgetFit interface {
	BudgetFit(c *models.Candidate, sc SignalContext) int
}

// LocationQuality rates a candidate's location, in [0, MaxSignal].
type LocationQuality interface {
	LocationQuality(c *models.Candidate, sc SignalContext) int
}

// FlatBudgetFit rates every candidate MaxSignal.
type FlatBudgetFit struct{}

// BudgetFit implements BudgetFit.
func (FlatBudgetFit) BudgetFit(*models.Candidate, SignalContext) int {
	return MaxSignal
}

// PriceTierBudgetFit compares the candidate's price tier with the budget
// level's tier. Candidates or budgets without a tier rate MaxSignal.
type PriceTierBudgetFit struct{}

// BudgetFit implements BudgetFit.
func (PriceTierBudgetFit) BudgetFit(c *models.Candidate, sc SignalContext) int {
	want := sc.Budget.Tier()
	if c.PriceTier <= 0 || want == 0 {
		return MaxSignal
	}
	diff := c.PriceTier - want
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return MaxSignal
	case 1:
		return 12
	case 2:
		return 4
	default:
		return 0
	}
}

// ZoneLocationQuality rates a candidate by the risk level of the smallest
// request zone containing it: SAFE 20, CAUTION 10, DANGER 0. Candidates
// without coordinates or outside every zone rate NeutralLocationQuality.
type ZoneLocationQuality struct{}

// NeutralLocationQuality is used when no zone information applies.
const NeutralLocationQuality = 10

// LocationQuality implements LocationQuality.
func (ZoneLocationQuality) LocationQuality(c *models.Candidate, sc SignalContext) int {
	if c.Location == nil || len(sc.Zones) == 0 {
		return NeutralLocationQuality
	}
	zone := safety.SmallestContaining(sc.Zones, *c.Location)
	if zone == nil {
		return NeutralLocationQuality
	}
	switch zone.RiskLevel {
	case models.RiskSafe:
		return MaxSignal
	case models.RiskDanger:
		return 0
	default:
		return NeutralLocationQuality
	}
}

func clampSignal(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxSignal {
		return MaxSignal
	}
	return v
}
