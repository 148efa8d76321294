// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package recommend

import (
	"sort"

	"github.com/tomtom215/cappi/internal/metrics"
	"github.com/tomtom215/cappi/internal/models"
)

// MinSafetyScore is the safety floor for a risk tolerance:
// LOW 70, MEDIUM 50, HIGH 30. Unknown tolerances use the MEDIUM floor.
func MinSafetyScore(risk models.RiskTolerance) int {
	switch risk {
	case models.RiskToleranceLow:
		return 70
	case models.RiskToleranceHigh:
		return 30
	default:
		return 50
	}
}

// Ranker scores and orders candidates.
type Ranker struct {
	scorer *Scorer
}

// NewRanker creates a ranker over scorer (nil uses the default scorer).
func NewRanker(scorer *Scorer) *Ranker {
	if scorer == nil {
		scorer = NewScorer(nil, nil)
	}
	return &Ranker{scorer: scorer}
}

// Rank scores places then experiences and sorts them by score, highest
// first. Equal scores keep discovery order: places before experiences, and
// catalog order within each type. Candidates below the risk tolerance's
// safety floor are dropped. The result is never nil and never truncated.
func (r *Ranker) Rank(places, experiences []models.Candidate, sc SignalContext, risk models.RiskTolerance) []models.RankedItem {
	floor := MinSafetyScore(risk)
	items := make([]models.RankedItem, 0, len(places)+len(experiences))

	add := func(cands []models.Candidate) {
		for i := range cands {
			c := &cands[i]
			safetyScore := c.EffectiveSafetyScore()
			if safetyScore < floor {
				metrics.RecordDroppedCandidate(string(c.EntityType))
				continue
			}
			items = append(items, models.RankedItem{
				EntityType:  c.EntityType,
				EntityID:    c.EntityID,
				Name:        c.DisplayName,
				Score:       r.scorer.Score(c, sc),
				Reasons:     Reasons(c),
				SafetyScore: safetyScore,
			})
		}
	}
	add(places)
	add(experiences)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items
}
