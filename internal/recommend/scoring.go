// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package recommend

import (
	"math"

	"github.com/tomtom215/cappi/internal/models"
)

// Score weights. Each place factor is normalized to [0,100] before weighting,
// so the four factors contribute at most 40, 20, 20 and 20 points.
const (
	placeSafetyWeight   = 0.4
	placeVerifiedWeight = 0.2
	placeBudgetWeight   = 0.2
	placeLocationWeight = 0.2

	experienceSafetyWeight  = 0.4
	experienceRatingPoints  = 30.0
	experiencePopularityCap = 10.0
)

// Scorer turns candidates into integer scores in [0,100]. It is pure and
// deterministic: identical candidates and context always score the same.
type Scorer struct {
	budget   BudgetFit
	location LocationQuality
}

// NewScorer creates a scorer. Nil signals default to FlatBudgetFit and
// ZoneLocationQuality.
func NewScorer(budget BudgetFit, location LocationQuality) *Scorer {
	if budget == nil {
		budget = FlatBudgetFit{}
	}
	if location == nil {
		location = ZoneLocationQuality{}
	}
	return &Scorer{budget: budget, location: location}
}

// Score dispatches on the candidate's entity type.
func (s *Scorer) Score(c *models.Candidate, sc SignalContext) int {
	if c.EntityType == models.EntityExperience {
		return s.ScoreExperience(c, sc)
	}
	return s.ScorePlace(c, sc)
}

// ScorePlace scores a place:
// 0.4*safety + 0.2*(verified ? 100 : 0) + 0.2*(budgetFit*5) + 0.2*(locationQuality*5).
func (s *Scorer) ScorePlace(c *models.Candidate, sc SignalContext) int {
	verified := 0.0
	if c.Verified {
		verified = 100
	}
	budget := float64(clampSignal(s.budget.BudgetFit(c, sc)))
	location := float64(clampSignal(s.location.LocationQuality(c, sc)))

	score := placeSafetyWeight*float64(clampScore(c.SafetyScore)) +
		placeVerifiedWeight*verified +
		placeBudgetWeight*budget*5 +
		placeLocationWeight*location*5
	return roundScore(score)
}

// ScoreExperience scores an experience:
// 0.4*(linked safety or 50) + 30*(rating/5) + budgetFit + min(10, ratingCount/2).
// An absent rating contributes nothing.
func (s *Scorer) ScoreExperience(c *models.Candidate, sc SignalContext) int {
	rating := 0.0
	if c.Rating != nil {
		rating = math.Max(0, math.Min(5, *c.Rating))
	}
	popularity := 0.0
	if c.RatingCount > 0 {
		popularity = math.Min(experiencePopularityCap, float64(c.RatingCount)/2)
	}
	budget := float64(clampSignal(s.budget.BudgetFit(c, sc)))

	score := experienceSafetyWeight*float64(clampScore(c.EffectiveSafetyScore())) +
		experienceRatingPoints*(rating/5) +
		budget +
		popularity
	return roundScore(score)
}

// roundScore rounds half up and clamps to [0,100].
func roundScore(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	return clampScore(int(math.Floor(x + 0.5)))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
