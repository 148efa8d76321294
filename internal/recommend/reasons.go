// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package recommend

import "github.com/tomtom215/cappi/internal/models"

// Reason strings, in the order Reasons emits them.
const (
	ReasonSafeZone    = "safe zone verified"
	ReasonVerified    = "verified partner"
	ReasonPremium     = "premium experience"
	ReasonHighlyRated = "highly rated"
	ReasonPopular     = "very popular"
)

const (
	safeReasonThreshold   = 70
	ratingReasonThreshold = 4.5
	popularReasonCount    = 50
)

// Reasons returns the justifications for recommending c, in a fixed order.
// The result is never nil.
func Reasons(c *models.Candidate) []string {
	reasons := make([]string, 0, 5)
	if c.EffectiveSafetyScore() >= safeReasonThreshold {
		reasons = append(reasons, ReasonSafeZone)
	}
	if c.Verified {
		reasons = append(reasons, ReasonVerified)
	}
	if c.HasTag("premium") {
		reasons = append(reasons, ReasonPremium)
	}
	if c.Rating != nil && *c.Rating >= ratingReasonThreshold {
		reasons = append(reasons, ReasonHighlyRated)
	}
	if c.RatingCount > popularReasonCount {
		reasons = append(reasons, ReasonPopular)
	}
	return reasons
}
