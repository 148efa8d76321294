// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package recommend

import (
	"context"

	"github.com/tomtom215/cappi/internal/models"
)

// ProfileAccessor reads traveler profiles. A missing profile is reported
// as models.ErrNotFound.
type ProfileAccessor interface {
	ProfileByUserID(ctx context.Context, userID string) (*models.TravelerProfile, error)
}

// ZoneSource supplies the safety zones of a city with their active alerts.
type ZoneSource interface {
	ZonesByCity(ctx context.Context, city, country string) ([]models.SafetyZone, error)
}

// Publisher announces generated records. Publishing is best effort.
type Publisher interface {
	PublishRecommendation(ctx context.Context, record *models.RecommendationRecord) error
}

// SafetyInfo summarizes the safety context a generation ran under.
type SafetyInfo struct {
	// Zones are the request city's zones, each with its active alerts.
	Zones []models.SafetyZone `json:"zones"`

	// ActiveAlerts flattens the zones' alerts, most severe first.
	ActiveAlerts []models.SafetyAlert `json:"active_alerts"`

	MinSafetyScore int                  `json:"min_safety_score"`
	RiskTolerance  models.RiskTolerance `json:"risk_tolerance"`

	// ZoneDataAvailable is false when the zone fetch failed or timed out.
	ZoneDataAvailable bool `json:"zone_data_available"`
}

// Result is the outcome of a generation.
type Result struct {
	Record     *models.RecommendationRecord `json:"record"`
	SafetyInfo SafetyInfo                   `json:"safety_info"`
}
