// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package models

import (
	"strings"
	"time"

	"github.com/tomtom215/cappi/internal/geo"
)

// RiskLevel classifies a safety zone.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "SAFE"
	RiskCaution RiskLevel = "CAUTION"
	RiskDanger  RiskLevel = "DANGER"

	// RiskUnknown is returned by point checks when no zone contains the point.
	// Zones themselves are never UNKNOWN.
	RiskUnknown RiskLevel = "UNKNOWN"
)

// ParseRiskLevel parses a zone risk level, case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskSafe:
		return RiskSafe, true
	case RiskCaution:
		return RiskCaution, true
	case RiskDanger:
		return RiskDanger, true
	default:
		return RiskUnknown, false
	}
}

// AlertSeverity is an ordered scale, LOW < MODERATE < HIGH < CRITICAL.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "LOW"
	SeverityModerate AlertSeverity = "MODERATE"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Rank returns the position of the severity on its scale. Unknown values rank 0.
func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityModerate:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// ParseSeverity parses a severity, case-insensitively.
func ParseSeverity(s string) (AlertSeverity, bool) {
	sev := AlertSeverity(strings.ToUpper(strings.TrimSpace(s)))
	return sev, sev.Rank() > 0
}

// SafetyZone is a geo-tagged area with a risk classification.
// Zones are replaced wholesale by ingestion and never edited in place.
type SafetyZone struct {
	ID        string      `json:"id"`
	City      string      `json:"city"`
	Country   string      `json:"country"`
	Boundary  geo.Polygon `json:"boundary"`
	RiskLevel RiskLevel   `json:"risk_level"`
	Source    string      `json:"source"`

	// Alerts holds the alerts active when the zone was looked up.
	Alerts []SafetyAlert `json:"alerts"`
}

// SafetyAlert is a time-bounded alert for a zone. ZoneID is a lookup key only;
// the alert does not own the zone and may outlive it.
type SafetyAlert struct {
	ID          string        `json:"id"`
	ZoneID      string        `json:"zone_id"`
	Severity    AlertSeverity `json:"severity"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	StartAt     time.Time     `json:"start_at"`
	// EndAt nil means open-ended.
	EndAt *time.Time `json:"end_at,omitempty"`
}

// IsActiveAt reports whether the alert is active at now:
// StartAt <= now and (EndAt is nil or EndAt >= now).
func (a *SafetyAlert) IsActiveAt(now time.Time) bool {
	if a.StartAt.After(now) {
		return false
	}
	return a.EndAt == nil || !a.EndAt.Before(now)
}
