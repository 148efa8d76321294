// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package models

import "time"

// TravelerProfile is the read-only profile of a traveler.
type TravelerProfile struct {
	UserID        string         `json:"user_id"`
	FullName      string         `json:"full_name,omitempty"`
	HomeAirport   string         `json:"home_airport,omitempty"`
	RiskTolerance RiskTolerance  `json:"risk_tolerance,omitempty"`
	LoyaltyTier   string         `json:"loyalty_tier,omitempty"`
	Preferences   map[string]any `json:"preferences,omitempty"`
}

// Trip is a planned trip with its itinerary.
type Trip struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	City        string          `json:"city"`
	Country     string          `json:"country,omitempty"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	PartySize   int             `json:"party_size"`
	BudgetLevel BudgetLevel     `json:"budget_level,omitempty"`
	Items       []ItineraryItem `json:"items"`
}

// ItineraryItem is one scheduled entry of a trip.
type ItineraryItem struct {
	ID         string     `json:"id"`
	TripID     string     `json:"trip_id"`
	DayIndex   int        `json:"day_index"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
}
