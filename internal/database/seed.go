// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cappi/internal/geo"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/models"
)

// DemoTravelerID is the user id of the seeded demo traveler.
const DemoTravelerID = "traveler-demo"

// DemoTripID is the id of the seeded demo trip.
const DemoTripID = "trip-demo-cancun"

func rating(v float64) *float64 { return &v }

// demoPlaces returns the demo catalog places for Cancún and Medellín.
func demoPlaces() []models.Place {
	return []models.Place{
		{
			ID: "cun-rooftop-22", Type: "ROOFTOP", Name: "Rooftop 22", City: "Cancún", Country: "Mexico",
			Location: &geo.Point{Lat: 21.1333, Lng: -86.7467},
			Tags:     []string{"premium", "sunset", "cocktails", "ocean-view"}, SafetyScore: 95, Verified: true, PriceTier: 3,
		},
		{
			ID: "cun-rosanegra", Type: "RESTAURANT", Name: "RosaNegra", City: "Cancún", Country: "Mexico",
			Location: &geo.Point{Lat: 21.0975, Lng: -86.7693},
			Tags:     []string{"fine-dining", "latin-cuisine", "live-music", "premium"}, SafetyScore: 92, Verified: true, PriceTier: 4,
		},
		{
			ID: "cun-mandala-beach", Type: "CLUB", Name: "Mandala Beach Club", City: "Cancún", Country: "Mexico",
			Location: &geo.Point{Lat: 21.1289, Lng: -86.7478},
			Tags:     []string{"beach-club", "nightlife", "dj", "party"}, SafetyScore: 88, Verified: true, PriceTier: 3,
		},
		{
			ID: "cun-playa-delfines", Type: "BEACH", Name: "Playa Delfines", City: "Cancún", Country: "Mexico",
			Location: &geo.Point{Lat: 21.0733, Lng: -86.7733},
			Tags:     []string{"public-beach", "scenic", "swimming", "free"}, SafetyScore: 85, Verified: true, PriceTier: 1,
		},
		{
			ID: "mde-envy-rooftop", Type: "ROOFTOP", Name: "Envy Rooftop", City: "Medellín", Country: "Colombia",
			Location: &geo.Point{Lat: 6.2088, Lng: -75.5687},
			Tags:     []string{"rooftop", "cocktails", "city-view", "trendy"}, SafetyScore: 90, Verified: true, PriceTier: 3,
		},
		{
			ID: "mde-carmen", Type: "RESTAURANT", Name: "Carmen", City: "Medellín", Country: "Colombia",
			Location: &geo.Point{Lat: 6.2102, Lng: -75.5665},
			Tags:     []string{"fine-dining", "colombian-fusion", "romantic", "colonial"}, SafetyScore: 93, Verified: true, PriceTier: 4,
		},
	}
}

// demoExperiences returns the demo experiences.
func demoExperiences() []models.Experience {
	return []models.Experience{
		{
			ID: "exp-rosanegra-vip-dinner", PlaceID: "cun-rosanegra", Title: "Cena VIP en RosaNegra con show en vivo",
			Category: "DINNER", Tags: []string{"dinner", "live-show", "premium"}, RatingAvg: rating(4.8), RatingCount: 127, PriceTier: 4,
		},
		{
			ID: "exp-rooftop22-sunset", PlaceID: "cun-rooftop-22", Title: "Sunset Premium en Rooftop 22",
			Category: "VIP_EVENT", Tags: []string{"sunset", "cocktails", "premium"}, RatingAvg: rating(4.9), RatingCount: 89, PriceTier: 3,
		},
		{
			ID: "exp-poblado-food-tour", PlaceID: "mde-envy-rooftop", Title: "Tour gastronómico en El Poblado",
			Category: "GASTRONOMY", Tags: []string{"food-tour", "guided"}, RatingAvg: rating(4.7), RatingCount: 64, PriceTier: 3,
		},
	}
}

// demoProfile returns the demo traveler profile.
func demoProfile() *models.TravelerProfile {
	return &models.TravelerProfile{
		UserID:        DemoTravelerID,
		FullName:      "Juan Pérez",
		HomeAirport:   "CUN",
		RiskTolerance: models.RiskToleranceMedium,
		LoyaltyTier:   "SILVER",
		Preferences: map[string]any{
			"cuisines":   []any{"Mexican", "Mediterranean", "Japanese"},
			"activities": []any{"Beach", "Nightlife", "Gastronomy"},
			"ambiance":   []any{"Luxury", "Trendy"},
		},
	}
}

// demoTrip returns the demo trip with its itinerary.
func demoTrip() *models.Trip {
	return &models.Trip{
		ID:          DemoTripID,
		UserID:      DemoTravelerID,
		Title:       "Escapada a Cancún",
		City:        "Cancún",
		Country:     "Mexico",
		StartDate:   time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC),
		PartySize:   2,
		BudgetLevel: models.BudgetLuxury,
		Items: []models.ItineraryItem{
			{ID: "item-demo-1", TripID: DemoTripID, DayIndex: 0, EntityType: models.EntityPlace, EntityID: "cun-rooftop-22", Title: "Rooftop 22", Notes: "Primer día - sunset"},
			{ID: "item-demo-2", TripID: DemoTripID, DayIndex: 1, EntityType: models.EntityExperience, EntityID: "exp-rosanegra-vip-dinner", Title: "Cena VIP en RosaNegra", Notes: "Cena especial aniversario"},
		},
	}
}

// SeedDemoData inserts the demo catalog, traveler and trip. Running it again
// leaves existing rows unchanged.
func (db *DB) SeedDemoData(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	places := demoPlaces()
	for i := range places {
		if err := db.InsertPlace(ctx, &places[i]); err != nil {
			return fmt.Errorf("seed places: %w", err)
		}
	}
	experiences := demoExperiences()
	for i := range experiences {
		if err := db.InsertExperience(ctx, &experiences[i]); err != nil {
			return fmt.Errorf("seed experiences: %w", err)
		}
	}
	if err := db.InsertProfile(ctx, demoProfile()); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	if err := db.InsertTrip(ctx, demoTrip()); err != nil {
		return fmt.Errorf("seed trip: %w", err)
	}

	logging.Info().
		Int("places", len(places)).
		Int("experiences", len(experiences)).
		Msg("Demo data seeded")
	return nil
}
