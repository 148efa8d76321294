// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

// Package catalog reads scoring candidates from the place and experience catalog.
package catalog

import (
	"context"
	"strings"

	"github.com/tomtom215/cappi/internal/models"
)

// DefaultLimit is the number of candidates fetched per entity type.
const DefaultLimit = 10

// DefaultMinExperienceRating excludes experiences rated below 4.0.
const DefaultMinExperienceRating = 4.0

// Query selects catalog candidates.
type Query struct {
	// City matches case-insensitively as a substring of the catalog city.
	City string
	// Country, when set, must equal the catalog country case-insensitively.
	Country string
	// MinSafety is the inclusive safety floor. Experiences are filtered on
	// the safety score of their host place.
	MinSafety int
	// Limit caps the result size; non-positive means DefaultLimit.
	Limit int
	// VerifiedOnly restricts places to verified partners.
	VerifiedOnly bool
	// MinRating excludes experiences with a lower or absent rating when positive.
	MinRating float64
}

// EffectiveLimit returns Limit or DefaultLimit.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Accessor reads candidates from the catalog. Places come ordered by safety
// score descending, experiences by rating descending; the order is the
// discovery order used for ranking ties.
type Accessor interface {
	PlacesByCityAndSafetyFloor(ctx context.Context, q Query) ([]models.Candidate, error)
	ExperiencesByCityAndSafetyFloor(ctx context.Context, q Query) ([]models.Candidate, error)
}

// MatchCity reports whether catalogCity matches the query city: a
// case-insensitive substring match.
func MatchCity(catalogCity, city string) bool {
	return strings.Contains(strings.ToLower(catalogCity), strings.ToLower(strings.TrimSpace(city)))
}

// MatchCountry reports whether catalogCountry satisfies an optional country filter.
func MatchCountry(catalogCountry, country string) bool {
	country = strings.TrimSpace(country)
	return country == "" || strings.EqualFold(strings.TrimSpace(catalogCountry), country)
}
