// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package models

import (
	"strings"

	"github.com/tomtom215/cappi/internal/geo"
)

// EntityType discriminates the kinds of catalog entity a candidate can be.
type EntityType string

const (
	EntityPlace      EntityType = "PLACE"
	EntityExperience EntityType = "EXPERIENCE"
)

// DefaultLinkedSafetyScore is assumed for experiences without a linked place.
const DefaultLinkedSafetyScore = 50

// Place is a catalog venue (hotel, restaurant, rooftop, beach club...).
type Place struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	Location    *geo.Point `json:"location,omitempty"`
	Tags        []string   `json:"tags"`
	SafetyScore int        `json:"safety_score"`
	Verified    bool       `json:"verified"`
	// PriceTier is 1 (budget) to 4 (ultra luxury); 0 when unknown.
	PriceTier int `json:"price_tier,omitempty"`
}

// Experience is a bookable activity hosted at a place.
type Experience struct {
	ID          string   `json:"id"`
	PlaceID     string   `json:"place_id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	RatingAvg   *float64 `json:"rating_avg,omitempty"`
	RatingCount int      `json:"rating_count"`
	PriceTier   int      `json:"price_tier,omitempty"`
}

// LinkedPlace is the slice of a place an experience candidate carries.
type LinkedPlace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	SafetyScore int    `json:"safety_score"`
}

// Candidate is a transient scoring input for one place or experience.
// It is built fresh for each request and never mutated afterwards.
type Candidate struct {
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	DisplayName string     `json:"display_name"`
	// SafetyScore is the place's own score; zero for experiences, which
	// inherit safety from LinkedPlace.
	SafetyScore int          `json:"safety_score"`
	Verified    bool         `json:"verified"`
	Rating      *float64     `json:"rating,omitempty"`
	RatingCount int          `json:"rating_count"`
	Tags        []string     `json:"tags"`
	LinkedPlace *LinkedPlace `json:"linked_place,omitempty"`
	Location    *geo.Point   `json:"location,omitempty"`
	PriceTier   int          `json:"price_tier,omitempty"`
}

// EffectiveSafetyScore is the safety score used for filtering and scoring:
// the place's own score, or the linked place's score for experiences
// (DefaultLinkedSafetyScore when no place is linked).
func (c *Candidate) EffectiveSafetyScore() int {
	if c.EntityType == EntityExperience {
		if c.LinkedPlace == nil {
			return DefaultLinkedSafetyScore
		}
		return c.LinkedPlace.SafetyScore
	}
	return c.SafetyScore
}

// HasTag reports whether the candidate carries tag, case-insensitively.
func (c *Candidate) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// PlaceCandidate builds a candidate from a catalog place.
func PlaceCandidate(p *Place) Candidate {
	return Candidate{
		EntityType:  EntityPlace,
		EntityID:    p.ID,
		DisplayName: p.Name,
		SafetyScore: p.SafetyScore,
		Verified:    p.Verified,
		Tags:        append([]string(nil), p.Tags...),
		Location:    p.Location,
		PriceTier:   p.PriceTier,
	}
}

// ExperienceCandidate builds a candidate from an experience and its host place.
// host may be nil.
func ExperienceCandidate(e *Experience, host *Place) Candidate {
	c := Candidate{
		EntityType:  EntityExperience,
		EntityID:    e.ID,
		DisplayName: e.Title,
		Rating:      e.RatingAvg,
		RatingCount: e.RatingCount,
		Tags:        append([]string(nil), e.Tags...),
		PriceTier:   e.PriceTier,
	}
	if host != nil {
		c.LinkedPlace = &LinkedPlace{
			ID:          host.ID,
			Name:        host.Name,
			City:        host.City,
			SafetyScore: host.SafetyScore,
		}
		c.Location = host.Location
	}
	return c
}
