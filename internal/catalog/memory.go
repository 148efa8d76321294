// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/cappi/internal/models"
)

// Memory is an in-memory catalog, used for tests and the demo dataset.
type Memory struct {
	mu          sync.RWMutex
	places      []models.Place
	experiences []models.Experience
}

// NewMemory creates a catalog holding places and experiences.
func NewMemory(places []models.Place, experiences []models.Experience) *Memory {
	return &Memory{
		places:      append([]models.Place(nil), places...),
		experiences: append([]models.Experience(nil), experiences...),
	}
}

// AddPlace appends a place.
func (m *Memory) AddPlace(p models.Place) {
	m.mu.Lock()
	m.places = append(m.places, p)
	m.mu.Unlock()
}

// AddExperience appends an experience.
func (m *Memory) AddExperience(e models.Experience) {
	m.mu.Lock()
	m.experiences = append(m.experiences, e)
	m.mu.Unlock()
}

// PlacesByCityAndSafetyFloor implements Accessor.
func (m *Memory) PlacesByCityAndSafetyFloor(ctx context.Context, q Query) ([]models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*models.Place, 0)
	for i := range m.places {
		p := &m.places[i]
		if !MatchCity(p.City, q.City) || !MatchCountry(p.Country, q.Country) {
			continue
		}
		if p.SafetyScore < q.MinSafety || (q.VerifiedOnly && !p.Verified) {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].SafetyScore != matched[j].SafetyScore {
			return matched[i].SafetyScore > matched[j].SafetyScore
		}
		return matched[i].Verified && !matched[j].Verified
	})

	out := make([]models.Candidate, 0, min(len(matched), q.EffectiveLimit()))
	for _, p := range matched {
		if len(out) == q.EffectiveLimit() {
			break
		}
		out = append(out, models.PlaceCandidate(p))
	}
	return out, nil
}

// ExperiencesByCityAndSafetyFloor implements Accessor. Experiences whose host
// place is unknown are not returned: city and safety are properties of the place.
func (m *Memory) ExperiencesByCityAndSafetyFloor(ctx context.Context, q Query) ([]models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	hosts := make(map[string]*models.Place, len(m.places))
	for i := range m.places {
		hosts[m.places[i].ID] = &m.places[i]
	}

	type match struct {
		exp  *models.Experience
		host *models.Place
	}
	matched := make([]match, 0)
	for i := range m.experiences {
		e := &m.experiences[i]
		host, ok := hosts[e.PlaceID]
		if !ok {
			continue
		}
		if !MatchCity(host.City, q.City) || !MatchCountry(host.Country, q.Country) || host.SafetyScore < q.MinSafety {
			continue
		}
		if q.MinRating > 0 && (e.RatingAvg == nil || *e.RatingAvg < q.MinRating) {
			continue
		}
		matched = append(matched, match{exp: e, host: host})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return rating(matched[i].exp) > rating(matched[j].exp)
	})

	out := make([]models.Candidate, 0, min(len(matched), q.EffectiveLimit()))
	for _, mt := range matched {
		if len(out) == q.EffectiveLimit() {
			break
		}
		out = append(out, models.ExperienceCandidate(mt.exp, mt.host))
	}
	return out, nil
}

func rating(e *models.Experience) float64 {
	if e.RatingAvg == nil {
		return -1
	}
	return *e.RatingAvg
}

var _ Accessor = (*Memory)(nil)
