// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package safety

import (
	"context"
	"strings"
	"sync"

	"github.com/tomtom215/cappi/internal/models"
)

// Store is the backing storage of the directory. Zones are returned in
// ingestion order without alerts attached.
type Store interface {
	// ZonesByCity returns zones whose city equals city case-insensitively.
	// An empty country matches any country.
	ZonesByCity(ctx context.Context, city, country string) ([]models.SafetyZone, error)

	// AllZones returns every zone.
	AllZones(ctx context.Context) ([]models.SafetyZone, error)

	// Alerts returns every stored alert, active or not.
	Alerts(ctx context.Context) ([]models.SafetyAlert, error)

	// ReplaceZones swaps the full zone and alert set atomically.
	ReplaceZones(ctx context.Context, zones []models.SafetyZone, alerts []models.SafetyAlert) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	zones  []models.SafetyZone
	alerts []models.SafetyAlert
}

// NewMemoryStore creates a store seeded with the given dataset (may be nil).
func NewMemoryStore(ds *Dataset) *MemoryStore {
	s := &MemoryStore{}
	if ds != nil {
		s.zones = append(s.zones, ds.Zones...)
		s.alerts = append(s.alerts, ds.Alerts...)
	}
	return s
}

// ZonesByCity implements Store.
func (s *MemoryStore) ZonesByCity(_ context.Context, city, country string) ([]models.SafetyZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SafetyZone, 0)
	for i := range s.zones {
		if MatchesCity(&s.zones[i], city, country) {
			out = append(out, s.zones[i])
		}
	}
	return out, nil
}

// AllZones implements Store.
func (s *MemoryStore) AllZones(_ context.Context) ([]models.SafetyZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SafetyZone(nil), s.zones...), nil
}

// Alerts implements Store.
func (s *MemoryStore) Alerts(_ context.Context) ([]models.SafetyAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SafetyAlert(nil), s.alerts...), nil
}

// ReplaceZones implements Store.
func (s *MemoryStore) ReplaceZones(_ context.Context, zones []models.SafetyZone, alerts []models.SafetyAlert) error {
	s.mu.Lock()
	s.zones = append([]models.SafetyZone(nil), zones...)
	s.alerts = append([]models.SafetyAlert(nil), alerts...)
	s.mu.Unlock()
	return nil
}

// MatchesCity reports whether zone belongs to city (case-insensitive equality)
// and, when country is non-empty, to country.
func MatchesCity(zone *models.SafetyZone, city, country string) bool {
	if !strings.EqualFold(strings.TrimSpace(zone.City), strings.TrimSpace(city)) {
		return false
	}
	return country == "" || strings.EqualFold(strings.TrimSpace(zone.Country), strings.TrimSpace(country))
}

var _ Store = (*MemoryStore)(nil)
