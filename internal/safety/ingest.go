// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package safety

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"

	"github.com/tomtom215/cappi/internal/geo"
	"github.com/tomtom215/cappi/internal/models"
)

// ErrInvalidDataset is returned when a zone dataset cannot be ingested.
var ErrInvalidDataset = errors.New("invalid zone dataset")

// Dataset is a full replacement set of zones and alerts, in ingestion order.
type Dataset struct {
	Zones  []models.SafetyZone
	Alerts []models.SafetyAlert
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type featureProperties struct {
	ID        string         `json:"id"`
	City      string         `json:"city"`
	Country   string         `json:"country"`
	RiskLevel string         `json:"risk_level"`
	Source    string         `json:"source"`
	Alerts    []featureAlert `json:"alerts"`
}

type featureAlert struct {
	ID          string  `json:"id"`
	Severity    string  `json:"severity"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartAt     string  `json:"start_at"`
	EndAt       *string `json:"end_at"`
}

// LoadDatasetFile reads and parses a GeoJSON zone dataset from path.
func LoadDatasetFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone dataset: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes a GeoJSON FeatureCollection of zone polygons.
// Each feature's properties carry the zone attributes and its alerts.
func ParseDataset(data []byte) (*Dataset, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: expected FeatureCollection, got %q", ErrInvalidDataset, fc.Type)
	}

	ds := &Dataset{
		Zones:  make([]models.SafetyZone, 0, len(fc.Features)),
		Alerts: make([]models.SafetyAlert, 0),
	}
	zoneIDs := make(map[string]struct{}, len(fc.Features))
	alertIDs := make(map[string]struct{})

	for i, f := range fc.Features {
		zone, err := parseZone(f)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %w", ErrInvalidDataset, i, err)
		}
		if _, dup := zoneIDs[zone.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate zone id %q", ErrInvalidDataset, zone.ID)
		}
		zoneIDs[zone.ID] = struct{}{}
		ds.Zones = append(ds.Zones, zone)

		for j, fa := range f.Properties.Alerts {
			alert, err := parseAlert(zone.ID, fa)
			if err != nil {
				return nil, fmt.Errorf("%w: feature %d alert %d: %w", ErrInvalidDataset, i, j, err)
			}
			if _, dup := alertIDs[alert.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate alert id %q", ErrInvalidDataset, alert.ID)
			}
			alertIDs[alert.ID] = struct{}{}
			ds.Alerts = append(ds.Alerts, alert)
		}
	}
	return ds, nil
}

func parseZone(f feature) (models.SafetyZone, error) {
	p := f.Properties
	if strings.TrimSpace(p.ID) == "" {
		return models.SafetyZone{}, errors.New("missing zone id")
	}
	if strings.TrimSpace(p.City) == "" {
		return models.SafetyZone{}, fmt.Errorf("zone %q: missing city", p.ID)
	}
	level, ok := models.ParseRiskLevel(p.RiskLevel)
	if !ok {
		return models.SafetyZone{}, fmt.Errorf("zone %q: unknown risk level %q", p.ID, p.RiskLevel)
	}
	if f.Geometry == nil {
		return models.SafetyZone{}, fmt.Errorf("zone %q: missing geometry", p.ID)
	}
	boundary, err := geo.FromGeometry(f.Geometry)
	if err != nil {
		return models.SafetyZone{}, fmt.Errorf("zone %q: %w", p.ID, err)
	}

	return models.SafetyZone{
		ID:        p.ID,
		City:      strings.TrimSpace(p.City),
		Country:   strings.TrimSpace(p.Country),
		Boundary:  boundary,
		RiskLevel: level,
		Source:    p.Source,
	}, nil
}

func parseAlert(zoneID string, fa featureAlert) (models.SafetyAlert, error) {
	if strings.TrimSpace(fa.ID) == "" {
		return models.SafetyAlert{}, errors.New("missing alert id")
	}
	severity, ok := models.ParseSeverity(fa.Severity)
	if !ok {
		return models.SafetyAlert{}, fmt.Errorf("alert %q: unknown severity %q", fa.ID, fa.Severity)
	}
	start, err := time.Parse(time.RFC3339, fa.StartAt)
	if err != nil {
		return models.SafetyAlert{}, fmt.Errorf("alert %q: start_at: %w", fa.ID, err)
	}

	alert := models.SafetyAlert{
		ID:          fa.ID,
		ZoneID:      zoneID,
		Severity:    severity,
		Title:       fa.Title,
		Description: fa.Description,
		StartAt:     start.UTC(),
	}
	if fa.EndAt != nil && *fa.EndAt != "" {
		end, err := time.Parse(time.RFC3339, *fa.EndAt)
		if err != nil {
			return models.SafetyAlert{}, fmt.Errorf("alert %q: end_at: %w", fa.ID, err)
		}
		if end.Before(start) {
			return models.SafetyAlert{}, fmt.Errorf("alert %q: end_at before start_at", fa.ID)
		}
		end = end.UTC()
		alert.EndAt = &end
	}
	return alert, nil
}
