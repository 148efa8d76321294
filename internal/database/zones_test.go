// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package database

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/geo"
	"github.com/tomtom215/cappi/internal/models"
	"github.com/tomtom215/cappi/internal/safety"
)

func loadTestDataset(t *testing.T) *safety.Dataset {
	t.Helper()
	ds, err := safety.LoadDatasetFile("../safety/testdata/zones.geojson")
	if err != nil {
		t.Fatalf("LoadDatasetFile: %v", err)
	}
	return ds
}

func TestReplaceZonesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ds := loadTestDataset(t)

	if err := db.ReplaceZones(ctx, ds.Zones, ds.Alerts); err != nil {
		t.Fatalf("ReplaceZones: %v", err)
	}

	all, err := db.AllZones(ctx)
	if err != nil {
		t.Fatalf("AllZones: %v", err)
	}
	if len(all) != len(ds.Zones) {
		t.Fatalf("AllZones returned %d zones, want %d", len(all), len(ds.Zones))
	}
	for i := range all {
		if all[i].ID != ds.Zones[i].ID || all[i].RiskLevel != ds.Zones[i].RiskLevel {
			t.Errorf("zone %d = %s/%s, want %s/%s", i, all[i].ID, all[i].RiskLevel, ds.Zones[i].ID, ds.Zones[i].RiskLevel)
		}
	}

	hotel := all[0]
	if !hotel.Boundary.Contains(geo.Point{Lat: 21.1333, Lng: -86.7467}) {
		t.Error("stored boundary lost containment of Rooftop 22")
	}

	alerts, err := db.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != len(ds.Alerts) {
		t.Fatalf("Alerts returned %d, want %d", len(alerts), len(ds.Alerts))
	}
	for i := range alerts {
		want := ds.Alerts[i]
		got := alerts[i]
		if got.ID != want.ID || got.ZoneID != want.ZoneID || got.Severity != want.Severity || !got.StartAt.Equal(want.StartAt) {
			t.Errorf("alert %d = %+v, want %+v", i, got, want)
		}
		if (got.EndAt == nil) != (want.EndAt == nil) || (got.EndAt != nil && !got.EndAt.Equal(*want.EndAt)) {
			t.Errorf("alert %s end = %v, want %v", got.ID, got.EndAt, want.EndAt)
		}
	}
}

func TestZonesByCity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ds := loadTestDataset(t)
	if err := db.ReplaceZones(ctx, ds.Zones, ds.Alerts); err != nil {
		t.Fatalf("ReplaceZones: %v", err)
	}

	tests := []struct {
		city, country string
		want          []string
	}{
		{"Cancún", "", []string{"cun-zona-hotelera", "cun-centro"}},
		{" CANCÚN ", "mexico", []string{"cun-zona-hotelera", "cun-centro"}},
		{"Cancún", "Colombia", []string{}},
		{"Canc", "", []string{}},
		{"Medellín", "Colombia", []string{"mde-el-poblado", "mde-comuna-13"}},
	}
	for _, tt := range tests {
		zones, err := db.ZonesByCity(ctx, tt.city, tt.country)
		if err != nil {
			t.Fatalf("ZonesByCity(%q, %q): %v", tt.city, tt.country, err)
		}
		ids := make([]string, len(zones))
		for i := range zones {
			ids[i] = zones[i].ID
		}
		if !equalIDs(ids, tt.want) {
			t.Errorf("ZonesByCity(%q, %q) = %v, want %v", tt.city, tt.country, ids, tt.want)
		}
	}
}

func TestReplaceZonesSwapsWholeSet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ds := loadTestDataset(t)
	if err := db.ReplaceZones(ctx, ds.Zones, ds.Alerts); err != nil {
		t.Fatalf("ReplaceZones: %v", err)
	}

	replacement := []models.SafetyZone{ds.Zones[len(ds.Zones)-1]}
	if err := db.ReplaceZones(ctx, replacement, nil); err != nil {
		t.Fatalf("ReplaceZones: %v", err)
	}
	all, err := db.AllZones(ctx)
	if err != nil {
		t.Fatalf("AllZones: %v", err)
	}
	if len(all) != 1 || all[0].ID != replacement[0].ID {
		t.Errorf("expected only %s, got %+v", replacement[0].ID, all)
	}
	alerts, err := db.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected alerts cleared, got %d", len(alerts))
	}

	// The same ids can be stored again in a later refresh.
	if err := db.ReplaceZones(ctx, ds.Zones, ds.Alerts); err != nil {
		t.Fatalf("ReplaceZones after swap: %v", err)
	}
}

func TestDirectoryOverDuckDB(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ds := loadTestDataset(t)
	if err := db.ReplaceZones(ctx, ds.Zones, ds.Alerts); err != nil {
		t.Fatalf("ReplaceZones: %v", err)
	}

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	dir := safety.NewDirectory(db,
		safety.WithClock(func() time.Time { return now }),
		safety.WithLogger(zerolog.Nop()),
	)

	zones, err := dir.ZonesByCity(ctx, "Cancún", "")
	if err != nil {
		t.Fatalf("ZonesByCity: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 Cancún zones, got %d", len(zones))
	}

	alerts, err := dir.ActiveAlerts(ctx, "Cancún")
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != "cun-centro-theft" {
		t.Errorf("expected only the theft alert active, got %+v", alerts)
	}
}
