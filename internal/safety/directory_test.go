// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package safety

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/geo"
	"github.com/tomtom215/cappi/internal/models"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func loadTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadDatasetFile("testdata/zones.geojson")
	if err != nil {
		t.Fatalf("LoadDatasetFile: %v", err)
	}
	return ds
}

func newTestDirectory(t *testing.T, ds *Dataset) *Directory {
	t.Helper()
	return NewDirectory(NewMemoryStore(ds), WithClock(fixedClock), WithLogger(zerolog.Nop()))
}

func square(minLat, minLng, maxLat, maxLng float64) geo.Polygon {
	return geo.Polygon{Outer: geo.Ring{
		{Lat: minLat, Lng: minLng}, {Lat: minLat, Lng: maxLng},
		{Lat: maxLat, Lng: maxLng}, {Lat: maxLat, Lng: minLng},
	}}
}

type failingStore struct{ MemoryStore }

func (f *failingStore) ZonesByCity(context.Context, string, string) ([]models.SafetyZone, error) {
	return nil, errors.New("duckdb: connection closed")
}

func (f *failingStore) AllZones(context.Context) ([]models.SafetyZone, error) {
	return nil, errors.New("duckdb: connection closed")
}

func TestZonesByCity(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, loadTestDataset(t))
	ctx := context.Background()

	tests := []struct {
		name      string
		city      string
		country   string
		wantZones []string
	}{
		{"exact city", "Cancún", "", []string{"cun-zona-hotelera", "cun-centro"}},
		{"case insensitive", "CANCÚN", "mexico", []string{"cun-zona-hotelera", "cun-centro"}},
		{"country mismatch", "Cancún", "Colombia", nil},
		{"unknown city", "Lima", "", nil},
		{"substring is not a match", "Canc", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			zones, err := dir.ZonesByCity(ctx, tt.city, tt.country)
			if err != nil {
				t.Fatalf("ZonesByCity: %v", err)
			}
			if zones == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(zones) != len(tt.wantZones) {
				t.Fatalf("expected %d zones, got %d", len(tt.wantZones), len(zones))
			}
			for i, id := range tt.wantZones {
				if zones[i].ID != id {
					t.Errorf("zone %d: expected %s, got %s", i, id, zones[i].ID)
				}
			}
		})
	}
}

func TestZonesByCityAttachesOnlyActiveAlerts(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, loadTestDataset(t))
	zones, err := dir.ZonesByCity(context.Background(), "Cancún", "Mexico")
	if err != nil {
		t.Fatalf("ZonesByCity: %v", err)
	}

	byID := make(map[string]models.SafetyZone)
	for _, z := range zones {
		byID[z.ID] = z
	}
	if n := len(byID["cun-zona-hotelera"].Alerts); n != 0 {
		t.Errorf("expected expired sargassum alert to be hidden, got %d alerts", n)
	}
	centro := byID["cun-centro"].Alerts
	if len(centro) != 1 || centro[0].ID != "cun-centro-theft" {
		t.Errorf("expected the theft alert on cun-centro, got %+v", centro)
	}
}

func TestAlertActivityAroundNow(t *testing.T) {
	t.Parallel()

	hourAgo := testNow.Add(-time.Hour)
	inHour := testNow.Add(time.Hour)
	ds := &Dataset{
		Zones: []models.SafetyZone{{ID: "z1", City: "Cancún", Country: "Mexico", RiskLevel: models.RiskSafe, Boundary: square(0, 0, 1, 1)}},
		Alerts: []models.SafetyAlert{
			{ID: "current", ZoneID: "z1", Severity: models.SeverityHigh, StartAt: hourAgo, EndAt: &inHour},
			{ID: "future", ZoneID: "z1", Severity: models.SeverityCritical, StartAt: inHour},
		},
	}
	dir := newTestDirectory(t, ds)

	zones, err := dir.ZonesByCity(context.Background(), "Cancún", "")
	if err != nil {
		t.Fatalf("ZonesByCity: %v", err)
	}
	if len(zones) != 1 || len(zones[0].Alerts) != 1 || zones[0].Alerts[0].ID != "current" {
		t.Fatalf("expected only the current alert, got %+v", zones)
	}

	alerts, err := dir.ActiveAlerts(context.Background(), "")
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != "current" {
		t.Errorf("expected only the current alert, got %+v", alerts)
	}
}

func TestActiveAlertsOrderingAndCityFilter(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, loadTestDataset(t))
	ctx := context.Background()

	all, err := dir.ActiveAlerts(ctx, "")
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 active alerts, got %d", len(all))
	}
	if all[0].ID != "mde-c13-tours" || all[1].ID != "cun-centro-theft" {
		t.Errorf("expected HIGH before MODERATE, got %s, %s", all[0].ID, all[1].ID)
	}

	medellin, err := dir.ActiveAlerts(ctx, "medell")
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(medellin) != 1 || medellin[0].ID != "mde-c13-tours" {
		t.Errorf("expected substring city filter to keep the Medellín alert, got %+v", medellin)
	}
}

func TestActiveAlertsTieBreak(t *testing.T) {
	t.Parallel()

	early := testNow.Add(-48 * time.Hour)
	late := testNow.Add(-2 * time.Hour)
	ds := &Dataset{
		Zones: []models.SafetyZone{{ID: "z1", City: "Cancún", RiskLevel: models.RiskCaution, Boundary: square(0, 0, 1, 1)}},
		Alerts: []models.SafetyAlert{
			{ID: "b", ZoneID: "z1", Severity: models.SeverityHigh, StartAt: early},
			{ID: "c", ZoneID: "z1", Severity: models.SeverityHigh, StartAt: late},
			{ID: "a", ZoneID: "z1", Severity: models.SeverityHigh, StartAt: early},
			{ID: "d", ZoneID: "z1", Severity: models.SeverityLow, StartAt: late},
		},
	}
	dir := newTestDirectory(t, ds)

	alerts, err := dir.ActiveAlerts(context.Background(), "")
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	want := []string{"c", "a", "b", "d"}
	for i, id := range want {
		if alerts[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, alerts[i].ID)
		}
	}
}

func TestActiveAlertsOrphanedZone(t *testing.T) {
	t.Parallel()

	ds := &Dataset{
		Zones:  []models.SafetyZone{{ID: "z1", City: "Cancún", RiskLevel: models.RiskSafe, Boundary: square(0, 0, 1, 1)}},
		Alerts: []models.SafetyAlert{{ID: "orphan", ZoneID: "gone", Severity: models.SeverityHigh, StartAt: testNow.Add(-time.Hour)}},
	}
	dir := newTestDirectory(t, ds)
	ctx := context.Background()

	all, err := dir.ActiveAlerts(ctx, "")
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected orphan alert without city filter, got %d", len(all))
	}

	filtered, err := dir.ActiveAlerts(ctx, "Cancún")
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("expected orphan alert to be dropped by city filter, got %d", len(filtered))
	}
}

func TestCheckPoint(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, loadTestDataset(t))
	ctx := context.Background()

	tests := []struct {
		name     string
		lat, lng float64
		want     models.RiskLevel
	}{
		{"Rooftop 22 in the hotel zone", 21.1333, -86.7467, models.RiskSafe},
		{"downtown Cancún", 21.17, -86.84, models.RiskCaution},
		{"Carmen in El Poblado", 6.2102, -75.5665, models.RiskSafe},
		{"open ocean", 0, 0, models.RiskUnknown},
		{"Playa Delfines south of the zone", 21.0733, -86.7733, models.RiskUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dir.CheckPoint(ctx, tt.lat, tt.lng)
			if err != nil {
				t.Fatalf("CheckPoint: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckPoint(%f, %f) = %s, want %s", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestCheckPointMostSpecificZoneWins(t *testing.T) {
	t.Parallel()

	ds := &Dataset{Zones: []models.SafetyZone{
		{ID: "city", City: "Cancún", RiskLevel: models.RiskSafe, Boundary: square(0, 0, 10, 10)},
		{ID: "block", City: "Cancún", RiskLevel: models.RiskDanger, Boundary: square(4, 4, 6, 6)},
		{ID: "twin-a", City: "Cancún", RiskLevel: models.RiskCaution, Boundary: square(20, 20, 21, 21)},
		{ID: "twin-b", City: "Cancún", RiskLevel: models.RiskDanger, Boundary: square(20, 20, 21, 21)},
	}}
	dir := newTestDirectory(t, ds)
	ctx := context.Background()

	if got, _ := dir.CheckPoint(ctx, 5, 5); got != models.RiskDanger {
		t.Errorf("expected nested DANGER zone to win, got %s", got)
	}
	if got, _ := dir.CheckPoint(ctx, 1, 1); got != models.RiskSafe {
		t.Errorf("expected outer SAFE zone, got %s", got)
	}

	zone, err := dir.Locate(ctx, 20.5, 20.5)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if zone == nil || zone.ID != "twin-a" {
		t.Errorf("expected first ingested zone on equal area, got %+v", zone)
	}
}

func TestNearest(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, loadTestDataset(t))
	ctx := context.Background()

	// Playa Delfines lies just south of the hotel zone.
	zone, km, err := dir.Nearest(ctx, 21.0733, -86.7733)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if zone == nil || zone.ID != "cun-zona-hotelera" {
		t.Fatalf("expected cun-zona-hotelera, got %+v", zone)
	}
	if km <= 0 || km > 10 {
		t.Errorf("distance = %.2f km, want within 10 km", km)
	}

	empty := newTestDirectory(t, &Dataset{})
	if zone, _, err := empty.Nearest(ctx, 21.0733, -86.7733); err != nil || zone != nil {
		t.Errorf("expected no zone without data, got %+v, %v", zone, err)
	}

	if _, _, err := dir.Nearest(ctx, 0, 181); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCheckPointRejectsInvalidCoordinates(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, loadTestDataset(t))
	_, err := dir.CheckPoint(context.Background(), 91, 0)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRefreshInvalidatesCache(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, loadTestDataset(t))
	ctx := context.Background()

	if zones, _ := dir.ZonesByCity(ctx, "Lima", ""); len(zones) != 0 {
		t.Fatalf("expected no Lima zones before refresh, got %d", len(zones))
	}

	ds := &Dataset{Zones: []models.SafetyZone{
		{ID: "lim-miraflores", City: "Lima", Country: "Peru", RiskLevel: models.RiskSafe, Boundary: square(-12.13, -77.04, -12.11, -77.02)},
	}}
	if err := dir.Refresh(ctx, ds); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	zones, err := dir.ZonesByCity(ctx, "Lima", "")
	if err != nil {
		t.Fatalf("ZonesByCity: %v", err)
	}
	if len(zones) != 1 || zones[0].ID != "lim-miraflores" {
		t.Errorf("expected refreshed zone, got %+v", zones)
	}
	if got, _ := dir.CheckPoint(ctx, 21.1333, -86.7467); got != models.RiskUnknown {
		t.Errorf("expected Cancún zones to be gone after refresh, got %s", got)
	}
}

func TestDirectoryStoreFailure(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(&failingStore{}, WithClock(fixedClock), WithLogger(zerolog.Nop()))
	ctx := context.Background()

	if _, err := dir.ZonesByCity(ctx, "Cancún", ""); !errors.Is(err, models.ErrDependencyUnavailable) {
		t.Errorf("ZonesByCity: expected ErrDependencyUnavailable, got %v", err)
	}
	if _, err := dir.CheckPoint(ctx, 1, 1); !errors.Is(err, models.ErrDependencyUnavailable) {
		t.Errorf("CheckPoint: expected ErrDependencyUnavailable, got %v", err)
	}
}
