// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package safety

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/cache"
	"github.com/tomtom215/cappi/internal/geo"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/metrics"
	"github.com/tomtom215/cappi/internal/models"
)

// DefaultCacheTTL is used when no TTL option is given.
const DefaultCacheTTL = 5 * time.Minute

// Directory answers safety questions about cities and coordinates.
// It is safe for concurrent use.
type Directory struct {
	store  Store
	zones  *cache.Cache[[]models.SafetyZone]
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Directory.
type Option func(*directoryOptions)

type directoryOptions struct {
	ttl    time.Duration
	now    func() time.Time
	logger *zerolog.Logger
}

// WithClock sets the time source used to decide alert activity.
func WithClock(now func() time.Time) Option {
	return func(o *directoryOptions) {
		o.now = now
	}
}

// WithCacheTTL sets how long zone lookups are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *directoryOptions) {
		o.ttl = ttl
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *directoryOptions) {
		o.logger = &logger
	}
}

// NewDirectory creates a directory over store.
func NewDirectory(store Store, opts ...Option) *Directory {
	o := directoryOptions{ttl: DefaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.WithComponent("safety")
	if o.logger != nil {
		logger = *o.logger
	}
	return &Directory{
		store:  store,
		zones:  cache.New[[]models.SafetyZone](o.ttl),
		now:    o.now,
		logger: logger,
	}
}

// ZonesByCity returns the zones of city (and country, when non-empty), each
// carrying its currently active alerts. No zones is not an error.
func (d *Directory) ZonesByCity(ctx context.Context, city, country string) ([]models.SafetyZone, error) {
	key := cache.GenerateKey("zones_by_city", [2]string{
		strings.ToLower(strings.TrimSpace(city)),
		strings.ToLower(strings.TrimSpace(country)),
	})

	zones, err := d.cachedZones(ctx, key, func(ctx context.Context) ([]models.SafetyZone, error) {
		return d.store.ZonesByCity(ctx, city, country)
	})
	if err != nil {
		return nil, err
	}

	alerts, err := d.activeAlerts(ctx)
	if err != nil {
		return nil, err
	}

	byZone := make(map[string][]models.SafetyAlert)
	for _, a := range alerts {
		byZone[a.ZoneID] = append(byZone[a.ZoneID], a)
	}

	out := make([]models.SafetyZone, len(zones))
	for i := range zones {
		out[i] = zones[i]
		out[i].Alerts = byZone[zones[i].ID]
		if out[i].Alerts == nil {
			out[i].Alerts = []models.SafetyAlert{}
		}
	}
	return out, nil
}

// ActiveAlerts returns active alerts ordered by severity descending, then most
// recent start, then ID. A non-empty city keeps only alerts whose zone's city
// contains city, case-insensitively; alerts referencing a removed zone are
// then dropped.
func (d *Directory) ActiveAlerts(ctx context.Context, city string) ([]models.SafetyAlert, error) {
	alerts, err := d.activeAlerts(ctx)
	if err != nil {
		return nil, err
	}

	if city = strings.ToLower(strings.TrimSpace(city)); city != "" {
		zones, err := d.allZones(ctx)
		if err != nil {
			return nil, err
		}
		zoneCity := make(map[string]string, len(zones))
		for _, z := range zones {
			zoneCity[z.ID] = strings.ToLower(z.City)
		}

		filtered := alerts[:0]
		for _, a := range alerts {
			zc, ok := zoneCity[a.ZoneID]
			if ok && strings.Contains(zc, city) {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	SortAlerts(alerts)
	return alerts, nil
}

// CheckPoint classifies a coordinate by the most specific zone containing it.
// It returns RiskUnknown when no zone contains the point.
func (d *Directory) CheckPoint(ctx context.Context, lat, lng float64) (models.RiskLevel, error) {
	zone, err := d.Locate(ctx, lat, lng)
	if err != nil {
		return models.RiskUnknown, err
	}
	if zone == nil {
		return models.RiskUnknown, nil
	}
	return zone.RiskLevel, nil
}

// Locate returns the smallest zone containing the coordinate, or nil.
// Equal areas resolve to the zone ingested first.
func (d *Directory) Locate(ctx context.Context, lat, lng float64) (*models.SafetyZone, error) {
	p := geo.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return nil, models.InvalidInput("coordinate out of range: %f,%f", lat, lng)
	}

	zones, err := d.allZones(ctx)
	if err != nil {
		return nil, err
	}
	zone := SmallestContaining(zones, p)
	if zone == nil {
		return nil, nil
	}
	found := *zone
	return &found, nil
}

// Nearest returns the zone whose centroid is closest to the coordinate and
// the great-circle distance to it in kilometres. It returns nil when no zones
// are loaded.
func (d *Directory) Nearest(ctx context.Context, lat, lng float64) (*models.SafetyZone, float64, error) {
	p := geo.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return nil, 0, models.InvalidInput("coordinate out of range: %f,%f", lat, lng)
	}

	zones, err := d.allZones(ctx)
	if err != nil {
		return nil, 0, err
	}
	best := -1
	bestKm := 0.0
	for i := range zones {
		km := geo.HaversineKm(p, zones[i].Boundary.Centroid())
		if best < 0 || km < bestKm {
			best, bestKm = i, km
		}
	}
	if best < 0 {
		return nil, 0, nil
	}
	found := zones[best]
	return &found, bestKm, nil
}

// Refresh replaces the stored zones and alerts with ds and drops cached lookups.
func (d *Directory) Refresh(ctx context.Context, ds *Dataset) error {
	if ds == nil {
		return models.InvalidInput("nil dataset")
	}
	err := d.store.ReplaceZones(ctx, ds.Zones, ds.Alerts)
	metrics.RecordZoneRefresh(len(ds.Zones), err)
	if err != nil {
		return models.Unavailable("zone store", err)
	}
	d.zones.Clear()

	d.logger.Info().
		Int("zones", len(ds.Zones)).
		Int("alerts", len(ds.Alerts)).
		Msg("Safety zones refreshed")
	return nil
}

// PruneCache drops expired zone lookups.
func (d *Directory) PruneCache() int {
	return d.zones.Prune()
}

func (d *Directory) allZones(ctx context.Context) ([]models.SafetyZone, error) {
	return d.cachedZones(ctx, "all_zones", d.store.AllZones)
}

func (d *Directory) cachedZones(ctx context.Context, key string, load func(context.Context) ([]models.SafetyZone, error)) ([]models.SafetyZone, error) {
	if zones, ok := d.zones.Get(key); ok {
		metrics.RecordZoneCacheLookup(true)
		return zones, nil
	}
	metrics.RecordZoneCacheLookup(false)

	zones, err := load(ctx)
	if err != nil {
		return nil, models.Unavailable("zone store", fmt.Errorf("load zones: %w", err))
	}
	d.zones.Set(key, zones)
	return zones, nil
}

// activeAlerts is never cached: activity depends on the clock.
func (d *Directory) activeAlerts(ctx context.Context) ([]models.SafetyAlert, error) {
	all, err := d.store.Alerts(ctx)
	if err != nil {
		return nil, models.Unavailable("zone store", fmt.Errorf("load alerts: %w", err))
	}
	now := d.now()
	active := make([]models.SafetyAlert, 0, len(all))
	for i := range all {
		if all[i].IsActiveAt(now) {
			active = append(active, all[i])
		}
	}
	return active, nil
}

// SortAlerts orders alerts by severity descending, StartAt descending, then ID.
func SortAlerts(alerts []models.SafetyAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if ra, rb := a.Severity.Rank(), b.Severity.Rank(); ra != rb {
			return ra > rb
		}
		if !a.StartAt.Equal(b.StartAt) {
			return a.StartAt.After(b.StartAt)
		}
		return a.ID < b.ID
	})
}

// SmallestContaining returns the zone of smallest area containing p, the
// earliest one on ties, or nil.
func SmallestContaining(zones []models.SafetyZone, p geo.Point) *models.SafetyZone {
	var best *models.SafetyZone
	bestArea := 0.0
	for i := range zones {
		if !zones[i].Boundary.Contains(p) {
			continue
		}
		area := zones[i].Boundary.Area()
		if best == nil || area < bestArea {
			best = &zones[i]
			bestArea = area
		}
	}
	return best
}
