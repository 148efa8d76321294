// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package safety is the safety zone directory: per-city zones with their
active alerts, point classification against zone polygons, and GeoJSON
dataset ingestion.

Zone lookups are cached for a configurable TTL. Alert activity is evaluated
on every call against the directory's clock, so a cached zone never carries
a stale alert set.

	dir := safety.NewDirectory(store, safety.WithCacheTTL(cfg.Safety.CacheTTL))
	level, err := dir.CheckPoint(ctx, 21.1333, -86.7467) // SAFE
*/
package safety
