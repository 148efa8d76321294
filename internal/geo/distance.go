// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package geo

import (
	orbgeo "github.com/paulmach/orb/geo"
)

// HaversineKm returns the great-circle distance between two points in kilometres.
func HaversineKm(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.Orb(), b.Orb()) / 1000
}
