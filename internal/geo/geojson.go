// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrUnsupportedGeometry is returned for GeoJSON geometries other than Polygon.
var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// ParseGeoJSON decodes a GeoJSON Polygon geometry.
func ParseGeoJSON(data []byte) (Polygon, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return Polygon{}, fmt.Errorf("decode geojson: %w", err)
	}
	return FromGeometry(g)
}

// FromGeometry converts a decoded GeoJSON geometry into a validated Polygon.
func FromGeometry(g *geojson.Geometry) (Polygon, error) {
	if g == nil {
		return Polygon{}, fmt.Errorf("%w: missing geometry", ErrInvalidPolygon)
	}
	return fromOrb(g.Geometry())
}

// fromOrb converts an orb polygon into a validated Polygon.
func fromOrb(g orb.Geometry) (Polygon, error) {
	op, ok := g.(orb.Polygon)
	if !ok {
		if g == nil {
			return Polygon{}, fmt.Errorf("%w: missing geometry", ErrInvalidPolygon)
		}
		return Polygon{}, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.GeoJSONType())
	}
	if len(op) == 0 {
		return Polygon{}, fmt.Errorf("%w: no rings", ErrInvalidPolygon)
	}

	poly := Polygon{Outer: toRing(op[0])}
	for _, hole := range op[1:] {
		poly.Holes = append(poly.Holes, toRing(hole))
	}
	if err := poly.Validate(); err != nil {
		return Polygon{}, err
	}
	return poly, nil
}

func toRing(r orb.Ring) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = fromOrbPoint(p)
	}
	return out
}

// MarshalGeoJSON encodes the polygon as a GeoJSON geometry with closed rings.
func (poly Polygon) MarshalGeoJSON() ([]byte, error) {
	return geojson.NewGeometry(poly.Orb()).MarshalJSON()
}
