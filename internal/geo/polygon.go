// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

// Package geo holds the coordinate and polygon types used to classify
// coordinates against safety zone boundaries.
//
// Coordinates are WGS84 degrees. Zone polygons cover a few kilometres, so
// containment and area are computed in the plane with orb/planar.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// boundaryEpsilon is the tolerance, in degrees, for treating a point as lying
// on a polygon edge (roughly 1 cm at the equator).
const boundaryEpsilon = 1e-7

// ErrInvalidPolygon is returned when a ring has fewer than three distinct vertices
// or contains non-finite coordinates.
var ErrInvalidPolygon = errors.New("invalid polygon")

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within latitude/longitude bounds.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Orb returns p as an orb point (x = longitude, y = latitude).
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

func fromOrbPoint(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lng: p.Lon()}
}

// Ring is a closed sequence of vertices. The closing vertex may be repeated
// (GeoJSON style) or implied.
type Ring []Point

// Polygon is an outer ring with optional holes.
type Polygon struct {
	Outer Ring   `json:"outer"`
	Holes []Ring `json:"holes,omitempty"`
}

// Validate checks that every ring has at least three distinct vertices with finite coordinates.
func (poly Polygon) Validate() error {
	if err := validateRing(poly.Outer); err != nil {
		return fmt.Errorf("outer ring: %w", err)
	}
	for i, h := range poly.Holes {
		if err := validateRing(h); err != nil {
			return fmt.Errorf("hole %d: %w", i, err)
		}
	}
	return nil
}

func validateRing(r Ring) error {
	for _, p := range r {
		if !p.Valid() {
			return fmt.Errorf("%w: coordinate out of range (%f, %f)", ErrInvalidPolygon, p.Lat, p.Lng)
		}
	}
	if len(r.open()) < 3 {
		return fmt.Errorf("%w: need at least 3 distinct vertices, got %d", ErrInvalidPolygon, len(r.open()))
	}
	return nil
}

// open returns the ring without a repeated closing vertex.
func (r Ring) open() Ring {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

// Orb returns the ring as a closed orb ring.
func (r Ring) Orb() orb.Ring {
	pts := r.open()
	out := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		out = append(out, p.Orb())
	}
	if len(pts) > 0 {
		out = append(out, pts[0].Orb())
	}
	return out
}

// Orb returns the polygon as an orb polygon with closed rings, outer ring first.
func (poly Polygon) Orb() orb.Polygon {
	if len(poly.Outer) == 0 {
		return nil
	}
	out := make(orb.Polygon, 0, 1+len(poly.Holes))
	out = append(out, poly.Outer.Orb())
	for _, h := range poly.Holes {
		out = append(out, h.Orb())
	}
	return out
}

// Contains reports whether p lies inside the polygon. Points on or within
// boundaryEpsilon of the outer ring count as inside, and so do points on a
// hole's edge; points strictly inside a hole do not.
func (poly Polygon) Contains(p Point) bool {
	op := poly.Orb()
	if len(op) == 0 {
		return false
	}
	pt := p.Orb()
	if !planar.RingContains(op[0], pt) && !onRing(op[0], pt) {
		return false
	}
	for _, hole := range op[1:] {
		if onRing(hole, pt) {
			continue
		}
		if planar.RingContains(hole, pt) {
			return false
		}
	}
	return true
}

// Area returns the planar area in square degrees, holes subtracted.
// Only used to compare zone specificity, never as a physical measure.
func (poly Polygon) Area() float64 {
	op := poly.Orb()
	if len(op) == 0 {
		return 0
	}
	return math.Max(planar.Area(op), 0)
}

// Centroid returns the area-weighted centroid of the polygon.
func (poly Polygon) Centroid() Point {
	op := poly.Orb()
	if len(op) == 0 {
		return Point{}
	}
	c, _ := planar.CentroidArea(op)
	return fromOrbPoint(c)
}

// onRing reports whether p lies within boundaryEpsilon of an edge of the
// closed ring r.
func onRing(r orb.Ring, p orb.Point) bool {
	for i := 1; i < len(r); i++ {
		if onSegment(r[i-1], r[i], p) {
			return true
		}
	}
	return false
}

func onSegment(a, b, p orb.Point) bool {
	cross := (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
	if math.Abs(cross) > boundaryEpsilon {
		return false
	}
	return p.X() >= math.Min(a.X(), b.X())-boundaryEpsilon &&
		p.X() <= math.Max(a.X(), b.X())+boundaryEpsilon &&
		p.Y() >= math.Min(a.Y(), b.Y())-boundaryEpsilon &&
		p.Y() <= math.Max(a.Y(), b.Y())+boundaryEpsilon
}
