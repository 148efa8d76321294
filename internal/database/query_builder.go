// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cappi/internal/geo"
	"github.com/tomtom215/cappi/internal/metrics"
)

// builder creates statements with DuckDB's ? placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// observe records query latency and outcome.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// encodeTags encodes tags as a JSON array; nil becomes [].
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

// decodeTags decodes a JSON array of tags; empty text yields an empty slice.
func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

// nullablePoint builds a point from nullable coordinates.
func nullablePoint(lat, lng sql.NullFloat64) *geo.Point {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
}

// pointArgs returns lat and lng arguments, NULL when p is nil.
func pointArgs(p *geo.Point) (lat, lng interface{}) {
	if p == nil {
		return nil, nil
	}
	return p.Lat, p.Lng
}

// nullableTime returns t or NULL.
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// nullableRating returns r or NULL.
func nullableRating(r *float64) interface{} {
	if r == nil {
		return nil
	}
	return *r
}

// zeroTimeNull stores the zero time as NULL.
func zeroTimeNull(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
