// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/cappi/internal/catalog"
	"github.com/tomtom215/cappi/internal/database/query"
	"github.com/tomtom215/cappi/internal/models"
)

const placeColumns = "p.id, p.type, p.name, p.city, p.country, p.lat, p.lng, p.tags, p.safety_score, p.verified, p.price_tier"

// hostColumns is the host projection for experiences. Candidates keep only
// the host's identity, location and score, so tags are not selected.
const hostColumns = "p.id, p.type, p.name, p.city, p.country, p.lat, p.lng, p.safety_score, p.verified, p.price_tier"

// PlacesByCityAndSafetyFloor returns places whose city contains q.City,
// ordered by safety score descending, verified partners first on ties, then
// insertion order.
func (db *DB) PlacesByCityAndSafetyFloor(ctx context.Context, q catalog.Query) (_ []models.Candidate, err error) {
	start := time.Now()
	defer func() { observe("select", "places", start, err) }()

	where := query.NewWhereBuilder().
		AddCityContains("p.city", q.City).
		AddCountry("p.country", q.Country).
		AddMinInt("p.safety_score", q.MinSafety).
		AddFlag("p.verified", q.VerifiedOnly)

	sqlStr, args, err := builder.Select(placeColumns).
		From("places p").
		Where(where.Build()).
		OrderBy("p.safety_score DESC", "p.verified DESC", "p.ordinal ASC").
		Limit(uint64(q.EffectiveLimit())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build places query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candidate, 0, q.EffectiveLimit())
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, models.PlaceCandidate(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}
	return out, nil
}

// ExperiencesByCityAndSafetyFloor returns experiences hosted at places in
// q.City whose safety score meets the floor, ordered by rating descending.
// Experiences without a host place are never returned.
func (db *DB) ExperiencesByCityAndSafetyFloor(ctx context.Context, q catalog.Query) (_ []models.Candidate, err error) {
	start := time.Now()
	defer func() { observe("select", "experiences", start, err) }()

	where := query.NewWhereBuilder().
		AddCityContains("p.city", q.City).
		AddCountry("p.country", q.Country).
		AddMinInt("p.safety_score", q.MinSafety).
		AddMinRating("e.rating_avg", q.MinRating)

	sqlStr, args, err := builder.Select(
		"e.id, e.place_id, e.title, e.category, e.tags, e.rating_avg, e.rating_count, e.price_tier",
		hostColumns,
	).
		From("experiences e").
		Join("places p ON p.id = e.place_id").
		Where(where.Build()).
		OrderBy("e.rating_avg DESC NULLS LAST", "e.ordinal ASC").
		Limit(uint64(q.EffectiveLimit())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build experiences query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query experiences: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candidate, 0, q.EffectiveLimit())
	for rows.Next() {
		var (
			e       models.Experience
			expTags string
			rating  sql.NullFloat64
			host    models.Place
			lat     sql.NullFloat64
			lng     sql.NullFloat64
		)
		if err := rows.Scan(
			&e.ID, &e.PlaceID, &e.Title, &e.Category, &expTags, &rating, &e.RatingCount, &e.PriceTier,
			&host.ID, &host.Type, &host.Name, &host.City, &host.Country, &lat, &lng,
			&host.SafetyScore, &host.Verified, &host.PriceTier,
		); err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		if e.Tags, err = decodeTags(expTags); err != nil {
			return nil, err
		}
		if rating.Valid {
			r := rating.Float64
			e.RatingAvg = &r
		}
		host.Location = nullablePoint(lat, lng)
		out = append(out, models.ExperienceCandidate(&e, &host))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate experiences: %w", err)
	}
	return out, nil
}

// scanPlace scans one row selected with placeColumns.
func scanPlace(rows *sql.Rows) (*models.Place, error) {
	var (
		p    models.Place
		lat  sql.NullFloat64
		lng  sql.NullFloat64
		tags string
	)
	if err := rows.Scan(&p.ID, &p.Type, &p.Name, &p.City, &p.Country, &lat, &lng, &tags, &p.SafetyScore, &p.Verified, &p.PriceTier); err != nil {
		return nil, fmt.Errorf("failed to scan place: %w", err)
	}
	var err error
	if p.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	p.Location = nullablePoint(lat, lng)
	return &p, nil
}

// InsertPlace adds a place. An existing place with the same id is left unchanged.
func (db *DB) InsertPlace(ctx context.Context, p *models.Place) (err error) {
	start := time.Now()
	defer func() { observe("insert", "places", start, err) }()

	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}
	lat, lng := pointArgs(p.Location)

	sqlStr, args, err := builder.Insert("places").
		Options("OR IGNORE").
		Columns("id", "type", "name", "city", "country", "lat", "lng", "tags", "safety_score", "verified", "price_tier").
		Values(p.ID, p.Type, p.Name, p.City, p.Country, lat, lng, tags, p.SafetyScore, p.Verified, p.PriceTier).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build place insert: %w", err)
	}
	if _, err = db.conn.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert place %s: %w", p.ID, err)
	}
	return nil
}

// InsertExperience adds an experience. An existing experience with the same id is left unchanged.
func (db *DB) InsertExperience(ctx context.Context, e *models.Experience) (err error) {
	start := time.Now()
	defer func() { observe("insert", "experiences", start, err) }()

	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}

	sqlStr, args, err := builder.Insert("experiences").
		Options("OR IGNORE").
		Columns("id", "place_id", "title", "category", "tags", "rating_avg", "rating_count", "price_tier").
		Values(e.ID, e.PlaceID, e.Title, e.Category, tags, nullableRating(e.RatingAvg), e.RatingCount, e.PriceTier).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build experience insert: %w", err)
	}
	if _, err = db.conn.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert experience %s: %w", e.ID, err)
	}
	return nil
}

var _ catalog.Accessor = (*DB)(nil)
