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

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cappi/internal/models"
)

// ProfileByUserID returns the traveler profile of userID.
// A missing profile is models.ErrNotFound.
func (db *DB) ProfileByUserID(ctx context.Context, userID string) (_ *models.TravelerProfile, err error) {
	start := time.Now()
	defer func() { observe("select", "traveler_profiles", start, err) }()

	sqlStr, args, err := builder.
		Select("user_id", "full_name", "home_airport", "risk_tolerance", "loyalty_tier", "preferences").
		From("traveler_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	var (
		p     models.TravelerProfile
		risk  string
		prefs string
	)
	row := db.conn.QueryRowContext(ctx, sqlStr, args...)
	if err := row.Scan(&p.UserID, &p.FullName, &p.HomeAirport, &risk, &p.LoyaltyTier, &prefs); err != nil {
		return nil, notFound(err, "profile", userID)
	}
	p.RiskTolerance = models.RiskTolerance(risk)
	if prefs != "" && prefs != "{}" {
		if err := json.Unmarshal([]byte(prefs), &p.Preferences); err != nil {
			return nil, fmt.Errorf("failed to decode preferences of %s: %w", userID, err)
		}
	}
	return &p, nil
}

// InsertProfile adds a traveler profile. An existing profile is left unchanged.
func (db *DB) InsertProfile(ctx context.Context, p *models.TravelerProfile) (err error) {
	start := time.Now()
	defer func() { observe("insert", "traveler_profiles", start, err) }()

	prefs := []byte("{}")
	if len(p.Preferences) > 0 {
		if prefs, err = json.Marshal(p.Preferences); err != nil {
			return fmt.Errorf("failed to encode preferences: %w", err)
		}
	}

	sqlStr, args, err := builder.Insert("traveler_profiles").
		Options("OR IGNORE").
		Columns("user_id", "full_name", "home_airport", "risk_tolerance", "loyalty_tier", "preferences").
		Values(p.UserID, p.FullName, p.HomeAirport, string(p.RiskTolerance), p.LoyaltyTier, string(prefs)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile insert: %w", err)
	}
	if _, err = db.conn.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert profile %s: %w", p.UserID, err)
	}
	return nil
}

// TripByID returns a trip with its itinerary ordered by day, start time and
// insertion order. A missing trip is models.ErrNotFound.
func (db *DB) TripByID(ctx context.Context, tripID string) (_ *models.Trip, err error) {
	start := time.Now()
	defer func() { observe("select", "trips", start, err) }()

	sqlStr, args, err := builder.
		Select("id", "user_id", "title", "city", "country", "start_date", "end_date", "party_size", "budget_level").
		From("trips").
		Where(sq.Eq{"id": tripID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trip query: %w", err)
	}

	var (
		trip       models.Trip
		startDate  sql.NullTime
		endDate    sql.NullTime
		budgetText string
	)
	row := db.conn.QueryRowContext(ctx, sqlStr, args...)
	if err := row.Scan(&trip.ID, &trip.UserID, &trip.Title, &trip.City, &trip.Country, &startDate, &endDate, &trip.PartySize, &budgetText); err != nil {
		return nil, notFound(err, "trip", tripID)
	}
	if startDate.Valid {
		trip.StartDate = startDate.Time.UTC()
	}
	if endDate.Valid {
		trip.EndDate = endDate.Time.UTC()
	}
	trip.BudgetLevel = models.BudgetLevel(budgetText)

	if trip.Items, err = db.itineraryItems(ctx, tripID); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (db *DB) itineraryItems(ctx context.Context, tripID string) ([]models.ItineraryItem, error) {
	sqlStr, args, err := builder.
		Select("id", "trip_id", "day_index", "start_time", "entity_type", "entity_id", "title", "notes").
		From("itinerary_items").
		Where(sq.Eq{"trip_id": tripID}).
		OrderBy("day_index ASC", "start_time ASC NULLS LAST", "ordinal ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build itinerary query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary of %s: %w", tripID, err)
	}
	defer rows.Close()

	items := make([]models.ItineraryItem, 0)
	for rows.Next() {
		var (
			item       models.ItineraryItem
			startTime  sql.NullTime
			entityType string
		)
		if err := rows.Scan(&item.ID, &item.TripID, &item.DayIndex, &startTime, &entityType, &item.EntityID, &item.Title, &item.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		if startTime.Valid {
			t := startTime.Time.UTC()
			item.StartTime = &t
		}
		item.EntityType = models.EntityType(entityType)
		items = append(items, item)
	}
	return items, rows.Err()
}

// InsertTrip adds a trip and its itinerary in one transaction. An existing
// trip or item with the same id is left unchanged.
func (db *DB) InsertTrip(ctx context.Context, trip *models.Trip) (err error) {
	start := time.Now()
	defer func() { observe("insert", "trips", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sqlStr, args, err := builder.Insert("trips").
		Options("OR IGNORE").
		Columns("id", "user_id", "title", "city", "country", "start_date", "end_date", "party_size", "budget_level").
		Values(trip.ID, trip.UserID, trip.Title, trip.City, trip.Country,
			zeroTimeNull(trip.StartDate), zeroTimeNull(trip.EndDate), trip.PartySize, string(trip.BudgetLevel)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build trip insert: %w", err)
	}
	if _, err = tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to insert trip %s: %w", trip.ID, err)
	}

	for i := range trip.Items {
		item := &trip.Items[i]
		sqlStr, args, err = builder.Insert("itinerary_items").
			Options("OR IGNORE").
			Columns("id", "trip_id", "day_index", "start_time", "entity_type", "entity_id", "title", "notes").
			Values(item.ID, trip.ID, item.DayIndex, nullableTime(item.StartTime), string(item.EntityType), item.EntityID, item.Title, item.Notes).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build itinerary insert: %w", err)
		}
		if _, err = tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("failed to insert itinerary item %s: %w", item.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trip %s: %w", trip.ID, err)
	}
	return nil
}
