// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
database_schema.go - Database Schema Management

Tables:
  - places: Catalog places with safety score and verified partner flag
  - experiences: Bookable experiences hosted at a place
  - traveler_profiles: Read-only traveler profiles (risk tolerance, preferences)
  - trips, itinerary_items: Planned trips and their scheduled entries
  - safety_zones: Zone polygons stored as GeoJSON text
  - safety_alerts: Time-bounded alerts keyed by zone id (no foreign key)

Zones and alerts have no primary key: the whole set is deleted and
re-inserted in one transaction on every refresh, and ids are checked for
uniqueness at ingestion.

Every catalog and zone table carries an ordinal column fed by a sequence.
Ordinals record insertion order, which is the tie-break for equal sort keys.
Tags and preferences are JSON text so the schema needs no extensions.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS places_ordinal_seq;`,
		`CREATE TABLE IF NOT EXISTS places (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			city TEXT NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			lat DOUBLE,
			lng DOUBLE,
			tags TEXT NOT NULL DEFAULT '[]',
			safety_score INTEGER NOT NULL CHECK (safety_score BETWEEN 0 AND 100),
			verified BOOLEAN NOT NULL DEFAULT false,
			price_tier INTEGER NOT NULL DEFAULT 0,
			ordinal BIGINT NOT NULL DEFAULT nextval('places_ordinal_seq')
		);`,

		`CREATE SEQUENCE IF NOT EXISTS experiences_ordinal_seq;`,
		`CREATE TABLE IF NOT EXISTS experiences (
			id TEXT PRIMARY KEY,
			place_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			rating_avg DOUBLE,
			rating_count INTEGER NOT NULL DEFAULT 0,
			price_tier INTEGER NOT NULL DEFAULT 0,
			ordinal BIGINT NOT NULL DEFAULT nextval('experiences_ordinal_seq')
		);`,

		`CREATE TABLE IF NOT EXISTS traveler_profiles (
			user_id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			home_airport TEXT NOT NULL DEFAULT '',
			risk_tolerance TEXT NOT NULL DEFAULT '',
			loyalty_tier TEXT NOT NULL DEFAULT '',
			preferences TEXT NOT NULL DEFAULT '{}'
		);`,

		`CREATE TABLE IF NOT EXISTS trips (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			party_size INTEGER NOT NULL DEFAULT 1,
			budget_level TEXT NOT NULL DEFAULT ''
		);`,

		`CREATE SEQUENCE IF NOT EXISTS itinerary_items_ordinal_seq;`,
		`CREATE TABLE IF NOT EXISTS itinerary_items (
			id TEXT PRIMARY KEY,
			trip_id TEXT NOT NULL,
			day_index INTEGER NOT NULL DEFAULT 0,
			start_time TIMESTAMP,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			ordinal BIGINT NOT NULL DEFAULT nextval('itinerary_items_ordinal_seq')
		);`,

		`CREATE SEQUENCE IF NOT EXISTS safety_zones_ordinal_seq;`,
		`CREATE TABLE IF NOT EXISTS safety_zones (
			id TEXT NOT NULL,
			city TEXT NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			boundary TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			ordinal BIGINT NOT NULL DEFAULT nextval('safety_zones_ordinal_seq')
		);`,

		`CREATE SEQUENCE IF NOT EXISTS safety_alerts_ordinal_seq;`,
		`CREATE TABLE IF NOT EXISTS safety_alerts (
			id TEXT NOT NULL,
			zone_id TEXT NOT NULL,
			severity TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			start_at TIMESTAMP NOT NULL,
			end_at TIMESTAMP,
			ordinal BIGINT NOT NULL DEFAULT nextval('safety_alerts_ordinal_seq')
		);`,
	}
}

// createIndexes creates database indexes for query optimization
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

// getIndexQueries returns index creation SQL statements
func (db *DB) getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_places_city ON places(city);`,
		`CREATE INDEX IF NOT EXISTS idx_experiences_place ON experiences(place_id);`,
		`CREATE INDEX IF NOT EXISTS idx_trips_user ON trips(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_itinerary_trip ON itinerary_items(trip_id);`,
		`CREATE INDEX IF NOT EXISTS idx_zones_city ON safety_zones(city);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_zone ON safety_alerts(zone_id);`,
	}
}
