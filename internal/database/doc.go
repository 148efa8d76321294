// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

// Package database provides DuckDB-backed data access for Cappi.
//
// # Overview
//
// DB implements the read interfaces the domain packages depend on:
//
//   - catalog.Accessor: PlacesByCityAndSafetyFloor, ExperiencesByCityAndSafetyFloor
//   - safety.Store: ZonesByCity, AllZones, Alerts, ReplaceZones
//   - recommend.ProfileAccessor / enrich.ProfileAccessor: ProfileByUserID
//   - enrich.TripAccessor: TripByID
//
// # Architecture
//
//   - database.go: Connection lifecycle (open, pool sizing, checkpoint, close)
//   - database_schema.go: Table, sequence and index creation
//   - migrations.go: Versioned migrations tracked in schema_migrations
//   - query_builder.go: squirrel statement builder and encoding helpers
//   - catalog.go, travelers.go, zones.go: Queries and inserts per table group
//   - seed.go: Idempotent demo data (Cancún and Medellín)
//   - query/: Reusable WHERE condition builder
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	places, err := db.PlacesByCityAndSafetyFloor(ctx, catalog.Query{City: "Cancún", MinSafety: 50, VerifiedOnly: true})
//
// # Thread Safety
//
// DB is safe for concurrent use. ReplaceZones runs in a single transaction so
// readers never observe a partially replaced zone set.
//
// Every query records latency and outcome through metrics.RecordDBQuery.
package database
