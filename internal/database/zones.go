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

	"github.com/tomtom215/cappi/internal/database/query"
	"github.com/tomtom215/cappi/internal/geo"
	"github.com/tomtom215/cappi/internal/models"
	"github.com/tomtom215/cappi/internal/safety"
)

// ZonesByCity returns zones whose city equals city case-insensitively, in
// insertion order. An empty country matches any country.
func (db *DB) ZonesByCity(ctx context.Context, city, country string) ([]models.SafetyZone, error) {
	where := query.NewWhereBuilder().
		AddCityEquals("city", city).
		AddCountry("country", country)
	return db.selectZones(ctx, where.Build())
}

// AllZones returns every zone in insertion order.
func (db *DB) AllZones(ctx context.Context) ([]models.SafetyZone, error) {
	return db.selectZones(ctx, nil)
}

func (db *DB) selectZones(ctx context.Context, where sq.Sqlizer) (_ []models.SafetyZone, err error) {
	start := time.Now()
	defer func() { observe("select", "safety_zones", start, err) }()

	stmt := builder.Select("id", "city", "country", "boundary", "risk_level", "source").
		From("safety_zones").
		OrderBy("ordinal ASC")
	if where != nil {
		stmt = stmt.Where(where)
	}
	sqlStr, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build zones query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	zones := make([]models.SafetyZone, 0)
	for rows.Next() {
		var (
			z        models.SafetyZone
			boundary string
			risk     string
		)
		if err := rows.Scan(&z.ID, &z.City, &z.Country, &boundary, &risk, &z.Source); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		if z.Boundary, err = geo.ParseGeoJSON([]byte(boundary)); err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		z.RiskLevel = models.RiskLevel(risk)
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}
	return zones, nil
}

// Alerts returns every stored alert, active or not, in insertion order.
func (db *DB) Alerts(ctx context.Context) (_ []models.SafetyAlert, err error) {
	start := time.Now()
	defer func() { observe("select", "safety_alerts", start, err) }()

	sqlStr, args, err := builder.
		Select("id", "zone_id", "severity", "title", "description", "start_at", "end_at").
		From("safety_alerts").
		OrderBy("ordinal ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build alerts query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.SafetyAlert, 0)
	for rows.Next() {
		var (
			a        models.SafetyAlert
			severity string
			endAt    sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.ZoneID, &severity, &a.Title, &a.Description, &a.StartAt, &endAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Severity = models.AlertSeverity(severity)
		a.StartAt = a.StartAt.UTC()
		if endAt.Valid {
			t := endAt.Time.UTC()
			a.EndAt = &t
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

// ReplaceZones swaps the full zone and alert set in one transaction.
// Readers see either the old or the new set.
func (db *DB) ReplaceZones(ctx context.Context, zones []models.SafetyZone, alerts []models.SafetyAlert) (err error) {
	start := time.Now()
	defer func() { observe("replace", "safety_zones", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM safety_alerts`); err != nil {
		return fmt.Errorf("failed to clear alerts: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM safety_zones`); err != nil {
		return fmt.Errorf("failed to clear zones: %w", err)
	}

	for i := range zones {
		z := &zones[i]
		boundary, encErr := z.Boundary.MarshalGeoJSON()
		if encErr != nil {
			err = fmt.Errorf("zone %s: %w", z.ID, encErr)
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO safety_zones (id, city, country, boundary, risk_level, source) VALUES (?, ?, ?, ?, ?, ?)`,
			z.ID, z.City, z.Country, string(boundary), string(z.RiskLevel), z.Source); err != nil {
			return fmt.Errorf("failed to insert zone %s: %w", z.ID, err)
		}
	}

	for i := range alerts {
		a := &alerts[i]
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO safety_alerts (id, zone_id, severity, title, description, start_at, end_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.ZoneID, string(a.Severity), a.Title, a.Description, a.StartAt.UTC(), nullableTime(a.EndAt)); err != nil {
			return fmt.Errorf("failed to insert alert %s: %w", a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit zone replacement: %w", err)
	}
	return nil
}

var _ safety.Store = (*DB)(nil)
