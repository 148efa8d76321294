// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// WhereBuilder accumulates parameterized WHERE conditions for squirrel
// select builders. Optional filters with zero values are skipped.
//
// Example usage:
//
//	wb := query.NewWhereBuilder().
//	    AddCityContains("p.city", "cancún").
//	    AddCountry("p.country", "").
//	    AddMinInt("p.safety_score", 50)
//	stmt := sq.Select("p.id").From("places p").Where(wb.Build())
//	// WHERE (contains(lower(p.city), ?) AND p.safety_score >= ?)
type WhereBuilder struct {
	conds sq.And
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{conds: sq.And{}}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.conds = append(wb.conds, sq.Expr(clause, args...))
	return wb
}

// AddCityContains matches column as a case-insensitive substring of city.
// An empty city matches every row.
func (wb *WhereBuilder) AddCityContains(column, city string) *WhereBuilder {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return wb
	}
	return wb.AddClause("contains(lower("+column+"), ?)", city)
}

// AddCityEquals matches column against city case-insensitively.
func (wb *WhereBuilder) AddCityEquals(column, city string) *WhereBuilder {
	return wb.AddClause("lower(trim("+column+")) = ?", strings.ToLower(strings.TrimSpace(city)))
}

// AddCountry restricts column to country case-insensitively. Empty is skipped.
func (wb *WhereBuilder) AddCountry(column, country string) *WhereBuilder {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return wb
	}
	return wb.AddClause("lower(trim("+column+")) = ?", country)
}

// AddMinInt adds an inclusive lower bound.
func (wb *WhereBuilder) AddMinInt(column string, minValue int) *WhereBuilder {
	wb.conds = append(wb.conds, sq.GtOrEq{column: minValue})
	return wb
}

// AddMinRating requires a non-null column >= minRating. Non-positive is skipped.
func (wb *WhereBuilder) AddMinRating(column string, minRating float64) *WhereBuilder {
	if minRating <= 0 {
		return wb
	}
	wb.conds = append(wb.conds, sq.NotEq{column: nil}, sq.GtOrEq{column: minRating})
	return wb
}

// AddFlag requires a true boolean column when enabled.
func (wb *WhereBuilder) AddFlag(column string, enabled bool) *WhereBuilder {
	if !enabled {
		return wb
	}
	wb.conds = append(wb.conds, sq.Eq{column: true})
	return wb
}

// Build returns the accumulated conditions joined with AND.
func (wb *WhereBuilder) Build() sq.Sqlizer {
	return wb.conds
}

// Count returns the number of conditions.
func (wb *WhereBuilder) Count() int {
	return len(wb.conds)
}

// IsEmpty reports whether no condition was added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.conds) == 0
}
