// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package query

import (
	"reflect"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func TestWhereBuilder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func(*WhereBuilder)
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "city substring is lowercased",
			build:    func(wb *WhereBuilder) { wb.AddCityContains("p.city", "  CANCÚN ") },
			wantSQL:  "SELECT id FROM places p WHERE (contains(lower(p.city), ?))",
			wantArgs: []interface{}{"cancún"},
		},
		{
			name: "empty optional filters are skipped",
			build: func(wb *WhereBuilder) {
				wb.AddCityContains("p.city", "").AddCountry("p.country", " ").AddMinRating("e.rating_avg", 0).AddFlag("p.verified", false).AddMinInt("p.safety_score", 0)
			},
			wantSQL:  "SELECT id FROM places p WHERE (p.safety_score >= ?)",
			wantArgs: []interface{}{0},
		},
		{
			name: "catalog filters",
			build: func(wb *WhereBuilder) {
				wb.AddCountry("p.country", "Mexico").AddMinInt("p.safety_score", 50).AddFlag("p.verified", true)
			},
			wantSQL:  "SELECT id FROM places p WHERE (lower(trim(p.country)) = ? AND p.safety_score >= ? AND p.verified = ?)",
			wantArgs: []interface{}{"mexico", 50, true},
		},
		{
			name:     "rating cutoff excludes nulls",
			build:    func(wb *WhereBuilder) { wb.AddMinRating("e.rating_avg", 4.0) },
			wantSQL:  "SELECT id FROM places p WHERE (e.rating_avg IS NOT NULL AND e.rating_avg >= ?)",
			wantArgs: []interface{}{4.0},
		},
		{
			name:     "city equality",
			build:    func(wb *WhereBuilder) { wb.AddCityEquals("city", "Medellín") },
			wantSQL:  "SELECT id FROM places p WHERE (lower(trim(city)) = ?)",
			wantArgs: []interface{}{"medellín"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wb := NewWhereBuilder()
			tt.build(wb)
			sqlStr, args, err := sq.Select("id").From("places p").Where(wb.Build()).ToSql()
			if err != nil {
				t.Fatalf("ToSql: %v", err)
			}
			if sqlStr != tt.wantSQL {
				t.Errorf("sql = %q\nwant  %q", sqlStr, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %#v, want %#v", args, tt.wantArgs)
			}
		})
	}
}

func TestWhereBuilderCount(t *testing.T) {
	t.Parallel()

	wb := NewWhereBuilder()
	if !wb.IsEmpty() || wb.Count() != 0 {
		t.Fatal("new builder should be empty")
	}
	wb.AddClause("1 = 1").AddMinRating("r", 4.5)
	if wb.IsEmpty() || wb.Count() != 3 {
		t.Errorf("Count() = %d, want 3", wb.Count())
	}
}
