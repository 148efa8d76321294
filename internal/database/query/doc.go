// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

// Package query provides SQL condition building utilities for the database package.
//
// WhereBuilder collects squirrel conditions for catalog and zone lookups so
// that every optional filter (country, rating cutoff, verified flag) is
// applied the same way and always parameterized:
//
//	wb := query.NewWhereBuilder().
//	    AddCityContains("p.city", q.City).
//	    AddCountry("p.country", q.Country).
//	    AddMinInt("p.safety_score", q.MinSafety).
//	    AddFlag("p.verified", q.VerifiedOnly)
//	sqlStr, args, err := sq.Select("p.id").From("places p").Where(wb.Build()).ToSql()
//
// City matching lowercases the argument in Go and the column in SQL, so
// "cancún" matches a stored "Cancún".
package query
