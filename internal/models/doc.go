// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package models defines the data structures shared by the Cappi recommendation
and context enrichment engine.

Model Categories:

 1. Safety:
    - SafetyZone: geo-tagged area with a RiskLevel and an authoritative boundary
    - SafetyAlert: time-bounded alert weakly referencing a zone by ID

 2. Catalog:
    - Place, Experience: catalog rows read through the catalog accessor
    - Candidate: transient scoring input built per request

 3. Recommendations:
    - RankedItem: scored, reason-annotated candidate
    - RecommendationRecord: immutable, append-only ranking snapshot
    - RequestContext: the request parameters captured in a record

 4. Travelers:
    - TravelerProfile, Trip, ItineraryItem: read-only external entities

Errors:

errors.go holds the error taxonomy used across packages. Callers check with
errors.Is against ErrInvalidInput, ErrNotFound and ErrDependencyUnavailable.
*/
package models
