// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package recommend generates safety-aware recommendations of places and
experiences.

# Overview

A generation resolves the traveler's risk tolerance, fetches safety zones
and catalog candidates concurrently, scores and ranks the candidates, and
persists the result as an immutable RecommendationRecord:

	engine, err := recommend.NewEngine(cfg, recommend.Deps{
	    Catalog:  catalogAccessor,
	    Zones:    zoneDirectory,
	    Profiles: profileStore,
	    Store:    recordStore,
	})
	result, err := engine.Generate(ctx, userID, models.RequestContext{City: "Cancún"})

# Safety Floor

Each risk tolerance maps to a minimum safety score (LOW 70, MEDIUM 50,
HIGH 30). No ranked item ever falls below the floor of the tolerance it
was generated under. Experiences are judged by the safety score of their
host place, or 50 when the host is unknown.

# Scoring

Scores are integers in [0, 100], rounded half up:

	place:      0.4*safety + 0.2*verified + 0.2*budgetFit + 0.2*locationQuality
	experience: 0.4*safety + 30*(rating/5) + budgetFit + min(10, ratingCount/2)

budgetFit and locationQuality are pluggable signals in [0, 20]; place
weights apply to the signal scaled to [0, 100]. The default location
signal reads the risk level of the zone containing the place, so scoring
needs no randomness and repeated runs produce identical output.

# Ordering

Items are sorted by score, highest first. Ties keep discovery order:
places before experiences, catalog order within each type.

# Degradation

The safety zone fetch is bounded by a timeout. When it fails or expires
the generation continues without zone data and reports
SafetyInfo.ZoneDataAvailable = false. Catalog, profile and record store
failures abort the generation with models.ErrDependencyUnavailable.

Sub-package storage holds the record stores.
*/
package recommend
