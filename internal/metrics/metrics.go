// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendationGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_generations_total",
			Help: "Total number of recommendation generations by outcome",
		},
		[]string{"outcome"}, // "success", "invalid_input", "unavailable"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_generation_duration_seconds",
			Help:    "Duration of recommendation generation in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	RecommendationItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_items",
			Help:    "Number of ranked items per recommendation record",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20},
		},
	)

	RecommendationCandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_candidates_dropped_total",
			Help: "Candidates dropped by the ranking safety floor",
		},
		[]string{"entity_type"},
	)

	// Safety Metrics
	SafetyZoneCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safety_zone_cache_lookups_total",
			Help: "Safety zone cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	SafetyZonesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safety_zones_loaded",
			Help: "Number of safety zones loaded by the last refresh",
		},
	)

	SafetyZoneFetchDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safety_zone_fetch_degraded_total",
			Help: "Generations that proceeded without zone data",
		},
	)

	SafetyZoneRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safety_zone_refreshes_total",
			Help: "Zone dataset refreshes by outcome",
		},
		[]string{"outcome"},
	)

	SafetyZoneLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safety_zone_last_refresh_timestamp",
			Help: "Unix timestamp of the last successful zone refresh",
		},
	)

	// Enrichment Metrics
	EnrichmentSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_steps_total",
			Help: "Context enrichment steps by step and outcome",
		},
		[]string{"step", "outcome"}, // outcome: "ok", "absent", "skipped"
	)

	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrichment_duration_seconds",
			Help:    "Duration of context enrichment in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// Catalog Metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Catalog accessor requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Storage Metrics
	RecordStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_store_operations_total",
			Help: "Recommendation record store operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordGeneration records a finished generation.
func RecordGeneration(result string, duration time.Duration, items int) {
	RecommendationGenerations.WithLabelValues(result).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	if result == "success" {
		RecommendationItems.Observe(float64(items))
	}
}

// RecordDroppedCandidate counts a candidate removed by the safety floor.
func RecordDroppedCandidate(entityType string) {
	RecommendationCandidatesDropped.WithLabelValues(entityType).Inc()
}

// RecordZoneCacheLookup counts a zone cache hit or miss.
func RecordZoneCacheLookup(hit bool) {
	if hit {
		SafetyZoneCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	SafetyZoneCacheLookups.WithLabelValues("miss").Inc()
}

// RecordZoneRefresh records a zone dataset refresh.
func RecordZoneRefresh(zones int, err error) {
	SafetyZoneRefreshes.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	SafetyZonesLoaded.Set(float64(zones))
	SafetyZoneLastRefresh.Set(float64(time.Now().Unix()))
}

// RecordEnrichmentStep records the outcome of one enrichment step.
func RecordEnrichmentStep(step, result string) {
	EnrichmentSteps.WithLabelValues(step, result).Inc()
}

// RecordCatalogRequest records a catalog accessor call.
func RecordCatalogRequest(operation string, err error) {
	CatalogRequests.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordBreakerTransition records a circuit breaker state change.
// States follow gobreaker: 0 closed, 1 half-open, 2 open.
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordStoreOperation records a record store call.
func RecordStoreOperation(operation string, err error) {
	RecordStoreOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordEventPublish records a publish attempt.
func RecordEventPublish(topic string, err error) {
	EventsPublished.WithLabelValues(topic, outcome(err)).Inc()
}
