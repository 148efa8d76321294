// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package metrics provides Prometheus instrumentation for the concierge engine.

Metrics are registered on the default registry through promauto and exposed
by the metrics listener service at /metrics.

# Available Metrics

Recommendations:
  - recommendation_generations_total{outcome}
  - recommendation_generation_duration_seconds
  - recommendation_items
  - recommendation_candidates_dropped_total{entity_type}

Safety:
  - safety_zone_cache_lookups_total{result}
  - safety_zones_loaded
  - safety_zone_fetch_degraded_total
  - safety_zone_refreshes_total{outcome}
  - safety_zone_last_refresh_timestamp

Enrichment:
  - enrichment_steps_total{step,outcome}
  - enrichment_duration_seconds

Dependencies:
  - catalog_requests_total{operation,outcome}
  - circuit_breaker_state{name}, circuit_breaker_transitions_total{name,from,to}
  - record_store_operations_total{operation,outcome}
  - duckdb_query_duration_seconds{operation,table}, duckdb_query_errors_total{operation,table}
  - events_published_total{topic,outcome}

Usage:

	start := time.Now()
	rec, err := engine.Generate(ctx, userID, req)
	metrics.RecordGeneration("success", time.Since(start), len(rec.Items))
*/
package metrics
