// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package services adapts the daemon's long-running components to the
suture.Service interface.

  - HTTPServerService: wraps an *http.Server (the metrics listener) and
    shuts it down gracefully when the supervisor stops
  - ZoneRefreshService: reloads the safety zone dataset on a cron schedule
    and prunes expired zone lookups

Each service returns ctx.Err() on shutdown and a wrapped error on failure,
letting the supervisor decide whether to restart it.
*/
package services
