// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package supervisor runs the long-lived parts of the concierge daemon under a
suture v4 supervisor tree.

	cappi (root)
	├── data-layer       zone refresh cron
	├── messaging-layer  recommendation event consumer
	└── api-layer        Prometheus metrics listener

Services restart with exponential backoff after FailureThreshold failures
within the decay window. Supervisor events are logged through sutureslog,
which the daemon bridges into zerolog with logging.NewSlogLogger.

Service adapters live in the services subpackage.
*/
package supervisor
