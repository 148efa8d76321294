// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/cappi/internal/config"
	"github.com/tomtom215/cappi/internal/events"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/supervisor"
	"github.com/tomtom215/cappi/internal/supervisor/services"
)

// serve runs the daemon until ctx is canceled.
func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close resources")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.DefaultTreeConfig(),
	)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Safety.RefreshSchedule != "" {
		tree.AddDataService(services.NewZoneRefreshService(
			a.directory,
			cfg.Safety.DatasetPath,
			cfg.Safety.RefreshSchedule,
			logging.WithComponent("zone-refresh"),
		))
	}
	if a.subscriber != nil {
		tree.AddMessagingService(events.NewConsumer(
			a.subscriber,
			cfg.Events.Topic,
			events.LogHandler(logging.WithComponent("event-consumer")),
			logging.WithComponent("event-consumer"),
		))
	}
	if cfg.Metrics.Enabled {
		tree.AddAPIService(services.NewHTTPServerService(
			"metrics",
			services.NewMetricsServer(cfg.Metrics.Addr, cfg.Metrics.Path),
			0,
		))
	}

	watchLogLevel()

	a.logger.Info().
		Str("zone_schedule", cfg.Safety.RefreshSchedule).
		Str("events_backend", cfg.Events.Backend).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("Concierge started")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}
	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			a.logger.Warn().Str("service", svc.Name).Msg("Service did not stop before the shutdown timeout")
		}
	}
	a.logger.Info().Msg("Concierge stopped")
	return nil
}

// watchLogLevel re-applies the logging section when the config file changes.
// Other sections need a restart.
func watchLogLevel() {
	path := config.ConfigFile()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		cfg, err := config.LoadWithKoanf()
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config change")
			return
		}
		initLogging(&cfg.Logging)
		logging.Info().Str("level", cfg.Logging.Level).Msg("Logging configuration reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
	}
}
