// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/safety"
)

// ZoneRefresher swaps in a new zone dataset. *safety.Directory satisfies it.
type ZoneRefresher interface {
	Refresh(ctx context.Context, ds *safety.Dataset) error
	PruneCache() int
}

// ZoneRefreshService reloads the zone dataset file on a cron schedule.
// Runs never overlap; a tick arriving during a run is skipped.
type ZoneRefreshService struct {
	refresher ZoneRefresher
	path      string
	schedule  string
	logger    zerolog.Logger

	running sync.Mutex
}

// NewZoneRefreshService creates the service. schedule accepts standard
// five-field cron expressions and descriptors such as "@every 15m".
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewZoneRefreshService(refresher ZoneRefresher, path, schedule string, logger zerolog.Logger) *ZoneRefreshService {
	return &ZoneRefreshService{
		refresher: refresher,
		path:      path,
		schedule:  schedule,
		logger:    logger,
	}
}

// RunOnce loads the dataset and refreshes the zones. A dataset that fails to
// load or validate leaves the current zones in place.
func (s *ZoneRefreshService) RunOnce(ctx context.Context) error {
	if !s.running.TryLock() {
		s.logger.Debug().Msg("Zone refresh already running, skipping tick")
		return nil
	}
	defer s.running.Unlock()

	start := time.Now()
	ds, err := safety.LoadDatasetFile(s.path)
	if err != nil {
		return fmt.Errorf("load zone dataset: %w", err)
	}
	if err := s.refresher.Refresh(ctx, ds); err != nil {
		return fmt.Errorf("refresh zones: %w", err)
	}
	pruned := s.refresher.PruneCache()

	s.logger.Info().
		Str("path", s.path).
		Int("zones", len(ds.Zones)).
		Int("pruned_lookups", pruned).
		Dur("duration", time.Since(start)).
		Msg("Zone dataset reloaded")
	return nil
}

// Serve implements suture.Service.
func (s *ZoneRefreshService) Serve(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error().Err(err).Str("path", s.path).Msg("Zone refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule zone refresh %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("Zone refresh scheduled")

	<-ctx.Done()
	// Stop waits for a job already in flight.
	<-c.Stop().Done()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *ZoneRefreshService) String() string {
	return "zone-refresh"
}
