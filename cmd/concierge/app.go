// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/catalog"
	"github.com/tomtom215/cappi/internal/config"
	"github.com/tomtom215/cappi/internal/database"
	"github.com/tomtom215/cappi/internal/enrich"
	"github.com/tomtom215/cappi/internal/events"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/models"
	"github.com/tomtom215/cappi/internal/recommend"
	"github.com/tomtom215/cappi/internal/recommend/storage"
	"github.com/tomtom215/cappi/internal/safety"
)

// app holds the wired components shared by every mode.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	db         *database.DB
	directory  *safety.Directory
	records    storage.RecordStore
	publisher  *events.Publisher
	subscriber message.Subscriber
	engine     *recommend.Engine
	pipeline   *enrich.Pipeline

	closers []io.Closer
}

// newApp opens the stores and wires the engine and pipeline. On error every
// resource opened so far is closed.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logging.WithComponent("concierge")}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.db, err = database.New(&cfg.Database); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, a.db)

	if cfg.Database.SeedDemoData {
		if err = a.db.SeedDemoData(ctx); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	a.directory = safety.NewDirectory(a.db,
		safety.WithCacheTTL(cfg.Safety.CacheTTL),
		safety.WithLogger(logging.WithComponent("safety")),
	)
	a.loadZones(ctx)

	if a.records, err = openRecordStore(&cfg.Store); err != nil {
		return nil, err
	}
	if c, ok := a.records.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	if err = a.openEvents(); err != nil {
		return nil, err
	}

	deps := recommend.Deps{
		Catalog:  catalog.NewBreakerAccessor(a.db, breakerConfig(&cfg.Breaker)),
		Zones:    a.directory,
		Profiles: a.db,
		Store:    a.records,
	}
	if a.publisher != nil {
		deps.Publisher = a.publisher
	}
	if a.engine, err = recommend.NewEngine(recommendConfig(&cfg.Recommend), deps); err != nil {
		return nil, err
	}

	a.pipeline = enrich.NewPipeline(enrich.Sources{
		Profiles: a.db,
		Safety:   a.directory,
		Trips:    a.db,
		History:  a.engine,
	}, enrich.WithStepTimeout(cfg.Enrich.StepTimeout))

	return a, nil
}

// loadZones replaces the stored zones with the configured dataset. A bad
// dataset keeps whatever the database already holds.
func (a *app) loadZones(ctx context.Context) {
	path := a.cfg.Safety.DatasetPath
	if path == "" {
		return
	}
	ds, err := safety.LoadDatasetFile(path)
	if err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Zone dataset not loaded, keeping stored zones")
		return
	}
	if err := a.directory.Refresh(ctx, ds); err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Zone refresh failed, keeping stored zones")
	}
}

func (a *app) openEvents() error {
	pub, sub, err := events.Open(&a.cfg.Events, logging.WithComponent("events"))
	if err != nil {
		return fmt.Errorf("open events backend: %w", err)
	}
	if pub == nil {
		return nil
	}
	a.publisher = events.NewPublisher(pub, a.cfg.Events.Topic,
		events.WithBreaker(a.cfg.Breaker),
		events.WithLogger(logging.WithComponent("events")),
	)
	a.subscriber = sub
	a.closers = append(a.closers, a.publisher)
	return nil
}

// Close releases resources in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openRecordStore(cfg *config.StoreConfig) (storage.RecordStore, error) {
	store, err := storage.OpenBadger(storage.BadgerOptions{Path: cfg.Path, InMemory: cfg.InMemory})
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	return store, nil
}

func recommendConfig(cfg *config.RecommendConfig) *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.Catalog = recommend.CatalogConfig{
		Limit:               cfg.CatalogLimit,
		VerifiedPlacesOnly:  cfg.VerifiedPlacesOnly,
		MinExperienceRating: cfg.MinExperienceRating,
	}
	rc.Timeouts = recommend.TimeoutConfig{
		Zones:   cfg.ZoneTimeout,
		Catalog: cfg.CatalogTimeout,
		Store:   cfg.StoreTimeout,
		Profile: cfg.ProfileTimeout,
	}
	rc.History = recommend.HistoryConfig{
		DefaultLimit: cfg.HistoryLimit,
		MaxLimit:     cfg.MaxHistoryLimit,
	}
	rc.BudgetSignal = cfg.BudgetSignal
	rc.DefaultBudget = models.BudgetLevel(cfg.DefaultBudget)
	return rc
}

func breakerConfig(cfg *config.BreakerConfig) catalog.BreakerConfig {
	return catalog.BreakerConfig{
		Name:         "catalog",
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		MinRequests:  cfg.MinRequests,
		FailureRatio: cfg.FailureRatio,
	}
}
