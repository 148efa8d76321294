// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cappi/internal/catalog"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/metrics"
	"github.com/tomtom215/cappi/internal/models"
	"github.com/tomtom215/cappi/internal/recommend/storage"
	"github.com/tomtom215/cappi/internal/safety"
	"github.com/tomtom215/cappi/internal/validation"
)

// Generation outcomes reported to metrics.
const (
	outcomeSuccess      = "success"
	outcomeInvalidInput = "invalid_input"
	outcomeUnavailable  = "unavailable"
)

// Deps are the collaborators of an Engine. Catalog, Zones and Store are
// required. A nil Profiles means no traveler has a profile; a nil Publisher
// disables events.
type Deps struct {
	Catalog   catalog.Accessor
	Zones     ZoneSource
	Profiles  ProfileAccessor
	Store     storage.RecordStore
	Publisher Publisher
}

// Engine generates and persists safety-aware recommendations.
type Engine struct {
	cfg       *Config
	catalog   catalog.Accessor
	zones     ZoneSource
	profiles  ProfileAccessor
	store     storage.RecordStore
	publisher Publisher
	ranker    *Ranker
	now       func() time.Time
	newID     func() string
	logger    zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used to stamp records.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator sets the record ID generator.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithScorer replaces the scorer built from the configuration.
func WithScorer(scorer *Scorer) EngineOption {
	return func(e *Engine) {
		e.ranker = NewRanker(scorer)
	}
}

// NewEngine creates an engine. A nil cfg uses DefaultConfig.
func NewEngine(cfg *Config, deps Deps, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommendation config: %w", err)
	}
	if deps.Catalog == nil || deps.Zones == nil || deps.Store == nil {
		return nil, errors.New("recommendation engine requires a catalog, a zone source and a record store")
	}

	e := &Engine{
		cfg:       cfg,
		catalog:   deps.Catalog,
		zones:     deps.Zones,
		profiles:  deps.Profiles,
		store:     deps.Store,
		publisher: deps.Publisher,
		ranker:    NewRanker(NewScorer(cfg.budgetFit(), ZoneLocationQuality{})),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logging.WithComponent("recommend"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Generate ranks the catalog of req.City for userID, persists the record
// and returns it with the safety context it was generated under.
//
// The effective risk tolerance is the request's, then the profile's, then
// MEDIUM. A slow or failing zone source degrades to no zone data; catalog,
// profile and store failures return models.ErrDependencyUnavailable.
func (e *Engine) Generate(ctx context.Context, userID string, req models.RequestContext) (*Result, error) {
	start := time.Now()
	ctx = logging.RequestScope(ctx, e.logger, userID)
	result, err := e.generate(ctx, userID, req)

	switch {
	case err == nil:
		metrics.RecordGeneration(outcomeSuccess, time.Since(start), len(result.Record.Items))
	case errors.Is(err, models.ErrInvalidInput):
		metrics.RecordGeneration(outcomeInvalidInput, time.Since(start), 0)
	default:
		metrics.RecordGeneration(outcomeUnavailable, time.Since(start), 0)
	}
	return result, err
}

func (e *Engine) generate(ctx context.Context, userID string, req models.RequestContext) (*Result, error) {
	if userID == "" {
		return nil, models.InvalidInput("user id is required")
	}
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	logger := logging.Ctx(ctx).With().Str("city", req.City).Logger()

	profile, err := e.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	risk := resolveRiskTolerance(req.RiskTolerance, profile)
	budget := req.BudgetLevel
	if budget == "" {
		budget = e.cfg.DefaultBudget
	}
	floor := MinSafetyScore(risk)

	zctx, cancelZones := context.WithTimeout(ctx, e.cfg.Timeouts.Zones)
	defer cancelZones()
	zonesCh := make(chan zoneResult, 1)
	go func() {
		zones, err := e.zones.ZonesByCity(zctx, req.City, req.Country)
		zonesCh <- zoneResult{zones: zones, err: err}
	}()

	places, experiences, err := e.fetchCandidates(ctx, catalog.Query{
		City:         req.City,
		Country:      req.Country,
		MinSafety:    floor,
		Limit:        e.cfg.Catalog.Limit,
		VerifiedOnly: e.cfg.Catalog.VerifiedPlacesOnly,
		MinRating:    e.cfg.Catalog.MinExperienceRating,
	})
	if err != nil {
		return nil, err
	}

	var zr zoneResult
	select {
	case zr = <-zonesCh:
	case <-zctx.Done():
		zr = zoneResult{err: zctx.Err()}
	}
	zoneDataAvailable := zr.err == nil
	if !zoneDataAvailable {
		metrics.SafetyZoneFetchDegraded.Inc()
		logger.Warn().Err(zr.err).Msg("Safety zones unavailable, ranking without zone data")
		zr.zones = nil
	}

	items := e.ranker.Rank(places, experiences, SignalContext{Budget: budget, Zones: zr.zones}, risk)

	snapshot := req
	snapshot.RiskTolerance = risk
	snapshot.BudgetLevel = budget
	record := &models.RecommendationRecord{
		ID:           e.newID(),
		UserID:       userID,
		Context:      snapshot,
		Items:        items,
		ModelVersion: e.cfg.ModelVersion,
		CreatedAt:    e.now().UTC(),
	}

	sctx, cancelStore := context.WithTimeout(ctx, e.cfg.Timeouts.Store)
	err = e.store.Save(sctx, record)
	cancelStore()
	if err != nil {
		return nil, models.Unavailable("record store", err)
	}

	e.publish(ctx, logger, record)

	logger.Debug().
		Str("record_id", record.ID).
		Str("risk_tolerance", string(risk)).
		Int("candidates", len(places)+len(experiences)).
		Int("items", len(items)).
		Bool("zone_data", zoneDataAvailable).
		Msg("Recommendation generated")

	return &Result{
		Record:     record,
		SafetyInfo: buildSafetyInfo(zr.zones, floor, risk, zoneDataAvailable),
	}, nil
}

// Latest returns up to limit records of userID, most recent first. A
// non-positive limit uses the configured default; limits above the
// configured maximum are capped.
func (e *Engine) Latest(ctx context.Context, userID string, limit int) ([]models.RecommendationRecord, error) {
	if userID == "" {
		return nil, models.InvalidInput("user id is required")
	}
	ctx = logging.RequestScope(ctx, e.logger, userID)
	if limit <= 0 {
		limit = e.cfg.History.DefaultLimit
	}
	limit = min(limit, e.cfg.History.MaxLimit)

	sctx, cancel := context.WithTimeout(ctx, e.cfg.Timeouts.Store)
	defer cancel()
	records, err := e.store.LatestForUser(sctx, userID, limit)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return nil, err
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to load recommendation history")
		return nil, models.Unavailable("record store", err)
	}
	return records, nil
}

type zoneResult struct {
	zones []models.SafetyZone
	err   error
}

func (e *Engine) profile(ctx context.Context, userID string) (*models.TravelerProfile, error) {
	if e.profiles == nil {
		return nil, nil
	}
	pctx, cancel := context.WithTimeout(ctx, e.cfg.Timeouts.Profile)
	defer cancel()

	profile, err := e.profiles.ProfileByUserID(pctx, userID)
	switch {
	case models.IsNotFound(err):
		return nil, nil
	case err != nil:
		return nil, models.Unavailable("profile store", err)
	}
	return profile, nil
}

func (e *Engine) fetchCandidates(ctx context.Context, q catalog.Query) (places, experiences []models.Candidate, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, e.cfg.Timeouts.Catalog)
		defer cancel()
		p, err := e.catalog.PlacesByCityAndSafetyFloor(cctx, q)
		if err != nil {
			return models.Unavailable("catalog places", err)
		}
		places = p
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, e.cfg.Timeouts.Catalog)
		defer cancel()
		x, err := e.catalog.ExperiencesByCityAndSafetyFloor(cctx, q)
		if err != nil {
			return models.Unavailable("catalog experiences", err)
		}
		experiences = x
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, err
	}
	return places, experiences, nil
}

func (e *Engine) publish(ctx context.Context, logger zerolog.Logger, record *models.RecommendationRecord) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishRecommendation(ctx, record); err != nil {
		logger.Warn().Err(err).Str("record_id", record.ID).Msg("Failed to publish recommendation event")
	}
}

func resolveRiskTolerance(requested models.RiskTolerance, profile *models.TravelerProfile) models.RiskTolerance {
	if requested.Valid() {
		return requested
	}
	if profile != nil && profile.RiskTolerance.Valid() {
		return profile.RiskTolerance
	}
	return models.RiskToleranceMedium
}

func buildSafetyInfo(zones []models.SafetyZone, floor int, risk models.RiskTolerance, available bool) SafetyInfo {
	info := SafetyInfo{
		Zones:             make([]models.SafetyZone, 0, len(zones)),
		ActiveAlerts:      []models.SafetyAlert{},
		MinSafetyScore:    floor,
		RiskTolerance:     risk,
		ZoneDataAvailable: available,
	}
	for i := range zones {
		info.Zones = append(info.Zones, zones[i])
		info.ActiveAlerts = append(info.ActiveAlerts, zones[i].Alerts...)
	}
	safety.SortAlerts(info.ActiveAlerts)
	return info
}
