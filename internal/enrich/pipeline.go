// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

// Package enrich assembles the context a travel conversation needs: the
// traveler's profile, the safety picture of the city under discussion, the
// active trip and the most recent recommendation.
//
// Every step is optional. A step that fails or exceeds its timeout is
// recorded in EnrichedContext.Skipped and the remaining steps still run.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/metrics"
	"github.com/tomtom215/cappi/internal/models"
)

// Step names.
const (
	StepProfile         = "profile"
	StepSafety          = "safety"
	StepTrip            = "trip"
	StepRecommendations = "recommendations"
)

// Step outcomes reported to metrics.
const (
	resultOK      = "ok"
	resultAbsent  = "absent"
	resultSkipped = "skipped"
)

// DefaultStepTimeout bounds each step when no timeout is configured.
const DefaultStepTimeout = time.Second

// ProfileAccessor reads traveler profiles. A missing profile is models.ErrNotFound.
type ProfileAccessor interface {
	ProfileByUserID(ctx context.Context, userID string) (*models.TravelerProfile, error)
}

// SafetySource supplies zones and active alerts for a city.
type SafetySource interface {
	ZonesByCity(ctx context.Context, city, country string) ([]models.SafetyZone, error)
	ActiveAlerts(ctx context.Context, city string) ([]models.SafetyAlert, error)
}

// TripAccessor reads trips with their itinerary. A missing trip is models.ErrNotFound.
type TripAccessor interface {
	TripByID(ctx context.Context, tripID string) (*models.Trip, error)
}

// HistorySource lists a traveler's recommendation records, most recent first.
type HistorySource interface {
	Latest(ctx context.Context, userID string, limit int) ([]models.RecommendationRecord, error)
}

// ChatContext is the conversation state the caller already knows.
type ChatContext struct {
	City        string         `json:"city,omitempty"`
	Country     string         `json:"country,omitempty"`
	TripID      string         `json:"trip_id,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// SafetySnapshot is the safety picture of a city.
type SafetySnapshot struct {
	Zones  []models.SafetyZone  `json:"zones"`
	Alerts []models.SafetyAlert `json:"alerts"`
}

// SkippedStep names a step that produced nothing and why.
type SkippedStep struct {
	Step   string `json:"step"`
	Reason string `json:"reason"`
}

// EnrichedContext is a point-in-time snapshot. Absent parts are nil.
type EnrichedContext struct {
	UserID      string         `json:"user_id"`
	City        string         `json:"city,omitempty"`
	Country     string         `json:"country,omitempty"`
	TripID      string         `json:"trip_id,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`

	Profile              *models.TravelerProfile      `json:"profile"`
	Safety               *SafetySnapshot              `json:"safety"`
	Trip                 *models.Trip                 `json:"trip"`
	LatestRecommendation *models.RecommendationRecord `json:"latest_recommendation"`

	Skipped     []SkippedStep `json:"skipped"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Sources are the collaborators of a Pipeline. Any of them may be nil, in
// which case the matching step is skipped.
type Sources struct {
	Profiles ProfileAccessor
	Safety   SafetySource
	Trips    TripAccessor
	History  HistorySource
}

// Pipeline gathers enrichment steps concurrently.
type Pipeline struct {
	sources     Sources
	stepTimeout time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStepTimeout bounds each step.
func WithStepTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.stepTimeout = d
		}
	}
}

// WithClock sets the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline over sources.
func NewPipeline(sources Sources, opts ...Option) *Pipeline {
	p := &Pipeline{
		sources:     sources,
		stepTimeout: DefaultStepTimeout,
		now:         time.Now,
		logger:      logging.WithComponent("enrich"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var errSourceMissing = errors.New("source not configured")

// Enrich gathers the context of a conversation with userID. It only fails
// on invalid input; every other problem is reported in Skipped.
func (p *Pipeline) Enrich(ctx context.Context, userID string, chat ChatContext) (*EnrichedContext, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, models.InvalidInput("user id is required")
	}
	start := time.Now()

	out := &EnrichedContext{
		UserID:      userID,
		City:        chat.City,
		Country:     chat.Country,
		TripID:      chat.TripID,
		Preferences: copyPreferences(chat.Preferences),
		Skipped:     []SkippedStep{},
	}
	ctx = logging.RequestScope(ctx, p.logger, userID)
	logger := logging.Ctx(ctx)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	skip := func(step string, err error) {
		mu.Lock()
		out.Skipped = append(out.Skipped, SkippedStep{Step: step, Reason: err.Error()})
		mu.Unlock()
		metrics.RecordEnrichmentStep(step, resultSkipped)
		logger.Warn().Err(err).Str("step", step).Msg("Enrichment step skipped")
	}
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		profile, err := runStep(ctx, p.stepTimeout, func(ctx context.Context) (*models.TravelerProfile, error) {
			if p.sources.Profiles == nil {
				return nil, errSourceMissing
			}
			return p.sources.Profiles.ProfileByUserID(ctx, userID)
		})
		switch {
		case models.IsNotFound(err):
			metrics.RecordEnrichmentStep(StepProfile, resultAbsent)
		case err != nil:
			skip(StepProfile, err)
		default:
			mu.Lock()
			out.Profile = profile
			mu.Unlock()
			metrics.RecordEnrichmentStep(StepProfile, resultOK)
		}
	})

	if chat.City != "" {
		run(func() {
			snapshot, err := runStep(ctx, p.stepTimeout, func(ctx context.Context) (*SafetySnapshot, error) {
				return p.safety(ctx, chat.City, chat.Country)
			})
			if err != nil {
				skip(StepSafety, err)
				return
			}
			mu.Lock()
			out.Safety = snapshot
			mu.Unlock()
			metrics.RecordEnrichmentStep(StepSafety, resultOK)
		})
	}

	if chat.TripID != "" {
		run(func() {
			trip, err := runStep(ctx, p.stepTimeout, func(ctx context.Context) (*models.Trip, error) {
				if p.sources.Trips == nil {
					return nil, errSourceMissing
				}
				return p.sources.Trips.TripByID(ctx, chat.TripID)
			})
			switch {
			case models.IsNotFound(err):
				metrics.RecordEnrichmentStep(StepTrip, resultAbsent)
			case err != nil:
				skip(StepTrip, err)
			case trip == nil || trip.UserID != userID:
				// Another traveler's trip is treated as missing.
				metrics.RecordEnrichmentStep(StepTrip, resultAbsent)
			default:
				mu.Lock()
				out.Trip = trip
				mu.Unlock()
				metrics.RecordEnrichmentStep(StepTrip, resultOK)
			}
		})
	}

	run(func() {
		records, err := runStep(ctx, p.stepTimeout, func(ctx context.Context) ([]models.RecommendationRecord, error) {
			if p.sources.History == nil {
				return nil, errSourceMissing
			}
			return p.sources.History.Latest(ctx, userID, 1)
		})
		switch {
		case err != nil:
			skip(StepRecommendations, err)
		case len(records) == 0:
			metrics.RecordEnrichmentStep(StepRecommendations, resultAbsent)
		default:
			mu.Lock()
			out.LatestRecommendation = &records[0]
			mu.Unlock()
			metrics.RecordEnrichmentStep(StepRecommendations, resultOK)
		}
	})

	wg.Wait()

	sortSkipped(out.Skipped)
	out.GeneratedAt = p.now().UTC()
	metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())

	logger.Debug().
		Bool("profile", out.Profile != nil).
		Bool("safety", out.Safety != nil).
		Bool("trip", out.Trip != nil).
		Bool("recommendation", out.LatestRecommendation != nil).
		Int("skipped", len(out.Skipped)).
		Msg("Context enriched")

	return out, nil
}

func (p *Pipeline) safety(ctx context.Context, city, country string) (*SafetySnapshot, error) {
	if p.sources.Safety == nil {
		return nil, errSourceMissing
	}
	zones, err := p.sources.Safety.ZonesByCity(ctx, city, country)
	if err != nil {
		return nil, fmt.Errorf("zones: %w", err)
	}
	alerts, err := p.sources.Safety.ActiveAlerts(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	if zones == nil {
		zones = []models.SafetyZone{}
	}
	if alerts == nil {
		alerts = []models.SafetyAlert{}
	}
	return &SafetySnapshot{Zones: zones, Alerts: alerts}, nil
}

// runStep runs fn under a timeout. A step that ignores its context is
// abandoned when the timeout expires.
func runStep[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(sctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-sctx.Done():
		var zero T
		return zero, sctx.Err()
	}
}

var stepOrder = map[string]int{
	StepProfile:         0,
	StepSafety:          1,
	StepTrip:            2,
	StepRecommendations: 3,
}

func sortSkipped(skipped []SkippedStep) {
	sort.Slice(skipped, func(i, j int) bool {
		return stepOrder[skipped[i].Step] < stepOrder[skipped[j].Step]
	})
}

func copyPreferences(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
