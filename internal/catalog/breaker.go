// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/metrics"
	"github.com/tomtom215/cappi/internal/models"
)

// BreakerConfig configures the catalog circuit breaker.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32        // concurrent requests allowed while half-open
	Interval     time.Duration // closed-state count reset period
	Timeout      time.Duration // open-state duration before half-open
	MinRequests  uint32        // requests needed before the failure ratio is evaluated
	FailureRatio float64
}

// DefaultBreakerConfig returns the production breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "catalog",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerAccessor wraps an Accessor with a circuit breaker. Rejected and
// failed calls surface as models.ErrDependencyUnavailable.
type BreakerAccessor struct {
	next Accessor
	cb   *gobreaker.CircuitBreaker[[]models.Candidate]
	name string
}

// NewBreakerAccessor wraps next.
func NewBreakerAccessor(next Accessor, cfg BreakerConfig) *BreakerAccessor {
	if cfg.Name == "" {
		cfg.Name = "catalog"
	}
	logger := logging.WithComponent("catalog")
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Candidate](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), stateValue(to))
		},
		// A caller giving up is not a catalog failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerAccessor{next: next, cb: cb, name: cfg.Name}
}

// PlacesByCityAndSafetyFloor implements Accessor.
func (b *BreakerAccessor) PlacesByCityAndSafetyFloor(ctx context.Context, q Query) ([]models.Candidate, error) {
	return b.execute("places", func() ([]models.Candidate, error) {
		return b.next.PlacesByCityAndSafetyFloor(ctx, q)
	})
}

// ExperiencesByCityAndSafetyFloor implements Accessor.
func (b *BreakerAccessor) ExperiencesByCityAndSafetyFloor(ctx context.Context, q Query) ([]models.Candidate, error) {
	return b.execute("experiences", func() ([]models.Candidate, error) {
		return b.next.ExperiencesByCityAndSafetyFloor(ctx, q)
	})
}

// State returns the current breaker state.
func (b *BreakerAccessor) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerAccessor) execute(operation string, fn func() ([]models.Candidate, error)) ([]models.Candidate, error) {
	result, err := b.cb.Execute(fn)
	metrics.RecordCatalogRequest(operation, err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, models.Unavailable(b.name, fmt.Errorf("%s rejected: %w", operation, err))
		}
		return nil, models.Unavailable(b.name, fmt.Errorf("%s: %w", operation, err))
	}
	return result, nil
}

func stateValue(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

var _ Accessor = (*BreakerAccessor)(nil)
