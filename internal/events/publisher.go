// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cappi/internal/config"
	"github.com/tomtom215/cappi/internal/logging"
	"github.com/tomtom215/cappi/internal/metrics"
	"github.com/tomtom215/cappi/internal/models"
)

// ErrPublisherClosed is returned by PublishRecommendation after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher publishes RecommendationGenerated events to one topic.
// It satisfies recommend.Publisher.
type Publisher struct {
	publisher message.Publisher
	topic     string
	breaker   *gobreaker.CircuitBreaker[struct{}]
	logger    zerolog.Logger
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBreaker guards publishing with a circuit breaker so a dead broker
// fails fast instead of stalling every generation.
func WithBreaker(cfg config.BreakerConfig) Option {
	return func(p *Publisher) {
		name := "events"
		p.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				p.logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state transition")
				metrics.RecordBreakerTransition(name, from.String(), to.String(), stateValue(to))
			},
		})
	}
}

// WithLogger sets the publisher logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithClock overrides the clock used for OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// NewPublisher wraps a Watermill publisher. The Publisher owns pub and
// closes it on Close.
func NewPublisher(pub message.Publisher, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		publisher: pub,
		topic:     topic,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishRecommendation publishes one event for record.
func (p *Publisher) PublishRecommendation(ctx context.Context, record *models.RecommendationRecord) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if record == nil {
		return errors.New("nil recommendation record")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := NewRecommendationGenerated(record, p.now()).ToMessage()
	if err != nil {
		return err
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataRequestID, id)
	}
	msg.SetContext(ctx)

	if p.breaker != nil {
		_, err = p.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, p.publisher.Publish(p.topic, msg)
		})
	} else {
		err = p.publisher.Publish(p.topic, msg)
	}
	metrics.RecordEventPublish(p.topic, err)
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", record.ID, p.topic, err)
	}

	p.logger.Debug().
		Str("request_id", msg.Metadata.Get(MetadataRequestID)).
		Str("record_id", record.ID).
		Str("message_id", msg.UUID).
		Str("topic", p.topic).
		Msg("Published recommendation event")
	return nil
}

// Close shuts down the underlying publisher. It is safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
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
