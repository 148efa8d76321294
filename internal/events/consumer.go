// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/logging"
)

// Handler processes one decoded event. A returned error nacks the message.
type Handler func(ctx context.Context, event *RecommendationGenerated) error

// Consumer reads RecommendationGenerated events from a subscriber until its
// context ends. It runs as a supervised service.
type Consumer struct {
	subscriber message.Subscriber
	topic      string
	handle     Handler
	logger     zerolog.Logger
}

// NewConsumer creates a consumer for topic.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConsumer(sub message.Subscriber, topic string, handle Handler, logger zerolog.Logger) *Consumer {
	return &Consumer{subscriber: sub, topic: topic, handle: handle, logger: logger}
}

// LogHandler returns a Handler that logs a summary of every event.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func LogHandler(logger zerolog.Logger) Handler {
	return func(ctx context.Context, e *RecommendationGenerated) error {
		logging.Ctx(logging.ContextWithLogger(ctx, logger)).Info().
			Str("event_id", e.EventID).
			Str("record_id", e.Record.ID).
			Str("user_id", e.Record.UserID).
			Str("city", e.Record.Context.City).
			Int("items", len(e.Record.Items)).
			Msg("Recommendation generated")
		return nil
	}
}

// Serve implements suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.logger.Info().Str("topic", c.topic).Msg("Event consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("subscription closed")
			}
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *message.Message) {
	event, err := DecodeRecommendationGenerated(msg)
	if err != nil {
		// Undecodable messages will never succeed; drop them.
		c.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed event")
		msg.Ack()
		return
	}
	if id := msg.Metadata.Get(MetadataRequestID); id != "" {
		ctx = logging.ContextWithRequestID(ctx, id)
	}
	if err := c.handle(ctx, event); err != nil {
		c.logger.Warn().Err(err).Str("event_id", event.EventID).Msg("Event handler failed")
		msg.Nack()
		return
	}
	msg.Ack()
}

// String implements fmt.Stringer for supervisor logs.
func (c *Consumer) String() string {
	return "event-consumer:" + c.topic
}
