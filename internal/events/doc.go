// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

/*
Package events publishes a message for every generated recommendation.

Messages travel over Watermill. Two transports are supported:

  - memory: a Watermill GoChannel, useful for a single process and tests
  - nats: NATS JetStream through watermill-nats, with the record id set as
    the Nats-Msg-Id header so redeliveries are deduplicated by the server

Publishing is best effort. The recommendation engine logs publish failures
and carries on; the record itself is already persisted by then.

Each message payload is a RecommendationGenerated envelope encoded with
goccy/go-json. Metadata carries the event type, the user id and the record
id so consumers can route without decoding the payload.

Usage:

	pub, sub, err := events.Open(&cfg.Events, logger)
	if err != nil {
	    return err
	}
	publisher := events.NewPublisher(pub, cfg.Events.Topic,
	    events.WithBreaker(cfg.Breaker),
	    events.WithLogger(logger),
	)
	defer publisher.Close()
*/
package events
