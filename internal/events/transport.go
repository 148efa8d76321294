// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cappi/internal/config"
)

// Open builds the transport selected by cfg.Backend. The subscriber is only
// returned for the memory backend, where publisher and subscriber share one
// GoChannel. The "none" backend returns nil for both.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg *config.EventsConfig, logger zerolog.Logger) (message.Publisher, message.Subscriber, error) {
	wmLogger := NewZerologAdapter(logger.With().Str("component", "watermill").Logger())

	switch cfg.Backend {
	case config.EventsBackendNone, "":
		return nil, nil, nil
	case config.EventsBackendMemory:
		ch := NewGoChannel(wmLogger)
		return ch, ch, nil
	case config.EventsBackendNATS:
		pub, err := NewNATSPublisher(cfg.NATSURL, cfg.ConnectTimeout, wmLogger)
		if err != nil {
			return nil, nil, err
		}
		return pub, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// NewGoChannel returns an in-process pub/sub. Messages published while no
// subscriber is attached are dropped.
func NewGoChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)
}

// NewNATSPublisher creates a Watermill JetStream publisher with reconnect
// handling. Streams are provisioned on first publish.
func NewNATSPublisher(url string, connectTimeout time.Duration, logger watermill.LoggerAdapter) (message.Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("cappi"),
		natsgo.Timeout(connectTimeout),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill nats publisher: %w", err)
	}
	return pub, nil
}
