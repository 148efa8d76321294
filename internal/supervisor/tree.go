// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig tunes restart behaviour. Zero fields take DefaultTreeConfig values.
type TreeConfig struct {
	// FailureThreshold is how many recent failures a layer tolerates before
	// it pauses restarts for FailureBackoff.
	FailureThreshold float64
	// FailureDecay is the half-life, in seconds, of the failure count.
	FailureDecay float64
	FailureBackoff time.Duration
	// ShutdownTimeout bounds how long each service gets to return after
	// cancellation. It covers the Badger close and the NATS drain.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns the concierge defaults. The zone refresh runs on
// a schedule of minutes to hours, so a layer that keeps failing backs off for
// half a minute rather than spinning.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 3,
		FailureDecay:     60,
		FailureBackoff:   30 * time.Second,
		ShutdownTimeout:  15 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree runs the concierge daemon's long-lived services in three
// layers under a root named "cappi":
//
//   - data: the scheduled zone refresh
//   - messaging: recommendation event consumers
//   - api: the metrics listener
//
// Each layer restarts its own services. A layer in backoff leaves the others running.
type SupervisorTree struct {
	root      *suture.Supervisor
	data      *suture.Supervisor
	messaging *suture.Supervisor
	api       *suture.Supervisor
	config    TreeConfig
}

// NewSupervisorTree builds the root and its three layers. Supervisor events
// are logged through logger.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	config = config.withDefaults()

	handler := &sutureslog.Handler{Logger: logger}
	root := suture.New("cappi", config.spec(handler.MustHook()))

	// Layers added to root pick up its event hook.
	layer := func(name string) *suture.Supervisor {
		s := suture.New(name, config.spec(nil))
		root.Add(s)
		return s
	}

	return &SupervisorTree{
		root:      root,
		data:      layer("data-layer"),
		messaging: layer("messaging-layer"),
		api:       layer("api-layer"),
		config:    config,
	}, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddDataService registers a zone data service.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.data.Add(svc)
}

// AddMessagingService registers an event consumer.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.messaging.Add(svc)
}

// AddAPIService registers a listener.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// Serve blocks until ctx is canceled and every layer has stopped.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground is Serve on its own goroutine.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport names services still running after ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
