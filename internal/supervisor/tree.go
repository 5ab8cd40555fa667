// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/camwatch/internal/config"
)

// TreeConfig tunes restart behaviour. The same values apply to the root and
// to every layer.
type TreeConfig struct {
	// FailureThreshold is how many failures a supervisor tolerates before
	// backing off.
	FailureThreshold float64
	// FailureDecay is the failure count half-life in seconds.
	FailureDecay float64
	// FailureBackoff is how long a supervisor pauses once over threshold.
	FailureBackoff time.Duration
	// ShutdownTimeout bounds how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// TreeConfigFromConfig converts the supervisor section of the application
// config.
func TreeConfigFromConfig(cfg config.SupervisorConfig) TreeConfig {
	return TreeConfig(cfg)
}

func (c TreeConfig) withDefaults() TreeConfig {
	def := DefaultTreeConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.FailureDecay <= 0 {
		c.FailureDecay = def.FailureDecay
	}
	if c.FailureBackoff <= 0 {
		c.FailureBackoff = def.FailureBackoff
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// layer indexes the child supervisors under the root. They are added to the
// root in this order, so the data layer starts first.
type layer int

const (
	layerData layer = iota
	layerMotion
	layerMessaging
	layerAPI
	layerCount
)

var layerNames = [layerCount]string{
	layerData:      "data-layer",
	layerMotion:    "motion-layer",
	layerMessaging: "messaging-layer",
	layerAPI:       "api-layer",
}

// SupervisorTree is camwatch's process tree:
//
//	camwatch
//	├── data-layer       settings store upkeep
//	├── motion-layer     boot of the motion listener
//	├── messaging-layer  alert hub
//	└── api-layer        control API server
//
// A service that keeps failing is restarted within its own layer and never
// takes down the others.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers [layerCount]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree builds the tree. Non-positive config fields take the
// defaults. Supervisor events (restarts, backoff, timeouts) go to logger.
func NewSupervisorTree(logger *slog.Logger, cfg TreeConfig) (*SupervisorTree, error) {
	cfg = cfg.withDefaults()

	rootSpec := cfg.spec()
	rootSpec.EventHook = (&sutureslog.Handler{Logger: logger}).MustHook()

	t := &SupervisorTree{
		root:   suture.New("camwatch", rootSpec),
		config: cfg,
	}
	// Layers inherit the root's event hook when added.
	for i, name := range layerNames {
		t.layers[i] = suture.New(name, cfg.spec())
		t.root.Add(t.layers[i])
	}
	return t, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

func (t *SupervisorTree) add(l layer, svc suture.Service) suture.ServiceToken {
	return t.layers[l].Add(svc)
}

// AddDataService adds a service to the data layer.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.add(layerData, svc)
}

// AddMotionService adds a service to the motion layer.
func (t *SupervisorTree) AddMotionService(svc suture.Service) suture.ServiceToken {
	return t.add(layerMotion, svc)
}

// AddMessagingService adds a service to the messaging layer.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.add(layerMessaging, svc)
}

// AddAPIService adds a service to the API layer.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.add(layerAPI, svc)
}

// Serve runs the tree until ctx ends.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree on its own goroutine. The channel yields
// Serve's result.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that outlived ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
