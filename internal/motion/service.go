// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"context"

	"github.com/tomtom215/camwatch/internal/logging"
)

// BootService re-arms the supervisor when the process starts. It reads the
// last stored endpoint, starts the supervisor (which arms the watchdog even
// when no endpoint is stored yet) and stops it again on shutdown.
//
// Example usage:
//
//	svc := motion.NewBootService(sup, settings)
//	tree.AddMotionService(svc)
type BootService struct {
	sup    *Supervisor
	source EndpointSource
	name   string
}

// NewBootService creates the boot hook for sup.
func NewBootService(sup *Supervisor, source EndpointSource) *BootService {
	return &BootService{
		sup:    sup,
		source: source,
		name:   "motion-supervisor",
	}
}

// Serve implements suture.Service. It returns ctx.Err() on normal shutdown.
func (b *BootService) Serve(ctx context.Context) error {
	endpoint, err := b.source.Endpoint()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read stored motion endpoint")
		endpoint = ""
	}
	if endpoint == "" {
		logging.Warn().Msg("No motion endpoint stored; watchdog armed, waiting for settings")
	} else {
		logging.Info().Str("endpoint", endpoint).Msg("Starting motion supervisor from stored endpoint")
	}

	b.sup.Start(endpoint)

	<-ctx.Done()
	b.sup.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (b *BootService) String() string {
	return b.name
}
