// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/camwatch/internal/logging"
)

// GarbageCollector matches store.Settings.
type GarbageCollector interface {
	RunGC() error
}

// StoreGCService periodically reclaims space in the settings store.
//
// GC failures are logged and retried on the next tick. Once the store
// reports it is closed the service asks suture not to restart it.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
	closed   error
	logger   zerolog.Logger
	name     string
}

// NewStoreGCService runs store.RunGC every interval. closedErr is the error
// the store returns after Close; it may be nil.
func NewStoreGCService(store GarbageCollector, interval time.Duration, closedErr error) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		closed:   closedErr,
		logger:   logging.WithComponent("store-gc"),
		name:     "store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			err := s.store.RunGC()
			if s.closed != nil && errors.Is(err, s.closed) {
				s.logger.Info().Msg("Settings store closed, stopping GC")
				return suture.ErrDoNotRestart
			}
			if err != nil {
				s.logger.Warn().Err(err).Msg("Settings store GC failed")
				continue
			}
			s.logger.Debug().Dur("duration", time.Since(start)).Msg("Settings store GC finished")
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *StoreGCService) String() string {
	return s.name
}
