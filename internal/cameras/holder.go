// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package cameras

import (
	"strings"
	"sync"

	"github.com/tomtom215/camwatch/internal/config"
	"github.com/tomtom215/camwatch/internal/logging"
)

// Builder creates the API for a Pi host.
type Builder func(host string) API

// NewBuilder returns the production Builder for cfg: a Client on
// cfg.BaseURL(host), wrapped in a BreakerClient when cfg.CircuitBreaker is
// set.
//
//nolint:gocritic // config sections are passed by value throughout
func NewBuilder(cfg config.RaspberryConfig) Builder {
	return func(host string) API {
		var api API = NewClient(cfg.BaseURL(host), cfg.Timeout)
		if cfg.CircuitBreaker {
			api = NewBreakerClient(api, DefaultBreakerSettings())
		}
		return api
	}
}

// Holder keeps the API for the current Pi host.
type Holder struct {
	build Builder

	mu   sync.RWMutex
	host string
	api  API
}

// NewHolder creates a Holder. host may be empty until one is configured.
func NewHolder(build Builder, host string) *Holder {
	h := &Holder{build: build}
	h.Set(host)
	return h
}

// Set switches to host, rebuilding the API when it changed. An empty host
// clears the API.
func (h *Holder) Set(host string) {
	host = strings.TrimSpace(host)

	h.mu.Lock()
	defer h.mu.Unlock()
	if host == h.host && (host == "" || h.api != nil) {
		return
	}
	closeIdle(h.api)
	h.host = host
	h.api = nil
	if host != "" {
		h.api = h.build(host)
	}
	logging.Info().Str("host", host).Msg("Camera API host changed")
}

// idleCloser is implemented by APIs that pool connections to the Pi.
type idleCloser interface {
	CloseIdleConnections()
}

// closeIdle releases pooled connections held by api, if any.
func closeIdle(api API) {
	if c, ok := api.(idleCloser); ok {
		c.CloseIdleConnections()
	}
}

// Get returns the current API, or ErrNoAPIHost.
func (h *Holder) Get() (API, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.api == nil {
		return nil, ErrNoAPIHost
	}
	return h.api, nil
}

// Host returns the current Pi host.
func (h *Holder) Host() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.host
}
