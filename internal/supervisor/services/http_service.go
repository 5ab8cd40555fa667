// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultHTTPShutdownTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the control API server under the api layer.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps server. Shutdown gets shutdownTimeout, or 10s
// when that is not positive.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultHTTPShutdownTimeout
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. A listen failure is returned so the
// layer restarts the server; cancellation drains it with Shutdown.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	listenDone := make(chan error, 1)
	go func() { listenDone <- s.server.ListenAndServe() }()

	select {
	case err := <-listenDone:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	// ctx is already done, so Shutdown gets a fresh deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	<-listenDone
	return ctx.Err()
}

func (s *HTTPServerService) String() string {
	return "http-server"
}
