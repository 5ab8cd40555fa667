// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package middleware provides HTTP middleware for the control API.

  - RequestID: accepts or generates X-Request-ID and stores it, plus a fresh
    correlation ID, in the request context for logging.Ctx
  - PrometheusMetrics: records http_requests_total and
    http_request_duration_seconds labelled with the chi route pattern, so
    /api/v1/cameras/7 and /api/v1/cameras/8 share one series

Both are func(http.Handler) http.Handler and plug into chi's r.Use:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
