// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/camwatch/internal/config"
)

// MiddlewareConfig configures CORS and per-IP rate limiting for the control
// API.
type MiddlewareConfig struct {
	// AllowedOrigins lists browser origins allowed to call the API and to
	// open the alerts websocket. Empty refuses every cross-origin browser.
	AllowedOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultMiddlewareConfig allows 100 requests per minute per IP and no
// cross-origin browsers.
func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// MiddlewareConfigFromServer maps the server section of the app config.
func MiddlewareConfigFromServer(cfg *config.ServerConfig) *MiddlewareConfig {
	return &MiddlewareConfig{
		AllowedOrigins:    cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitReqs,
		RateLimitWindow:   cfg.RateLimitWindow,
		RateLimitDisabled: cfg.RateLimitDisabled,
	}
}

const corsMaxAge = 24 * time.Hour

func corsMiddleware(cfg *MiddlewareConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         int(corsMaxAge.Seconds()),
	})
}

func passThrough(next http.Handler) http.Handler { return next }

// rateLimitMiddleware keys on the client IP as resolved by chi's RealIP.
// Over-limit requests get the usual error envelope with 429.
func rateLimitMiddleware(cfg *MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled || cfg.RateLimitRequests <= 0 {
		return passThrough
	}
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(cfg.RateLimitRequests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded", nil)
		}),
	)
}

// securityHeaders marks every response as an undisplayable JSON document.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
