// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/camwatch/internal/middleware"
)

// Router binds a Handler to its routes.
type Router struct {
	handler   *Handler
	cors      func(http.Handler) http.Handler
	rateLimit func(http.Handler) http.Handler
}

// NewRouter creates a Router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, cfg *MiddlewareConfig) *Router {
	if cfg == nil {
		cfg = DefaultMiddlewareConfig()
	}
	return &Router{
		handler:   handler,
		cors:      corsMiddleware(cfg),
		rateLimit: rateLimitMiddleware(cfg),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.cors) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed", nil)
	})

	// Health checks are not rate limited.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(securityHeaders)
		r.Use(middleware.PrometheusMetrics)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit)
		r.Use(securityHeaders)
		r.Use(middleware.PrometheusMetrics)

		r.Route("/motion", func(r chi.Router) {
			r.Get("/status", router.handler.MotionStatus)
			r.Post("/restart", router.handler.MotionRestart)
			r.Post("/stop", router.handler.MotionStop)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", router.handler.GetSettings)
			r.Put("/endpoint", router.handler.SetEndpoint)
			r.Put("/api-host", router.handler.SetAPIHost)
		})

		r.Route("/cameras", func(r chi.Router) {
			r.Get("/", router.handler.ListCameras)
			r.Post("/", router.handler.AddCamera)
			r.Delete("/", router.handler.DeleteAllCameras)
			r.Put("/{id}", router.handler.UpdateCamera)
			r.Delete("/{id}", router.handler.DeleteCamera)
			r.Post("/{id}/stream", router.handler.StartStream)
			r.Delete("/{id}/stream", router.handler.StopStream)
		})

		r.Post("/alarm", router.handler.TriggerAlarm)
		r.Get("/alerts/ws", router.handler.AlertsWebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
