// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package api is the local control API for camwatch, routed with chi.

All routes live under /api/v1 and answer with the models.APIResponse
envelope:

	GET    /health/live               liveness check
	GET    /health                    overall health including motion status
	GET    /motion/status             supervisor status
	POST   /motion/restart            reconnect to the stored endpoint
	POST   /motion/stop               disconnect and disarm the watchdog
	GET    /settings                  stored endpoint and Pi API host
	PUT    /settings/endpoint         {"host": "..."} store and reconnect
	PUT    /settings/api-host         {"host": "..."} store and rebuild the camera client
	GET    /cameras                   list cameras on the Pi
	POST   /cameras                   add a camera
	DELETE /cameras                   delete every camera
	PUT    /cameras/{id}              update a camera
	DELETE /cameras/{id}              delete a camera
	POST   /cameras/{id}/stream       start streaming, returns the RTMP URL
	DELETE /cameras/{id}/stream       stop streaming
	POST   /alarm                     sound the alarm on the Pi
	GET    /alerts/ws                 websocket feed of motion alerts

GET /metrics serves Prometheus metrics outside the envelope. GET /swagger/*
serves Swagger UI and the OpenAPI document built from the handler
annotations.

# Middleware

Every request passes through request ID tagging, real IP extraction, panic
recovery and CORS (go-chi/cors). API routes are rate limited per client IP
with go-chi/httprate and instrumented with Prometheus.

# Errors

Camera operations map Pi failures to status codes:

  - no Pi host configured: 503 API_HOST_NOT_CONFIGURED
  - camera missing on the Pi: 404 NOT_FOUND
  - stopping a stream that is not running: 409 STREAM_NOT_RUNNING
  - Pi rejected the request (4xx): 400 CAMERA_API_REJECTED
  - circuit breaker open: 503 CIRCUIT_OPEN
  - anything else: 502 CAMERA_API_ERROR
*/
package api
