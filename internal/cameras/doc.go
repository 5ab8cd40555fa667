// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package cameras is the client for the Raspberry Pi camera REST API.

The Pi exposes:

	GET    /cameras              list cameras
	POST   /cameras              add a camera
	PUT    /cameras/{id}         update a camera
	DELETE /cameras/{id}         delete a camera
	DELETE /cameras              delete every camera
	POST   /cameras/{id}/start   start streaming
	POST   /cameras/{id}/stop    stop streaming
	POST   /alarm                sound the alarm

Client talks to one base address and carries no global state. BreakerClient
wraps any API with a sony/gobreaker circuit breaker so a Pi that is down
fails fast instead of tying up control API requests. Holder keeps the API
for the currently configured Pi host and rebuilds it when the host changes.

Every request records camera_api_request_duration_seconds and, on failure,
camera_api_errors_total labelled with the operation and HTTP status.
*/
package cameras
