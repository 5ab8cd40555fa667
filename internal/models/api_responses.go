// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package models

import (
	"time"
)

// APIResponse wraps every control API response.
//
// Status is "success" or "error". On success Data holds the payload; on
// error Error says what went wrong:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z", "request_id": "..."},
//	  "error": {"code": "VALIDATION_ERROR", "message": "host is required"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata is attached to every response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by GET /api/v1/health.
type HealthStatus struct {
	Status       string      `json:"status"` // healthy, degraded
	Version      string      `json:"version"`
	Uptime       float64     `json:"uptime_seconds"`
	Motion       interface{} `json:"motion"`
	StoreOK      bool        `json:"store_ok"`
	APIHostSet   bool        `json:"api_host_configured"`
	AlertClients int         `json:"alert_clients"`
}

// Settings is the body of GET /api/v1/settings.
type Settings struct {
	Endpoint string `json:"endpoint"`
	APIHost  string `json:"api_host"`
}

// HostRequest is the body of PUT /api/v1/settings/endpoint and
// PUT /api/v1/settings/api-host.
type HostRequest struct {
	Host string `json:"host" validate:"required,pihost"`
}

// StreamInfo is returned when a camera stream is started.
type StreamInfo struct {
	CameraID  int    `json:"camera_id"`
	StreamURL string `json:"stream_url"`
}
