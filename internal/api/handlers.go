// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/camwatch/internal/cameras"
	"github.com/tomtom215/camwatch/internal/config"
	"github.com/tomtom215/camwatch/internal/motion"
	"github.com/tomtom215/camwatch/internal/notify"
)

// MotionController is the part of motion.Supervisor the API drives.
type MotionController interface {
	Start(endpoint string)
	Stop()
	Status() motion.Status
}

// SettingsStore is the part of store.Settings the API reads and writes.
type SettingsStore interface {
	Endpoint() (string, error)
	SetEndpoint(host string) error
	APIHost() (string, error)
	SetAPIHost(host string) error
	Snapshot() (endpoint, apiHost string, err error)
}

// Dependencies wires a Handler.
type Dependencies struct {
	Motion    MotionController
	Settings  SettingsStore
	Cameras   *cameras.Holder
	Alerts    *notify.Hub // nil disables GET /alerts/ws
	Raspberry config.RaspberryConfig
	Version   string

	// AlertOrigins lists browser origins allowed to open the alert
	// websocket. Requests without an Origin header are always allowed.
	AlertOrigins []string
}

// Handler serves the control API.
type Handler struct {
	motion    MotionController
	settings  SettingsStore
	cameras   *cameras.Holder
	alerts    *notify.Hub
	raspberry config.RaspberryConfig
	version   string
	startTime time.Time
	upgrader  websocket.Upgrader
}

// NewHandler creates a Handler.
func NewHandler(deps Dependencies) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	h := &Handler{
		motion:    deps.Motion,
		settings:  deps.Settings,
		cameras:   deps.Cameras,
		alerts:    deps.Alerts,
		raspberry: deps.Raspberry,
		version:   version,
		startTime: time.Now(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(deps.AlertOrigins),
	}
	return h
}
