// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"net/http"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/notify"
)

// AlertsWebSocket upgrades the request and subscribes it to motion alerts.
//
// @Summary Subscribe to motion alerts
// @Description Upgrades to a websocket that receives every motion alert and listener state change as JSON.
// @Tags Alerts
// @Success 101 "Switching protocols"
// @Failure 403 "Origin not allowed"
// @Failure 503 {object} models.APIResponse "Alert feed disabled"
// @Router /alerts/ws [get]
func (h *Handler) AlertsWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Alert feed disabled", nil)
		return
	}

	// Upgrade writes its own HTTP error on failure.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Alert websocket upgrade failed")
		return
	}

	client := notify.NewClient(h.alerts, conn)
	if err := client.Attach(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Alert hub not accepting subscribers")
		return
	}
	logging.Ctx(r.Context()).Debug().Uint64("client_id", client.ID()).Msg("Alert subscriber connected")
}

// originChecker allows native clients, which send no Origin, and browsers on
// an allowed origin.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
