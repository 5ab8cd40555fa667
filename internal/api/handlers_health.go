// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/camwatch/internal/models"
	"github.com/tomtom215/camwatch/internal/motion"
)

// HealthLive answers as long as the process can serve HTTP.
//
// @Summary Liveness check
// @Description Returns 200 while the process can serve HTTP. Not rate limited.
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=map[string]string} "Process is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// Health reports the motion listener, the settings store and the alert hub.
// The status is degraded while the listener is not connected or the store
// cannot be read; the HTTP status stays 200 so dashboards can show why.
//
// @Summary Get service health
// @Description Reports the motion listener state, settings store reachability and alert subscriber count. Degraded health still answers 200.
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.motion.Status()
	_, _, storeErr := h.settings.Snapshot()

	health := models.HealthStatus{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Seconds(),
		Motion:     st,
		StoreOK:    storeErr == nil,
		APIHostSet: h.cameras.Host() != "",
	}
	if h.alerts != nil {
		health.AlertClients = h.alerts.ClientCount()
	}
	if st.State != motion.Connected || storeErr != nil {
		health.Status = "degraded"
	}

	respondData(w, r, http.StatusOK, health)
}
