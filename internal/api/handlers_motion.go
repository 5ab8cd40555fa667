// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"net/http"

	"github.com/tomtom215/camwatch/internal/logging"
)

// MotionStatus returns the supervisor status.
//
// @Summary Get motion listener status
// @Description Returns the connection state, endpoint, epoch and event count of the motion listener.
// @Tags Motion
// @Produce json
// @Success 200 {object} models.APIResponse{data=motion.Status} "Listener status"
// @Failure 429 {object} models.APIResponse "Rate limit exceeded"
// @Router /motion/status [get]
func (h *Handler) MotionStatus(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, h.motion.Status())
}

// MotionRestart drops the current connection and reconnects to the stored
// endpoint.
//
// @Summary Restart the motion listener
// @Description Drops the current subscription and reconnects to the stored endpoint.
// @Tags Motion
// @Produce json
// @Success 202 {object} models.APIResponse{data=motion.Status} "Reconnect started"
// @Failure 409 {object} models.APIResponse "No motion endpoint configured"
// @Failure 500 {object} models.APIResponse "Settings store error"
// @Router /motion/restart [post]
func (h *Handler) MotionRestart(w http.ResponseWriter, r *http.Request) {
	endpoint, err := h.settings.Endpoint()
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeStoreError, "Failed to read stored endpoint", err)
		return
	}
	if endpoint == "" {
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "No motion endpoint configured", nil)
		return
	}

	h.motion.Stop()
	h.motion.Start(endpoint)
	logging.Ctx(r.Context()).Info().Str("endpoint", endpoint).Msg("Motion listener restarted")

	respondData(w, r, http.StatusAccepted, h.motion.Status())
}

// MotionStop disconnects and disarms the watchdog until the next start.
//
// @Summary Stop the motion listener
// @Description Closes the subscription with a normal closure and disarms the watchdog.
// @Tags Motion
// @Produce json
// @Success 200 {object} models.APIResponse{data=motion.Status} "Listener stopped"
// @Router /motion/stop [post]
func (h *Handler) MotionStop(w http.ResponseWriter, r *http.Request) {
	h.motion.Stop()
	logging.Ctx(r.Context()).Info().Msg("Motion listener stopped")
	respondData(w, r, http.StatusOK, h.motion.Status())
}
