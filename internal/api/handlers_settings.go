// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/models"
)

// GetSettings returns the stored endpoint and Pi API host.
//
// @Summary Get settings
// @Description Returns the stored motion endpoint host and Raspberry Pi API host.
// @Tags Settings
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Settings} "Stored settings"
// @Failure 500 {object} models.APIResponse "Settings store error"
// @Router /settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	endpoint, apiHost, err := h.settings.Snapshot()
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeStoreError, "Failed to read settings", err)
		return
	}
	respondData(w, r, http.StatusOK, models.Settings{Endpoint: endpoint, APIHost: apiHost})
}

// SetEndpoint stores a new motion endpoint and points the listener at it.
// The host is persisted before the supervisor sees it so a restart resumes
// with the same endpoint.
//
// @Summary Set motion endpoint
// @Description Persists the motion endpoint host and restarts the listener against it.
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body models.HostRequest true "Endpoint host"
// @Success 200 {object} models.APIResponse{data=motion.Status} "Endpoint saved"
// @Failure 400 {object} models.APIResponse "Invalid host"
// @Failure 500 {object} models.APIResponse "Settings store error"
// @Router /settings/endpoint [put]
func (h *Handler) SetEndpoint(w http.ResponseWriter, r *http.Request) {
	var req models.HostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	host := strings.TrimSpace(req.Host)

	if err := h.settings.SetEndpoint(host); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeStoreError, "Failed to save endpoint", err)
		return
	}
	h.motion.Start(host)

	logging.Ctx(r.Context()).Info().Str("endpoint", sanitizeLogValue(host)).Msg("Motion endpoint updated")
	respondData(w, r, http.StatusOK, h.motion.Status())
}

// SetAPIHost stores a new Pi API host and rebuilds the camera client.
//
// @Summary Set Raspberry Pi API host
// @Description Persists the camera API host and rebuilds the camera client.
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body models.HostRequest true "API host"
// @Success 200 {object} models.APIResponse{data=models.Settings} "API host saved"
// @Failure 400 {object} models.APIResponse "Invalid host"
// @Failure 500 {object} models.APIResponse "Settings store error"
// @Router /settings/api-host [put]
func (h *Handler) SetAPIHost(w http.ResponseWriter, r *http.Request) {
	var req models.HostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	host := strings.TrimSpace(req.Host)

	if err := h.settings.SetAPIHost(host); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeStoreError, "Failed to save API host", err)
		return
	}
	h.cameras.Set(host)

	logging.Ctx(r.Context()).Info().Str("api_host", sanitizeLogValue(host)).Msg("Camera API host updated")

	endpoint, _ := h.settings.Endpoint()
	respondData(w, r, http.StatusOK, models.Settings{Endpoint: endpoint, APIHost: host})
}
