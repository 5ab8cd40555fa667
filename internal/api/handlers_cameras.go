// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/camwatch/internal/cameras"
	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/models"
)

// ListCameras returns every camera known to the Pi.
//
// @Summary List cameras
// @Tags Cameras
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]cameras.Camera} "Cameras on the Pi"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Failure 503 {object} models.APIResponse "API host not configured or circuit open"
// @Router /cameras [get]
func (h *Handler) ListCameras(w http.ResponseWriter, r *http.Request) {
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	list, err := api.ListCameras(r.Context())
	if err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, list)
}

// AddCamera registers a camera on the Pi.
//
// @Summary Add camera
// @Tags Cameras
// @Accept json
// @Produce json
// @Param request body cameras.Camera true "Camera name and address"
// @Success 201 {object} models.APIResponse{data=cameras.Camera} "Camera created"
// @Failure 400 {object} models.APIResponse "Invalid camera or rejected by the Pi"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Failure 503 {object} models.APIResponse "API host not configured or circuit open"
// @Router /cameras [post]
func (h *Handler) AddCamera(w http.ResponseWriter, r *http.Request) {
	var cam cameras.Camera
	if !decodeAndValidate(w, r, &cam) {
		return
	}
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	created, err := api.AddCamera(r.Context(), cam)
	if err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int("camera_id", created.ID).Str("name", sanitizeLogValue(created.Name)).Msg("Camera added")
	respondData(w, r, http.StatusCreated, created)
}

// UpdateCamera replaces a camera's name and address.
//
// @Summary Update camera
// @Tags Cameras
// @Accept json
// @Produce json
// @Param id path int true "Camera ID"
// @Param request body cameras.Camera true "Camera name and address"
// @Success 200 {object} models.APIResponse{data=cameras.Camera} "Camera updated"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 404 {object} models.APIResponse "Camera not found"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Router /cameras/{id} [put]
func (h *Handler) UpdateCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	var cam cameras.Camera
	if !decodeAndValidate(w, r, &cam) {
		return
	}
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	updated, err := api.UpdateCamera(r.Context(), id, cam)
	if err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, updated)
}

// DeleteCamera removes one camera.
//
// @Summary Delete camera
// @Tags Cameras
// @Produce json
// @Param id path int true "Camera ID"
// @Success 200 {object} models.APIResponse{data=map[string]int} "Camera deleted"
// @Failure 404 {object} models.APIResponse "Camera not found"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Router /cameras/{id} [delete]
func (h *Handler) DeleteCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	if err := api.DeleteCamera(r.Context(), id); err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int("camera_id", id).Msg("Camera deleted")
	respondData(w, r, http.StatusOK, map[string]int{"deleted": id})
}

// DeleteAllCameras removes every camera on the Pi.
//
// @Summary Delete all cameras
// @Tags Cameras
// @Produce json
// @Success 200 {object} models.APIResponse{data=map[string]bool} "Cameras deleted"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Router /cameras [delete]
func (h *Handler) DeleteAllCameras(w http.ResponseWriter, r *http.Request) {
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	if err := api.DeleteAllCameras(r.Context()); err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("All cameras deleted")
	respondData(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// StartStream asks the Pi to publish a camera and returns where to play it.
//
// @Summary Start camera stream
// @Description Asks the Pi to publish the camera and returns the RTMP address to play.
// @Tags Cameras
// @Produce json
// @Param id path int true "Camera ID"
// @Success 200 {object} models.APIResponse{data=models.StreamInfo} "Stream started"
// @Failure 404 {object} models.APIResponse "Camera not found"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Router /cameras/{id}/stream [post]
func (h *Handler) StartStream(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	if err := api.StartCamera(r.Context(), id); err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, models.StreamInfo{
		CameraID:  id,
		StreamURL: h.raspberry.StreamURLFor(h.cameras.Host()),
	})
}

// StopStream stops a camera's stream.
//
// @Summary Stop camera stream
// @Tags Cameras
// @Produce json
// @Param id path int true "Camera ID"
// @Success 200 {object} models.APIResponse{data=map[string]int} "Stream stopped"
// @Failure 409 {object} models.APIResponse "Stream not running"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Router /cameras/{id}/stream [delete]
func (h *Handler) StopStream(w http.ResponseWriter, r *http.Request) {
	id, ok := cameraID(w, r)
	if !ok {
		return
	}
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	if err := api.StopCamera(r.Context(), id); err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]int{"stopped": id})
}

// TriggerAlarm sounds the alarm on the Pi.
//
// @Summary Trigger alarm
// @Tags Cameras
// @Produce json
// @Success 202 {object} models.APIResponse{data=map[string]bool} "Alarm triggered"
// @Failure 502 {object} models.APIResponse "Pi API request failed"
// @Failure 503 {object} models.APIResponse "API host not configured or circuit open"
// @Router /alarm [post]
func (h *Handler) TriggerAlarm(w http.ResponseWriter, r *http.Request) {
	api, ok := h.cameraAPI(w, r)
	if !ok {
		return
	}
	if err := api.TriggerAlarm(r.Context()); err != nil {
		h.respondCameraError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Warn().Msg("Alarm triggered")
	respondData(w, r, http.StatusAccepted, map[string]bool{"triggered": true})
}

func (h *Handler) cameraAPI(w http.ResponseWriter, r *http.Request) (cameras.API, bool) {
	api, err := h.cameras.Get()
	if err != nil {
		h.respondCameraError(w, r, err)
		return nil, false
	}
	return api, true
}

func cameraID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid camera id", nil)
		return 0, false
	}
	return id, true
}

// respondCameraError maps a Pi failure to an API status.
func (h *Handler) respondCameraError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *cameras.StatusError
	switch {
	case errors.Is(err, cameras.ErrNoAPIHost):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeAPIHostNotConfigured,
			"Raspberry Pi API host is not configured", nil)
	case errors.Is(err, cameras.ErrStreamNotRunning):
		respondError(w, r, http.StatusConflict, ErrCodeStreamNotRunning, "Camera stream not running", err)
	case errors.Is(err, cameras.ErrCameraNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Camera not found", err)
	case errors.As(err, &statusErr) && statusErr.ClientError():
		respondError(w, r, http.StatusBadRequest, ErrCodeCameraAPIRejected,
			"Raspberry Pi rejected the request", err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeCircuitOpen,
			"Raspberry Pi API temporarily unavailable", err)
	default:
		respondError(w, r, http.StatusBadGateway, ErrCodeCameraAPIError,
			"Raspberry Pi API request failed", err)
	}
}
