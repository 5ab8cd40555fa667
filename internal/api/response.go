// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/models"
	"github.com/tomtom215/camwatch/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeConflict             = "CONFLICT"
	ErrCodeTooManyRequests      = "TOO_MANY_REQUESTS"
	ErrCodeInternalError        = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeStoreError           = "STORE_ERROR"
	ErrCodeAPIHostNotConfigured = "API_HOST_NOT_CONFIGURED"
	ErrCodeCameraAPIRejected    = "CAMERA_API_REJECTED"
	ErrCodeCameraAPIError       = "CAMERA_API_ERROR"
	ErrCodeCircuitOpen          = "CIRCUIT_OPEN"
	ErrCodeStreamNotRunning     = "STREAM_NOT_RUNNING"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 * 1024

// sanitizeLogValue escapes control characters so client input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func metadata(r *http.Request) models.Metadata {
	md := models.Metadata{Timestamp: time.Now().UTC()}
	if r != nil {
		md.RequestID = logging.RequestIDFromContext(r.Context())
	}
	return md
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData sends a success envelope around data.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadata(r),
	})
}

// respondError sends an error envelope. A non-nil err is logged, never sent.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Error()
		if status < http.StatusInternalServerError {
			event = logging.Warn()
		}
		if r != nil {
			event = event.Str("request_id", logging.RequestIDFromContext(r.Context()))
		}
		event.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: metadata(r),
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// respondValidationError sends a 400 built from validation failures.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: metadata(r),
		Error: &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}

// decodeAndValidate reads a JSON body into v and validates it. On failure it
// writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", err)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "Invalid JSON body", nil)
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		respondValidationError(w, r, verr)
		return false
	}
	return true
}
