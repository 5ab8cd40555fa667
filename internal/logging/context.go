// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey uint8

const (
	keyCorrelation ctxKey = iota
	keyRequest
)

// ctxFields lists the context values Ctx copies onto log entries, in output
// order.
var ctxFields = [...]struct {
	key  ctxKey
	name string
}{
	{keyCorrelation, "correlation_id"},
	{keyRequest, "request_id"},
}

// GenerateCorrelationID returns an 8 character id. The motion supervisor
// stamps one on every connection attempt; the HTTP middleware on every
// request.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

// GenerateRequestID returns a full UUID.
func GenerateRequestID() string {
	return uuid.NewString()
}

// ContextWithCorrelationID attaches a correlation id to ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyCorrelation, id)
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, keyCorrelation)
}

// ContextWithRequestID attaches a request id to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequest, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, keyRequest)
}

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// Ctx returns a child of the process logger carrying whichever ids ctx holds.
//
//	logging.Ctx(r.Context()).Info().Int("camera_id", id).Msg("Camera added")
func Ctx(ctx context.Context) *zerolog.Logger {
	zctx := current.Load().With()
	for _, f := range ctxFields {
		if v := stringValue(ctx, f.key); v != "" {
			zctx = zctx.Str(f.name, v)
		}
	}
	l := zctx.Logger()
	return &l
}
