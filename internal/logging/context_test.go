// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateCorrelationID(t *testing.T) {
	id := GenerateCorrelationID()
	if len(id) != 8 {
		t.Errorf("expected 8 character id, got %q", id)
	}
	if id == GenerateCorrelationID() {
		t.Error("expected unique correlation ids")
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" {
		t.Error("expected empty correlation id on bare context")
	}

	ctx = ContextWithCorrelationID(ctx, "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")

	if got := CorrelationIDFromContext(ctx); got != "abc12345" {
		t.Errorf("CorrelationIDFromContext = %q, want abc12345", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext = %q, want req-1", got)
	}
}

func TestCtxAddsFields(t *testing.T) {
	var buf bytes.Buffer
	useForTest(t, NewTestLogger(&buf))

	ctx := ContextWithCorrelationID(context.Background(), "corr0001")
	ctx = ContextWithRequestID(ctx, "req-42")
	Ctx(ctx).Info().Msg("with context")

	output := buf.String()
	if !strings.Contains(output, `"correlation_id":"corr0001"`) {
		t.Errorf("missing correlation_id: %s", output)
	}
	if !strings.Contains(output, `"request_id":"req-42"`) {
		t.Errorf("missing request_id: %s", output)
	}
}

func TestCtxWithoutIDs(t *testing.T) {
	var buf bytes.Buffer
	useForTest(t, NewTestLogger(&buf))

	Ctx(context.Background()).Info().Msg("plain")

	if strings.Contains(buf.String(), "correlation_id") || strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected id fields: %s", buf.String())
	}
}
