// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

type hostRequest struct {
	Host string `json:"host" validate:"required,pihost"`
}

type cameraRequest struct {
	Name  string `json:"name" validate:"required,max=8"`
	IP    string `json:"ip" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
	Note  string `validate:"omitempty,min=3"`
}

func TestValidateStruct_PiHost(t *testing.T) {
	tests := []struct {
		host    string
		wantErr bool
	}{
		{"192.168.1.20", false},
		{"raspberrypi.local", false},
		{"fe80::1", false},
		{"", true},
		{"http://192.168.1.20", true},
		{"192.168.1.20/ws", true},
		{"pi host", true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			err := ValidateStruct(&hostRequest{Host: tt.host})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct(%q) = %v, wantErr %v", tt.host, err, tt.wantErr)
			}
			if err != nil && err.Fields[0].Field != "host" {
				t.Errorf("field = %q, want json name \"host\"", err.Fields[0].Field)
			}
		})
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := []struct {
		name    string
		input   cameraRequest
		field   string
		tag     string
		message string
	}{
		{"missing name", cameraRequest{IP: "1.2.3.4"}, "name", "required", "name is required"},
		{"long name", cameraRequest{Name: "much too long", IP: "x"}, "name", "max", "name must be at most 8 characters"},
		{"negative count", cameraRequest{Name: "a", IP: "x", Count: -1}, "count", "gte", "count must be greater than or equal to 0"},
		{"short note", cameraRequest{Name: "a", IP: "x", Note: "ab"}, "Note", "min", "Note must be at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if len(err.Fields) != 1 {
				t.Fatalf("errors = %v, want exactly one", err.Fields)
			}
			fe := err.Fields[0]
			if fe.Field != tt.field || fe.Tag != tt.tag {
				t.Errorf("field/tag = %s/%s, want %s/%s", fe.Field, fe.Tag, tt.field, tt.tag)
			}
			if fe.Error() != tt.message {
				t.Errorf("message = %q, want %q", fe.Error(), tt.message)
			}
		})
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	if err := ValidateStruct(&cameraRequest{Name: "Porch", IP: "10.0.0.2"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	err := ValidateStruct("just a string")
	if err == nil || len(err.Fields) != 1 || err.Fields[0].Field != "body" {
		t.Fatalf("ValidateStruct(string) = %+v, want one body failure", err)
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&cameraRequest{IP: "x"}).ToAPIError()
	if single.Code != ErrorCode {
		t.Errorf("Code = %q", single.Code)
	}
	if single.Details["field"] != "name" {
		t.Errorf("Details = %v", single.Details)
	}

	multi := ValidateStruct(&cameraRequest{}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]any)
	if !ok || len(fields) != 2 {
		t.Fatalf("Details = %v, want two fields", multi.Details)
	}
	if !strings.Contains(multi.Message, "name is required") || !strings.Contains(multi.Message, "ip is required") {
		t.Errorf("Message = %q", multi.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty Message = %q", empty.Message)
	}
}
