// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

// Package validation checks control API request bodies with
// go-playground/validator v10.
//
// Field names in failures are the json names the client sent:
//
//	type HostRequest struct {
//	    Host string `json:"host" validate:"required,pihost"`
//	}
//
// Custom tags:
//   - pihost: a bare IP address or hostname with no scheme, port or path
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/camwatch/internal/config"
)

// ErrorCode is the API error code for validation failures.
const ErrorCode = "VALIDATION_ERROR"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("pihost", func(fl validator.FieldLevel) bool {
		return config.ValidateHost(fl.Field().String()) == nil
	}); err != nil {
		panic(fmt.Sprintf("register pihost: %v", err))
	}
	return v
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	return validate
}

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// RequestValidationError holds every failure of one request body.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// APIError is the error body sent to API clients.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError renders the failures for the response envelope. A single
// failure puts field and tag directly in Details; several are listed under
// "fields".
func (e *RequestValidationError) ToAPIError() *APIError {
	out := &APIError{Code: ErrorCode, Message: "Validation failed"}
	switch len(e.Fields) {
	case 0:
	case 1:
		f := e.Fields[0]
		out.Message = f.Message
		out.Details = map[string]any{"field": f.Field, "tag": f.Tag}
	default:
		list := make([]map[string]any, 0, len(e.Fields))
		for _, f := range e.Fields {
			list = append(list, map[string]any{"field": f.Field, "tag": f.Tag, "message": f.Message})
		}
		out.Message = e.Error()
		out.Details = map[string]any{"fields": list}
	}
	return out
}

// ValidateStruct validates s and returns nil when it passes.
func ValidateStruct(s any) *RequestValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: s was not a struct.
		return &RequestValidationError{Fields: []FieldError{{Field: "body", Tag: "struct", Message: err.Error()}}}
	}

	out := &RequestValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}

// describers render a failure as "<field> <phrase>". Tags without an entry
// fall back to "failed <tag> validation".
var describers = map[string]func(fe validator.FieldError) string{
	"required": func(validator.FieldError) string { return "is required" },
	"pihost":   func(validator.FieldError) string { return "must be a bare IP address or hostname" },
	"ip":       func(validator.FieldError) string { return "must be a valid IP address" },
	"oneof":    func(fe validator.FieldError) string { return "must be one of: " + fe.Param() },
	"gte":      func(fe validator.FieldError) string { return "must be greater than or equal to " + fe.Param() },
	"lte":      func(fe validator.FieldError) string { return "must be less than or equal to " + fe.Param() },
	"gt":       func(fe validator.FieldError) string { return "must be greater than " + fe.Param() },
	"min":      func(fe validator.FieldError) string { return "must be at least " + fe.Param() + lengthUnit(fe) },
	"max":      func(fe validator.FieldError) string { return "must be at most " + fe.Param() + lengthUnit(fe) },
}

func lengthUnit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}

func describe(fe validator.FieldError) string {
	if d, ok := describers[fe.Tag()]; ok {
		return fe.Field() + " " + d(fe)
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
