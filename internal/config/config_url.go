// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidHost is returned by ValidateHost.
var ErrInvalidHost = errors.New("must be a bare IP address or hostname")

var hostValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateHost checks that host is a bare IP address or RFC 1123 hostname,
// with no scheme, port or path. Pi addresses are stored in this form and the
// port is appended from configuration.
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host is empty: %w", ErrInvalidHost)
	}
	if strings.ContainsAny(host, "/?#@ ") {
		return fmt.Errorf("%q: %w", host, ErrInvalidHost)
	}
	if err := hostValidator.Var(host, "ip|hostname_rfc1123"); err != nil {
		return fmt.Errorf("%q: %w", host, ErrInvalidHost)
	}
	return nil
}

// validateWebhookURL validates an http(s) URL. Unlike base URLs elsewhere a
// path and query are allowed since webhook receivers usually need them.
func validateWebhookURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required")
	}

	return nil
}

// validateStreamURL validates an RTMP stream URL override.
func validateStreamURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	switch parsedURL.Scheme {
	case "rtmp", "rtmps", "rtsp", "http", "https":
	default:
		return fmt.Errorf("scheme must be rtmp, rtmps, rtsp, http or https, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
