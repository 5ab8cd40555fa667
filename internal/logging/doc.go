// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

// Package logging provides centralized zerolog-based logging for camwatch.
//
// Initialize once at startup from the loaded configuration:
//
//	logging.Init(logging.Config{
//	    Level:   cfg.Logging.Level,
//	    Format:  cfg.Logging.Format,
//	    Caller:  cfg.Logging.Caller,
//	    Version: version,
//	})
//
// Every entry carries service=camwatch, plus version when one is given.
//
// Then log through the package-level helpers:
//
//	logging.Info().Str("endpoint", host).Msg("Motion listener connected")
//	logging.Error().Err(err).Msg("Webhook delivery failed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
//
// # Environment Variables
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// NewSlogLogger bridges the global logger to log/slog for libraries such as
// sutureslog that only accept an *slog.Logger.
package logging
