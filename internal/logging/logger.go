// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level name understood by zerolog. "warning" is
	// accepted as an alias for warn. Unknown names fall back to info.
	Level string

	// Format is json or console.
	Format string

	// Caller adds file:line to every entry.
	Caller bool

	// Version, when set, is attached to every entry as "version".
	Version string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the configuration used before Init is called.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

// current holds the process logger. Readers never block; Init swaps it.
var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // logging must work before main calls Init
func init() {
	Init(DefaultConfig())
}

// Init builds the process logger from cfg and installs it. Calling it again
// replaces the previous logger.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	zctx := zerolog.New(out).With().Timestamp().Str("service", "camwatch")
	if cfg.Version != "" {
		zctx = zctx.Str("version", cfg.Version)
	}
	if cfg.Caller {
		zctx = zctx.Caller()
	}
	install(zctx.Logger())
}

//nolint:gocritic // zerolog.Logger is passed by value everywhere else too
func install(l zerolog.Logger) {
	current.Store(&l)
}

func parseLevel(name string) zerolog.Level {
	level, ok := lookupLevel(name)
	if !ok {
		return zerolog.InfoLevel
	}
	return level
}

// lookupLevel maps a level name through zerolog.ParseLevel. The empty string
// is reported as unknown; zerolog would otherwise treat it as NoLevel.
func lookupLevel(name string) (zerolog.Level, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	if name == "" {
		return zerolog.InfoLevel, false
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, false
	}
	return level, true
}

// ValidLevel reports whether Init would honour level rather than falling
// back to info.
func ValidLevel(level string) bool {
	_, ok := lookupLevel(level)
	return ok
}

// Logger returns a copy of the process logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// WithComponent returns a child logger tagged with "component".
//
//	log := logging.WithComponent("motion")
func WithComponent(component string) zerolog.Logger {
	return current.Load().With().Str("component", component).Logger()
}

// Debug starts a debug entry on the process logger.
func Debug() *zerolog.Event { return current.Load().Debug() }

// Info starts an info entry on the process logger.
//
//	logging.Info().Str("endpoint", host).Msg("Motion listener connected")
func Info() *zerolog.Event { return current.Load().Info() }

// Warn starts a warn entry on the process logger.
func Warn() *zerolog.Event { return current.Load().Warn() }

// Error starts an error entry on the process logger.
func Error() *zerolog.Event { return current.Load().Error() }

// Fatal starts a fatal entry. The process exits after the entry is written.
func Fatal() *zerolog.Event { return current.Load().Fatal() }

// NewTestLogger returns a bare JSON logger writing to w, without the
// service fields Init adds.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
