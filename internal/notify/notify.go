// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/metrics"
)

// Notifier delivers one alert.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Alert is the wire form of an alert for the webhook and hub sinks.
type Alert struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Time  time.Time `json:"time"`
}

func newAlert(title, body string) Alert {
	return Alert{Title: title, Body: body, Time: time.Now().UTC()}
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, title, body string) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}

// Target is a named sink inside a Fanout. Name becomes the "notifier"
// metric label.
type Target struct {
	Name     string
	Notifier Notifier
}

// Fanout delivers every alert to each target in order.
type Fanout struct {
	targets []Target
	logger  zerolog.Logger
}

// NewFanout creates a Fanout. Targets with a nil Notifier are skipped.
func NewFanout(targets ...Target) *Fanout {
	f := &Fanout{logger: logging.WithComponent("notify")}
	for _, t := range targets {
		if t.Notifier != nil {
			f.targets = append(f.targets, t)
		}
	}
	return f
}

// Names returns the target names in delivery order.
func (f *Fanout) Names() []string {
	names := make([]string, len(f.targets))
	for i, t := range f.targets {
		names[i] = t.Name
	}
	return names
}

// Notify implements Notifier. A failing target does not stop delivery to
// the rest; all failures are returned joined.
func (f *Fanout) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, t := range f.targets {
		err := t.Notifier.Notify(ctx, title, body)
		metrics.RecordNotification(t.Name, err)
		if err != nil {
			f.logger.Debug().Err(err).Str("notifier", t.Name).Msg("Notifier failed")
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Log writes alerts to the structured log.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a log sink on the global logger.
func NewLog() *Log {
	return &Log{logger: logging.WithComponent("alerts")}
}

// NewLogWithLogger creates a log sink on logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLogWithLogger(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Notify implements Notifier.
func (l *Log) Notify(_ context.Context, title, body string) error {
	l.logger.Info().Str("title", title).Str("body", body).Msg("Motion alert")
	return nil
}
