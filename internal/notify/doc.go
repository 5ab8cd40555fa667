// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package notify delivers motion alerts to the user.

Every sink implements the Notifier interface consumed by the motion
supervisor's relay:

	type Notifier interface {
	    Notify(ctx context.Context, title, body string) error
	}

# Sinks

  - Log: writes each alert as a structured zerolog line
  - Webhook: POSTs a JSON Alert to a configured URL, rate limited with
    golang.org/x/time/rate
  - Hub: pushes alerts to local websocket subscribers (GET /api/v1/alerts/ws)

Fanout combines sinks. It calls each one in registration order, records
notifications_sent_total / notification_errors_total per sink and joins
the errors, so one failing sink never hides an alert from the others.

# Hub Protocol

Subscribers receive JSON messages of the form:

	{"type": "motion_alert", "data": {"title": "...", "body": "...", "time": "..."}}

A subscriber may send {"type": "ping"} and receives {"type": "pong"}.
Websocket pings are sent every 54 seconds and a subscriber that does not
answer within 60 seconds is dropped. Slow subscribers whose send buffer
fills are disconnected rather than blocking the broadcast.

# Usage

	hub := notify.NewHub()
	go hub.RunWithContext(ctx)

	fan := notify.NewFanout(
	    notify.Target{Name: "log", Notifier: notify.NewLog()},
	    notify.Target{Name: "hub", Notifier: hub},
	)
*/
package notify
