// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package metrics provides Prometheus metrics for camwatch.

Collectors are registered on the default registry with promauto and exposed
by the control API at /metrics:

	curl http://127.0.0.1:5080/metrics

# Available Metrics

Motion supervisor:
  - motion_connection_state: current state (gauge)
  - motion_state_transitions_total: Labels: from_state, to_state
  - motion_connect_attempts_total, motion_connect_failures_total{kind}
  - motion_stale_callbacks_total: callbacks dropped by epoch check
  - motion_events_received_total, motion_relay_queue_depth
  - motion_watchdog_ticks_total{action}

Notifiers:
  - notifications_sent_total{notifier}, notification_errors_total{notifier}
  - alert_hub_clients

Camera API client:
  - camera_api_request_duration_seconds{operation}
  - camera_api_errors_total{operation,status}
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Control API:
  - http_requests_total{method,endpoint,status}
  - http_request_duration_seconds{method,endpoint}
*/
package metrics
