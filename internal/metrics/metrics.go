// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Motion Supervisor Metrics
	MotionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "motion_connection_state",
			Help: "Motion supervisor state (0=disconnected, 1=connecting, 2=connected, 3=failed)",
		},
	)

	MotionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motion_state_transitions_total",
			Help: "Total number of motion supervisor state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	MotionConnectAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "motion_connect_attempts_total",
			Help: "Total number of connection attempts to the motion endpoint",
		},
	)

	MotionConnectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motion_connect_failures_total",
			Help: "Total number of failed or lost motion connections",
		},
		[]string{"kind"}, // connect, peer_closed, transport
	)

	MotionStaleCallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "motion_stale_callbacks_total",
			Help: "Transport callbacks dropped because their epoch was superseded",
		},
	)

	MotionEventsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "motion_events_received_total",
			Help: "Total number of motion events received",
		},
	)

	MotionRelayQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "motion_relay_queue_depth",
			Help: "Motion events waiting for notifier dispatch",
		},
	)

	WatchdogTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motion_watchdog_ticks_total",
			Help: "Total number of watchdog ticks",
		},
		[]string{"action"}, // restart, healthy, no_endpoint, error
	)

	// Notifier Metrics
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of alerts delivered per notifier",
		},
		[]string{"notifier"},
	)

	NotificationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_errors_total",
			Help: "Total number of failed alert deliveries per notifier",
		},
		[]string{"notifier"},
	)

	AlertHubClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_hub_clients",
			Help: "Current number of local alert subscribers",
		},
	)

	// Camera REST Client Metrics
	CameraAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "camera_api_request_duration_seconds",
			Help:    "Duration of requests to the Pi camera API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CameraAPIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "camera_api_errors_total",
			Help: "Total number of failed requests to the Pi camera API",
		},
		[]string{"operation", "status"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Control API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records a control API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCameraAPIRequest records a request to the Pi camera API. status is the
// HTTP status code, or 0 when no response was received.
func RecordCameraAPIRequest(operation string, status int, duration time.Duration, err error) {
	CameraAPIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		label := "transport"
		if status > 0 {
			label = strconv.Itoa(status)
		}
		CameraAPIErrors.WithLabelValues(operation, label).Inc()
	}
}

// RecordNotification records the outcome of one alert delivery.
func RecordNotification(notifier string, err error) {
	if err != nil {
		NotificationErrors.WithLabelValues(notifier).Inc()
		return
	}
	NotificationsSent.WithLabelValues(notifier).Inc()
}

// RecordMotionTransition records a supervisor state change. state is the
// numeric value of the new state.
func RecordMotionTransition(from, to string, state int) {
	MotionTransitions.WithLabelValues(from, to).Inc()
	MotionState.Set(float64(state))
}
