// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package cameras

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/metrics"
)

// BreakerName is the circuit breaker metric label for the Pi API.
const BreakerName = "camera-api"

// BreakerSettings tunes BreakerClient.
type BreakerSettings struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval resets the counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration
	// MinRequests is the sample size needed before the breaker can trip.
	MinRequests uint32
	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// DefaultBreakerSettings suits a single Pi on the local network: trip after
// 3 of 5 requests fail, retry after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// BreakerClient wraps an API with a circuit breaker.
//
// 4xx responses count as successes: the Pi is healthy, the request was bad.
type BreakerClient struct {
	api  API
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

var _ API = (*BreakerClient)(nil)

// NewBreakerClient wraps api.
func NewBreakerClient(api API, s BreakerSettings) *BreakerClient {
	name := BreakerName
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening camera API circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] Camera API state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var statusErr *StatusError
			return errors.As(err, &statusErr) && statusErr.ClientError()
		},
	})

	return &BreakerClient{api: api, cb: cb, name: name}
}

// State returns the breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

// CloseIdleConnections forwards to the wrapped API when it holds pooled
// connections.
func (b *BreakerClient) CloseIdleConnections() {
	closeIdle(b.api)
}

func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Camera API request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

func (b *BreakerClient) run(fn func() error) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func castCamera(result interface{}, err error) (*Camera, error) {
	if err != nil {
		return nil, err
	}
	cam, ok := result.(*Camera)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for camera")
	}
	return cam, nil
}

// ListCameras implements API.
func (b *BreakerClient) ListCameras(ctx context.Context) ([]Camera, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.api.ListCameras(ctx)
	})
	if err != nil {
		return nil, err
	}
	cams, ok := result.([]Camera)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for ListCameras")
	}
	return cams, nil
}

// AddCamera implements API.
func (b *BreakerClient) AddCamera(ctx context.Context, cam Camera) (*Camera, error) {
	return castCamera(b.execute(func() (interface{}, error) {
		return b.api.AddCamera(ctx, cam)
	}))
}

// UpdateCamera implements API.
func (b *BreakerClient) UpdateCamera(ctx context.Context, id int, cam Camera) (*Camera, error) {
	return castCamera(b.execute(func() (interface{}, error) {
		return b.api.UpdateCamera(ctx, id, cam)
	}))
}

// DeleteCamera implements API.
func (b *BreakerClient) DeleteCamera(ctx context.Context, id int) error {
	return b.run(func() error { return b.api.DeleteCamera(ctx, id) })
}

// DeleteAllCameras implements API.
func (b *BreakerClient) DeleteAllCameras(ctx context.Context) error {
	return b.run(func() error { return b.api.DeleteAllCameras(ctx) })
}

// StartCamera implements API.
func (b *BreakerClient) StartCamera(ctx context.Context, id int) error {
	return b.run(func() error { return b.api.StartCamera(ctx, id) })
}

// StopCamera implements API.
func (b *BreakerClient) StopCamera(ctx context.Context, id int) error {
	return b.run(func() error { return b.api.StopCamera(ctx, id) })
}

// TriggerAlarm implements API.
func (b *BreakerClient) TriggerAlarm(ctx context.Context) error {
	return b.run(func() error { return b.api.TriggerAlarm(ctx) })
}

// stateToFloat converts circuit breaker state to the gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
