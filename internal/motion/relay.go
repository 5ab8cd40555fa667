// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/camwatch/internal/metrics"
)

// Notifier delivers a user-visible alert. Errors are logged and otherwise
// ignored; the relay never retries.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Event is one motion payload received from the endpoint.
type Event struct {
	Seq        uint64
	Endpoint   string
	Payload    string
	ReceivedAt time.Time
}

// notifyTimeout bounds a single Notify call so one stuck notifier cannot
// stall the queue forever.
const notifyTimeout = 30 * time.Second

// relay forwards events to a Notifier from a single goroutine, in the order
// they were enqueued. The queue is unbounded so enqueue never blocks the
// transport's read loop.
type relay struct {
	notifier Notifier
	title    string
	logger   zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool
	done   chan struct{}
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newRelay(notifier Notifier, title string, logger zerolog.Logger) *relay {
	r := &relay{
		notifier: notifier,
		title:    title,
		logger:   logger,
		done:     make(chan struct{}),
	}
	r.cond = sync.NewCond(&r.mu)
	go r.run()
	return r
}

// enqueue appends ev. It reports false once the relay is closed.
func (r *relay) enqueue(ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.queue = append(r.queue, ev)
	metrics.MotionRelayQueueDepth.Set(float64(len(r.queue)))
	r.cond.Signal()
	return true
}

func (r *relay) run() {
	defer close(r.done)
	for {
		r.mu.Lock()
		for len(r.queue) == 0 && !r.closed {
			r.cond.Wait()
		}
		if len(r.queue) == 0 {
			r.mu.Unlock()
			return
		}
		ev := r.queue[0]
		r.queue[0] = Event{}
		r.queue = r.queue[1:]
		metrics.MotionRelayQueueDepth.Set(float64(len(r.queue)))
		r.mu.Unlock()

		r.deliver(ev)
	}
}

//nolint:gocritic // Event is small and copied once per delivery
func (r *relay) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := r.notifier.Notify(ctx, r.title, ev.Payload); err != nil {
		r.logger.Warn().
			Err(err).
			Uint64("seq", ev.Seq).
			Str("endpoint", ev.Endpoint).
			Msg("Motion notification failed")
	}
}

// close stops accepting events, waits for the queue to drain and for the
// dispatch goroutine to exit.
func (r *relay) close() {
	r.mu.Lock()
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()
	<-r.done
}
