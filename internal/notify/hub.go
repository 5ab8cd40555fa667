// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package notify

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/metrics"
)

// Message types for the alert socket
const (
	MessageTypeMotionAlert = "motion_alert"
	MessageTypeMotionState = "motion_state"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// ErrHubBusy is returned by Hub.Notify when the broadcast buffer is full.
var ErrHubBusy = errors.New("alert hub broadcast buffer full")

// Message is one frame sent to subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub fans alerts and listener state changes out to websocket subscribers.
// One goroutine (RunWithContext) owns delivery; subscribers join and leave
// through it so a broadcast never races a registration.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*Client

	queue chan Message
	join  chan *Client
	leave chan *Client

	// closing is closed while RunWithContext is not running.
	closing chan struct{}
	logger  zerolog.Logger
}

const hubQueueSize = 64

// NewHub creates a stopped hub. Call RunWithContext to start it.
func NewHub() *Hub {
	closing := make(chan struct{})
	close(closing)
	return &Hub{
		clients: make(map[uint64]*Client),
		queue:   make(chan Message, hubQueueSize),
		join:    make(chan *Client),
		leave:   make(chan *Client),
		closing: closing,
		logger:  logging.WithComponent("alert-hub"),
	}
}

// RunWithContext delivers queued messages until ctx ends, then disconnects
// every subscriber and returns ctx.Err(). It may be called again after it
// returns.
//
// Pending joins and leaves are applied before each delivery, so a subscriber
// that joined before an alert was queued receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.Lock()
	h.closing = make(chan struct{})
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		close(h.closing)
		h.mu.Unlock()
	}()

	for {
		if h.applyMembership() {
			continue
		}
		select {
		case <-ctx.Done():
			h.disconnectAll()
			return ctx.Err()
		case c := <-h.join:
			h.addClient(c)
		case c := <-h.leave:
			h.removeClient(c)
		case msg := <-h.queue:
			if ctx.Err() != nil {
				h.disconnectAll()
				return ctx.Err()
			}
			h.fanOut(msg)
		}
	}
}

// applyMembership handles one pending join or leave without blocking and
// reports whether it did.
func (h *Hub) applyMembership() bool {
	select {
	case c := <-h.join:
		h.addClient(c)
	case c := <-h.leave:
		h.removeClient(c)
	default:
		return false
	}
	return true
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	metrics.AlertHubClients.Set(float64(n))
	h.logger.Info().Uint64("client_id", c.id).Int("subscribers", n).Msg("Alert subscriber connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		h.dropLocked(c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.AlertHubClients.Set(float64(n))
	h.logger.Info().Uint64("client_id", c.id).Int("subscribers", n).Msg("Alert subscriber disconnected")
}

// dropLocked forgets c and closes its queue, which ends its writer.
func (h *Hub) dropLocked(c *Client) {
	delete(h.clients, c.id)
	close(c.send)
}

// fanOut offers msg to every subscriber in join order. A subscriber with a
// full queue is disconnected instead of stalling the others.
func (h *Hub) fanOut(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, id := range slices.Sorted(maps.Keys(h.clients)) {
		c := h.clients[id]
		select {
		case c.send <- msg:
		default:
			h.dropLocked(c)
			h.logger.Warn().Uint64("client_id", id).Msg("Alert subscriber too slow, disconnecting")
		}
	}
	metrics.AlertHubClients.Set(float64(len(h.clients)))
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	n := len(h.clients)
	for _, c := range h.clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()

	metrics.AlertHubClients.Set(0)
	h.logger.Info().Int("subscribers_closed", n).Msg("Alert hub stopped")
}

// done returns a channel closed while the hub is not running.
func (h *Hub) done() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closing
}

// Notify implements Notifier by queueing an alert for every subscriber. It
// never waits for subscribers to receive it.
func (h *Hub) Notify(ctx context.Context, title, body string) error {
	message := Message{Type: MessageTypeMotionAlert, Data: newAlert(title, body)}
	select {
	case h.queue <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		h.logger.Warn().Msg("Alert broadcast buffer full, dropping alert")
		return ErrHubBusy
	}
}

// StateChange is the payload of a motion_state message.
type StateChange struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	Time time.Time `json:"time"`
}

// PublishState queues a listener state change for every subscriber. It never
// blocks, so it is safe to call with the motion supervisor's lock held; when
// the buffer is full the change is dropped.
func (h *Hub) PublishState(from, to string) {
	message := Message{Type: MessageTypeMotionState, Data: StateChange{From: from, To: to, Time: time.Now().UTC()}}
	select {
	case h.queue <- message:
	default:
		h.logger.Debug().Str("to", to).Msg("Alert broadcast buffer full, dropping state change")
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
