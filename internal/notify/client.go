// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package notify

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Subscriber socket limits. The server pings at 90% of the idle timeout so a
// healthy browser always answers in time.
const (
	subscriberWriteTimeout = 10 * time.Second
	subscriberIdleTimeout  = time.Minute
	subscriberPingEvery    = subscriberIdleTimeout * 9 / 10
	subscriberMaxFrame     = 4 << 10
	subscriberQueue        = 32
)

// clientIDCounter hands out ids in join order; the hub delivers in id order.
var clientIDCounter atomic.Uint64

// Client is one alert subscriber connected over a websocket.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message
	pong chan struct{}
}

// NewClient wraps an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, subscriberQueue),
		pong: make(chan struct{}, 1),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Attach registers c with the hub and starts its read and write loops. It
// fails when ctx ends first or the hub is not running; the connection is
// closed in both cases.
func (c *Client) Attach(ctx context.Context) error {
	select {
	case c.hub.join <- c:
	case <-c.hub.done():
		_ = c.conn.Close()
		return context.Canceled
	case <-ctx.Done():
		_ = c.conn.Close()
		return ctx.Err()
	}
	go c.writeLoop()
	go c.readLoop()
	return nil
}

func (c *Client) unregister() {
	select {
	case c.hub.leave <- c:
	case <-c.hub.done():
	}
}

// extendDeadline restarts the idle timeout. It runs on attach and on every pong.
func (c *Client) extendDeadline() error {
	return c.conn.SetReadDeadline(time.Now().Add(subscriberIdleTimeout))
}

// readLoop consumes inbound frames until the socket fails. Subscribers may
// only send {"type":"ping"}, answered with a pong; anything else is ignored.
func (c *Client) readLoop() {
	defer func() {
		c.unregister()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(subscriberMaxFrame)
	c.conn.SetPongHandler(func(string) error { return c.extendDeadline() })
	if err := c.extendDeadline(); err != nil {
		c.hub.logger.Error().Err(err).Uint64("client_id", c.id).Msg("Alert socket deadline failed")
		return
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Uint64("client_id", c.id).Msg("Unexpected alert socket close")
			}
			return
		}
		if !isPing(data) {
			continue
		}
		select {
		case c.pong <- struct{}{}:
		default:
		}
	}
}

func isPing(data []byte) bool {
	var msg Message
	return json.Unmarshal(data, &msg) == nil && msg.Type == MessageTypePing
}

// writeLoop is the only writer on the socket. It ends when the hub closes
// send or a write fails.
func (c *Client) writeLoop() {
	keepalive := time.NewTicker(subscriberPingEvery)
	defer func() {
		keepalive.Stop()
		_ = c.conn.Close()
	}()

	for {
		var err error
		select {
		case msg, open := <-c.send:
			if !open {
				bye := websocket.FormatCloseMessage(websocket.CloseGoingAway, "alert hub closed")
				_ = c.conn.WriteControl(websocket.CloseMessage, bye, time.Now().Add(subscriberWriteTimeout))
				return
			}
			err = c.writeJSON(msg)
		case <-c.pong:
			err = c.writeJSON(Message{Type: MessageTypePong})
		case <-keepalive.C:
			err = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(subscriberWriteTimeout))
		}
		if err != nil {
			return
		}
	}
}

// writeJSON encodes msg with goccy/go-json and sends it as one text frame.
// An unencodable message is logged and skipped.
func (c *Client) writeJSON(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode alert message")
		return nil
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(subscriberWriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
