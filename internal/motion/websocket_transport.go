// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/camwatch/internal/logging"
)

// WebsocketConfig tunes the websocket transport.
type WebsocketConfig struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	MaxMessageSize   int64
}

// DefaultWebsocketConfig returns the keepalive settings used in production.
func DefaultWebsocketConfig() WebsocketConfig {
	return WebsocketConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PongWait:         60 * time.Second,
		MaxMessageSize:   64 * 1024,
	}
}

const (
	// writeWait bounds ping writes.
	writeWait = 10 * time.Second

	// closeWait bounds the close frame written by Close.
	closeWait = time.Second
)

// WebsocketTransport implements Transport with gorilla/websocket.
//
// Each handle runs one goroutine that dials, then reads until the connection
// ends, plus a ping goroutine while the connection is open. Payloads are
// delivered as UTF-8 text in arrival order.
type WebsocketTransport struct {
	cfg    WebsocketConfig
	dialer *websocket.Dialer
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewWebsocketTransport creates a transport. Zero fields in cfg take defaults.
func NewWebsocketTransport(cfg WebsocketConfig) *WebsocketTransport {
	def := DefaultWebsocketConfig()
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}

	return &WebsocketTransport{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger: logging.WithComponent("motion-transport"),
	}
}

// wsHandle is the Handle returned by WebsocketTransport.
type wsHandle struct {
	url    string
	cancel context.CancelFunc
	dialed chan struct{}

	mu       sync.Mutex
	raw      net.Conn
	conn     *websocket.Conn
	closed   bool
	dialDone bool // set with conn once DialContext returns
}

func (h *wsHandle) URL() string { return h.url }

// netDial records the raw connection so Close can abort a handshake in
// progress.
func (h *wsHandle) netDial(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	raw, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		raw.Close()
		return nil, net.ErrClosed
	}
	h.raw = raw
	return raw, nil
}

func (h *wsHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Open implements Transport.
func (t *WebsocketTransport) Open(url string, l Listener) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &wsHandle{
		url:    url,
		cancel: cancel,
		dialed: make(chan struct{}),
	}

	dialer := *t.dialer
	dialer.NetDialContext = h.netDial

	t.wg.Add(1)
	go t.run(ctx, &dialer, h, l)
	return h
}

func (t *WebsocketTransport) run(ctx context.Context, dialer *websocket.Dialer, h *wsHandle, l Listener) {
	defer t.wg.Done()
	defer h.cancel()

	conn, resp, err := dialer.DialContext(ctx, h.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil && resp != nil {
		err = fmt.Errorf("handshake rejected (HTTP %d): %w", resp.StatusCode, err)
	}

	h.mu.Lock()
	h.conn = conn
	h.dialDone = true
	closed := h.closed
	h.mu.Unlock()
	close(h.dialed)

	if closed {
		// Close owns conn from here on.
		return
	}
	if err != nil {
		l.OnFailed(h, &ConnectError{Endpoint: h.url, Err: err})
		return
	}

	l.OnOpen(h)
	t.readLoop(h, conn, l)
}

func (t *WebsocketTransport) readLoop(h *wsHandle, conn *websocket.Conn, l Listener) {
	conn.SetReadLimit(t.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(t.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(t.cfg.PongWait))
	})

	stopPing := make(chan struct{})
	t.wg.Add(1)
	go t.pingLoop(conn, stopPing)
	defer close(stopPing)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if h.isClosed() {
				return
			}
			conn.Close()

			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				l.OnClosed(h, closeErr.Code, closeErr.Text)
				return
			}
			l.OnFailed(h, fmt.Errorf("read %s: %w", h.url, err))
			return
		}
		l.OnMessage(h, string(data))
	}
}

func (t *WebsocketTransport) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				t.logger.Debug().Err(err).Msg("Motion socket ping failed")
				return
			}
		}
	}
}

// Close implements Transport. A pending dial is aborted by cancelling it and
// closing its raw connection; an open socket gets a close frame with code and
// reason before it is closed. When Close returns no socket of h is open.
func (t *WebsocketTransport) Close(handle Handle, code int, reason string) {
	h, ok := handle.(*wsHandle)
	if !ok || h == nil {
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	raw, dialDone := h.raw, h.dialDone
	h.mu.Unlock()

	h.cancel()
	if !dialDone {
		// Still handshaking: closing raw aborts it.
		if raw != nil {
			raw.Close()
		}
		<-h.dialed
	}

	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn == nil {
		return
	}

	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait)); err != nil &&
		!errors.Is(err, websocket.ErrCloseSent) {
		t.logger.Debug().Err(err).Str("url", h.url).Msg("Motion socket close frame not sent")
	}
	if err := conn.Close(); err != nil {
		t.logger.Debug().Err(err).Str("url", h.url).Msg("Motion socket close failed")
	}
}

// Wait blocks until every goroutine started by the transport has exited.
// Call it after all handles have been closed.
func (t *WebsocketTransport) Wait() {
	t.wg.Wait()
}
