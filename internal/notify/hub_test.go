// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
)

// alertServer upgrades every request and attaches it to hub.
func alertServer(t *testing.T, hub *Hub, attachErr chan<- error) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		err = NewClient(hub, conn).Attach(r.Context())
		if attachErr != nil {
			attachErr <- err
		}
	}))
}

func dialAlerts(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return msg
}

func TestHub_BroadcastsAlerts(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- hub.RunWithContext(ctx) }()

	srv := alertServer(t, hub, nil)
	defer srv.Close()

	a := dialAlerts(t, srv)
	defer a.Close()
	b := dialAlerts(t, srv)
	defer b.Close()
	waitClients(t, hub, 2)

	if err := hub.Notify(context.Background(), "Motion detected", "porch"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeMotionAlert {
			t.Errorf("type = %q, want %q", msg.Type, MessageTypeMotionAlert)
		}
		data, ok := msg.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("data = %#v", msg.Data)
		}
		if data["title"] != "Motion detected" || data["body"] != "porch" {
			t.Errorf("alert = %v", data)
		}
	}

	// Shutdown closes every subscriber with a going-away frame.
	cancel()
	if err := <-runDone; !errors.Is(err, context.Canceled) {
		t.Errorf("RunWithContext() = %v, want context.Canceled", err)
	}
	_ = a.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := a.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("read after shutdown = %v, want going-away close", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count after shutdown = %d", hub.ClientCount())
	}

	a.Close()
	b.Close()
	srv.Close()
}

func TestHub_PingPong(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- hub.RunWithContext(ctx) }()

	srv := alertServer(t, hub, nil)
	conn := dialAlerts(t, srv)
	waitClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("type = %q, want pong", msg.Type)
	}

	// Client disconnect unregisters it.
	conn.Close()
	waitClients(t, hub, 0)

	cancel()
	<-runDone
	srv.Close()
}

func TestHub_AttachFailsWhenStopped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub()
	attachErr := make(chan error, 1)
	srv := alertServer(t, hub, attachErr)

	conn := dialAlerts(t, srv)
	defer conn.Close()

	select {
	case err := <-attachErr:
		if err == nil {
			t.Error("Attach() should fail while the hub is not running")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Attach() did not return")
	}
	srv.Close()
}

func TestHub_NotifyBufferFull(t *testing.T) {
	hub := NewHub()

	for i := 0; i < cap(hub.queue); i++ {
		if err := hub.Notify(context.Background(), "t", "b"); err != nil {
			t.Fatalf("Notify() #%d error = %v", i, err)
		}
	}
	if err := hub.Notify(context.Background(), "t", "overflow"); !errors.Is(err, ErrHubBusy) {
		t.Errorf("Notify() on full buffer = %v, want ErrHubBusy", err)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message)}
	fast := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, 1)}
	hub.addClient(slow)
	hub.addClient(fast)

	hub.fanOut(Message{Type: MessageTypeMotionAlert})

	if hub.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", hub.ClientCount())
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client's send channel should be closed")
	}
	if msg := <-fast.send; msg.Type != MessageTypeMotionAlert {
		t.Errorf("fast client got %q", msg.Type)
	}
}

func TestHub_PublishState(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- hub.RunWithContext(ctx) }()

	srv := alertServer(t, hub, nil)
	defer srv.Close()
	conn := dialAlerts(t, srv)
	defer conn.Close()
	waitClients(t, hub, 1)

	hub.PublishState("connecting", "connected")

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeMotionState {
		t.Fatalf("type = %q, want %q", msg.Type, MessageTypeMotionState)
	}
	data, ok := msg.Data.(map[string]interface{})
	if !ok || data["from"] != "connecting" || data["to"] != "connected" {
		t.Errorf("state change = %#v", msg.Data)
	}

	cancel()
	<-runDone
}

func TestHub_PublishStateNeverBlocks(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(hub.queue)+10; i++ {
			hub.PublishState("connected", "disconnected")
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PublishState blocked on a full buffer")
	}
}
