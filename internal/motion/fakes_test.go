// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeHandle is a Handle recorded by fakeTransport.
type fakeHandle struct {
	id       int
	url      string
	listener Listener

	closed bool
	code   int
	reason string
}

func (h *fakeHandle) URL() string { return h.url }

// fakeTransport records Open and Close calls. Callbacks are driven by tests.
type fakeTransport struct {
	mu      sync.Mutex
	handles []*fakeHandle
	log     []string
	open    int
	maxOpen int
}

func (f *fakeTransport) Open(url string, l Listener) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := &fakeHandle{id: len(f.handles) + 1, url: url, listener: l}
	f.handles = append(f.handles, h)
	f.log = append(f.log, "open "+url)
	f.open++
	if f.open > f.maxOpen {
		f.maxOpen = f.open
	}
	return h
}

func (f *fakeTransport) Close(handle Handle, code int, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := handle.(*fakeHandle)
	if h.closed {
		return
	}
	h.closed = true
	h.code = code
	h.reason = reason
	f.log = append(f.log, "close "+h.url)
	f.open--
}

func (f *fakeTransport) last(t *testing.T) *fakeHandle {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		t.Fatal("no handle opened")
	}
	return f.handles[len(f.handles)-1]
}

func (f *fakeTransport) opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles)
}

func (f *fakeTransport) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeTransport) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

// Simulated transport events.
func (h *fakeHandle) simulateOpen()                 { h.listener.OnOpen(h) }
func (h *fakeHandle) simulateMessage(p string)      { h.listener.OnMessage(h, p) }
func (h *fakeHandle) simulateClose(c int, r string) { h.listener.OnClosed(h, c, r) }
func (h *fakeHandle) simulateFail(err error)        { h.listener.OnFailed(h, err) }

// fakeScheduler captures the watchdog callback so tests can fire it.
type fakeScheduler struct {
	mu       sync.Mutex
	fn       func()
	interval time.Duration
	armed    int
	canceled int
}

func (f *fakeScheduler) ScheduleRepeating(interval time.Duration, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
	f.interval = interval
	f.armed++
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.fn = nil
			f.canceled++
		})
	}
}

// fire runs one tick, as the scheduler goroutine would.
func (f *fakeScheduler) fire() bool {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (f *fakeScheduler) isArmed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fn != nil
}

// fakeSource is an in-memory EndpointSource.
type fakeSource struct {
	mu       sync.Mutex
	endpoint string
	err      error
}

func (f *fakeSource) Endpoint() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endpoint, f.err
}

func (f *fakeSource) set(endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endpoint = endpoint
}

// recordingNotifier collects notification bodies in delivery order.
type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	delay  time.Duration
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, title, body string) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
	return r.err
}

func (r *recordingNotifier) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// testRig bundles a supervisor with its fakes.
type testRig struct {
	sup       *Supervisor
	transport *fakeTransport
	scheduler *fakeScheduler
	source    *fakeSource
	notifier  *recordingNotifier

	mu          sync.Mutex
	transitions [][2]State
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	rig := &testRig{
		transport: &fakeTransport{},
		scheduler: &fakeScheduler{},
		source:    &fakeSource{},
		notifier:  &recordingNotifier{},
	}
	rig.sup = NewSupervisor(DefaultConfig(), rig.transport, rig.scheduler, rig.source, rig.notifier)
	rig.sup.SetTransitionHook(func(from, to State) {
		rig.mu.Lock()
		defer rig.mu.Unlock()
		rig.transitions = append(rig.transitions, [2]State{from, to})
	})
	t.Cleanup(rig.sup.Close)
	return rig
}

func (r *testRig) recorded() [][2]State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]State(nil), r.transitions...)
}

func (r *testRig) failure() error {
	r.sup.mu.Lock()
	defer r.sup.mu.Unlock()
	return r.sup.failure
}

func (r *testRig) requireState(t *testing.T, want State) {
	t.Helper()
	if got := r.sup.State(); got != want {
		t.Fatalf("state = %s, want %s", got, want)
	}
}
