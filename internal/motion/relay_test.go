// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"errors"
	"io"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func TestRelay_OrderAndDrain(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	n := &recordingNotifier{delay: time.Millisecond}
	r := newRelay(n, "Motion detected", zerolog.New(io.Discard))

	var want []string
	for i := 0; i < 50; i++ {
		body := strconv.Itoa(i)
		want = append(want, body)
		if !r.enqueue(Event{Seq: uint64(i + 1), Payload: body}) {
			t.Fatalf("enqueue(%d) rejected", i)
		}
	}
	r.close()

	if got := n.snapshot(); !slices.Equal(got, want) {
		t.Errorf("delivered %v, want %v", got, want)
	}
	if r.enqueue(Event{Payload: "late"}) {
		t.Error("enqueue after close should be rejected")
	}
}

func TestRelay_ContinuesAfterError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	n := &recordingNotifier{err: errors.New("boom")}
	r := newRelay(n, "t", zerolog.New(io.Discard))
	r.enqueue(Event{Payload: "a"})
	r.enqueue(Event{Payload: "b"})
	r.close()

	if got := n.snapshot(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("delivered %v, want [a b]", got)
	}
}

func TestRelay_CloseIdle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := newRelay(&recordingNotifier{}, "t", zerolog.New(io.Discard))
	done := make(chan struct{})
	go func() {
		r.close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close on idle relay did not return")
	}
}
