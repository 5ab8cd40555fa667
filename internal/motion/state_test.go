// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{Disconnected, Connecting, true},
		{Disconnected, Connected, false},
		{Disconnected, Failed, false},
		{Connecting, Connected, true},
		{Connecting, Failed, true},
		{Connecting, Disconnected, true},
		{Connected, Disconnected, true},
		{Connected, Failed, true},
		{Connected, Connecting, false},
		{Failed, Connecting, true},
		{Failed, Disconnected, true},
		{Failed, Connected, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if Connected.String() != "connected" {
		t.Errorf("Connected.String() = %q", Connected.String())
	}
	if State(42).String() != "state(42)" {
		t.Errorf("unknown state String() = %q", State(42).String())
	}
	text, err := Failed.MarshalText()
	if err != nil || string(text) != "failed" {
		t.Errorf("MarshalText() = %q, %v", text, err)
	}
}
