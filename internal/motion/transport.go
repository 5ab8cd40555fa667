// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

// Handle identifies one connection opened by a Transport.
type Handle interface {
	// URL returns the address the handle was opened against.
	URL() string
}

// Listener receives the lifecycle of a single handle. Callbacks may arrive on
// any goroutine, but OnMessage calls for one handle are never concurrent.
// After OnClosed or OnFailed no further callbacks arrive for that handle.
type Listener interface {
	OnOpen(h Handle)
	OnMessage(h Handle, payload string)
	OnClosed(h Handle, code int, reason string)
	OnFailed(h Handle, err error)
}

// Transport opens persistent bidirectional connections.
//
// Open starts connecting in the background and returns immediately; it must
// not invoke l before returning. Close releases the handle with the given
// close code, cancels a pending connect and suppresses any further callbacks.
// Close is idempotent and may be called from inside a callback.
type Transport interface {
	Open(url string, l Listener) Handle
	Close(h Handle, code int, reason string)
}
