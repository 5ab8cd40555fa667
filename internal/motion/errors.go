// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"errors"
	"fmt"
)

// CloseNormalClosure is the websocket close code sent on Stop and replacement.
const CloseNormalClosure = 1000

// ErrMissingEndpoint is logged when Start is called without an endpoint.
// It is never fatal: the supervisor stays where it is until a host is set.
var ErrMissingEndpoint = errors.New("motion endpoint is not configured")

// ConnectError reports that a connection to the endpoint could not be
// established (unreachable, refused, handshake timeout).
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// PeerClosedError reports that the remote side closed an established or
// pending connection.
type PeerClosedError struct {
	Code   int
	Reason string
}

func (e *PeerClosedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("closed by peer (code %d)", e.Code)
	}
	return fmt.Sprintf("closed by peer (code %d): %s", e.Code, e.Reason)
}

// failureKind labels an error for metrics.
func failureKind(err error) string {
	var connectErr *ConnectError
	var peerErr *PeerClosedError
	switch {
	case errors.As(err, &connectErr):
		return "connect"
	case errors.As(err, &peerErr):
		return "peer_closed"
	default:
		return "transport"
	}
}
