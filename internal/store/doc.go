// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

// Package store persists the two Pi addresses camwatch needs in BadgerDB:
// serverIp, the host of the motion-event socket, and raspberry_ip, the host of
// the camera REST API. The two are scoped separately even though they usually
// point at the same device.
package store
