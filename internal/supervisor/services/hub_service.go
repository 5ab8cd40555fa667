// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package services

import (
	"context"
)

// ContextHub matches notify.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// AlertHubService runs the alert websocket hub. The hub closes every
// subscriber when it returns, and a restarted hub accepts new ones.
type AlertHubService struct {
	hub  ContextHub
	name string
}

// NewAlertHubService wraps hub.
func NewAlertHubService(hub ContextHub) *AlertHubService {
	return &AlertHubService{
		hub:  hub,
		name: "alert-hub",
	}
}

// Serve implements suture.Service.
func (s *AlertHubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (s *AlertHubService) String() string {
	return s.name
}
