// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package services adapts camwatch components to suture.Service.

Each wrapper translates a component's lifecycle into Serve(ctx) and names
itself through fmt.Stringer so sutureslog can identify it:

  - HTTPServerService: ListenAndServe/Shutdown of the control API server
  - AlertHubService: RunWithContext of the alert websocket hub
  - StoreGCService: periodic value log GC of the settings store

The wrappers depend on small interfaces rather than the concrete packages so
they can be tested with doubles.
*/
package services
