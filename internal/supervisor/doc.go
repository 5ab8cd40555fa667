// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package supervisor runs camwatch's long-lived services under a suture v4 tree.

The tree is organized into layers so a failing service restarts without
taking the others down:

	RootSupervisor ("camwatch")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService (if STORE_GC_INTERVAL > 0)
	├── MotionSupervisor ("motion-layer")
	│   └── motion.BootService
	├── MessagingSupervisor ("messaging-layer")
	│   └── AlertHubService (if NOTIFY_HUB_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if HTTP_ENABLED)

The motion supervisor itself is not a suture service: it owns its own
goroutines and is closed by main after the tree stops. The boot service
only performs the start-up connect and arms the watchdog.

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddMotionService(motion.NewBootService(sup, settings))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Supervisor.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
*/
package supervisor
