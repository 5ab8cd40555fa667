// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package main is the entry point for camwatch.

camwatch keeps a websocket subscription to a Raspberry Pi's motion-alert
endpoint alive, turns every message into a motion alert, and exposes a local
control API for the Pi's camera REST service.

# Application Architecture

	RootSupervisor ("camwatch")
	├── DataSupervisor ("data-layer")
	│   └── Settings store GC
	├── MotionSupervisor ("motion-layer")
	│   └── Boot service (start from stored endpoint, arm watchdog)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Alert hub (websocket subscribers)
	└── APISupervisor ("api-layer")
	    └── HTTP server (control API, /metrics)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output
 3. Settings store: BadgerDB, seeded from SERVER_IP and RASPBERRY_IP
 4. Notifiers: log, webhook and alert hub fan-out
 5. Motion supervisor: gorilla/websocket transport with a ticker watchdog
 6. Camera client: Pi REST API behind a circuit breaker
 7. Supervisor tree and HTTP server

# Signal Handling

SIGINT and SIGTERM cancel the tree. After it stops the motion supervisor is
closed, the transport goroutines are awaited and the settings store is
closed, in that order.

# Example Usage

	export SERVER_IP=192.168.1.50
	export RASPBERRY_IP=192.168.1.50
	export STORE_PATH=/var/lib/camwatch
	./camwatch

	curl -X PUT localhost:5080/api/v1/settings/endpoint -d '{"host":"192.168.1.60"}'

# API Documentation

The control API is described with swag annotations on the handlers and
served at /swagger/index.html. Regenerate the docs package with go generate
after changing an annotation.
*/
//
// @title Camwatch API
// @version 1.0
// @description Control API for the camwatch motion listener and the Raspberry Pi camera service.
// @description
// @description All responses use the same envelope:
// @description {"status": "success|error", "data": ..., "metadata": {"timestamp": "...", "request_id": "..."}, "error": {"code": "...", "message": "..."}}
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/camwatch/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:5080
// @BasePath /api/v1
// @schemes http
//
// @tag.name Health
// @tag.description Liveness and health of the listener, store and alert hub
//
// @tag.name Motion
// @tag.description Motion websocket listener control
//
// @tag.name Settings
// @tag.description Persisted motion endpoint and Pi API host
//
// @tag.name Cameras
// @tag.description Raspberry Pi camera REST API proxy
//
// @tag.name Alerts
// @tag.description Live motion alert feed for dashboards
package main

//go:generate swag init -g doc.go -d .,../../internal/api,../../internal/models,../../internal/motion,../../internal/cameras -o ../../docs --outputTypes go --parseInternal
