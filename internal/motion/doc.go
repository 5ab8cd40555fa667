// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

/*
Package motion keeps a persistent subscription to the Pi's motion-event socket
(ws://<host>:5000/ws) and turns every text payload into a user-visible alert.

# Components

  - Supervisor: the connection state machine, epoch bookkeeping and watchdog
  - Transport / WebsocketTransport: asynchronous connection primitive
  - Scheduler / TickerScheduler: the repeating watchdog timer
  - relay: single-goroutine, unbounded FIFO in front of the Notifier
  - BootService: suture service that re-arms the supervisor at process start

# State Machine

	Disconnected --Start--> Connecting --open--> Connected
	Connecting   --error/peer close--> Failed
	Connected    --peer close--> Disconnected
	Connected    --error--> Failed
	Failed       --watchdog tick or Start--> Connecting
	any          --Stop--> Disconnected

Transport callbacks never reconnect. A failed or closed connection is retried
on the next watchdog tick (default every 10 minutes) or on an explicit Start.
There is no backoff: a tick always restarts a connection that is not
Connected to the stored endpoint, and never touches one that is.

# Concurrency

Start, Stop, watchdog ticks and transport callbacks all serialize on one
mutex. Every Open carries an epoch; Stop and endpoint replacement advance
the epoch, so a late callback from a cancelled attempt is dropped instead of
resurrecting a stopped supervisor. The old socket is always closed before a
new one is opened, so at most one handle is live at a time.

Payloads are enqueued under the lock and delivered by the relay goroutine in
arrival order without loss or deduplication. Enqueueing is a slice append and
never waits for the notifier.

# Example

	sup := motion.NewSupervisor(motion.DefaultConfig(),
	    motion.NewWebsocketTransport(motion.DefaultWebsocketConfig()),
	    motion.TickerScheduler{}, settings, notifier)
	defer sup.Close()

	sup.Start("10.0.0.5")
*/
package motion
