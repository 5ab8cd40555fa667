// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package motion

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel must not wait for a running fn to finish.
type Scheduler interface {
	ScheduleRepeating(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler is a Scheduler backed by time.Ticker. Ticks that fire while
// fn is still running are dropped.
type TickerScheduler struct{}

// ScheduleRepeating implements Scheduler.
func (TickerScheduler) ScheduleRepeating(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
