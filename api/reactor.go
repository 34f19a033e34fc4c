// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the abstract interface for the OS readiness-notification engine
// driven by the selector, regardless of specific polling mechanism used
// (epoll on Linux, kqueue on *BSD/Darwin).

package api

import "time"

// Reactor is the notification engine behind a selector. One Reactor is
// exclusively owned by one selector; none of its methods are safe for
// concurrent use and the selector serializes all calls.
type Reactor interface {
	// Register associates a file descriptor with the engine for the given
	// event mask. cb fires from inside RunOnce whenever fd is ready.
	Register(fd uintptr, events FDEventType, cb FDCallback) error

	// Deregister removes a file descriptor from the engine's watch list.
	Deregister(fd uintptr) error

	// ArmTimer schedules a one-shot timer. A fire interrupts RunOnce like
	// any other event; it invokes no callback. Re-arming replaces the
	// previous schedule.
	ArmTimer(d time.Duration) error

	// DisarmTimer cancels a pending timer, if any.
	DisarmTimer() error

	// RunOnce blocks until at least one registered descriptor is ready or
	// the armed timer fires, dispatches the callbacks for every ready
	// descriptor exactly once, and returns.
	RunOnce() error

	// Close releases the engine's kernel resources.
	Close() error
}
