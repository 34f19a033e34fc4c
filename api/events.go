// File: api/events.go
// Package api defines readiness event types for hioload-selector.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// FDEventType is a bit mask describing readiness of a file descriptor.
type FDEventType uint32

const (
	// EventRead indicates the descriptor is readable.
	EventRead FDEventType = 1 << iota

	// EventWrite indicates the descriptor is writable.
	EventWrite

	// EventError indicates an error or hangup condition on the descriptor.
	EventError
)

// Readable reports whether the mask carries the read bit.
func (e FDEventType) Readable() bool { return e&EventRead != 0 }

// Writable reports whether the mask carries the write bit.
func (e FDEventType) Writable() bool { return e&EventWrite != 0 }

// HasError reports whether the mask carries the error bit.
func (e FDEventType) HasError() bool { return e&EventError != 0 }

// FDCallback is invoked by a Reactor for each descriptor that became
// ready during one RunOnce iteration, at most once per descriptor per
// iteration.
type FDCallback func(fd uintptr, events FDEventType)
