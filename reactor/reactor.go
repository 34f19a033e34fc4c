// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral aliases and shared constants for the notification
// engine. The canonical types live in the api package so that test
// doubles can implement the engine without importing this package.

package reactor

import "github.com/momentics/hioload-selector/api"

// Aliases for the engine contract defined in api.
type (
	Reactor     = api.Reactor
	FDEventType = api.FDEventType
	FDCallback  = api.FDCallback
)

// Event mask values re-exported for callers of this package.
const (
	EventRead  = api.EventRead
	EventWrite = api.EventWrite
	EventError = api.EventError
)

// maxEvents bounds the number of kernel events fetched per RunOnce.
const maxEvents = 128
