// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package selector implements a readiness-based I/O multiplexer on top of
// the platform notification engine from the reactor package.
//
// A Selector owns a registration table of Monitors, one per watched file
// descriptor. Callers block in Select until at least one descriptor is
// ready, a timeout elapses, or another goroutine calls Wakeup. All
// registration and select calls are serialized by a reentrant lock, so a
// readiness visitor may register and deregister descriptors from inside a
// select call.
package selector
