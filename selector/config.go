// File: selector/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package selector

import (
	"time"

	"github.com/momentics/hioload-selector/api"
)

// WaitMode selects how the run loop waits for readiness. It is resolved
// once at construction; the two strategies are interchangeable behind the
// same run-loop code path.
type WaitMode int

const (
	// WaitBlocking parks the calling goroutine inside the engine wait
	// until an event, timer fire or wakeup arrives.
	WaitBlocking WaitMode = iota

	// WaitCooperative never blocks for more than one PollInterval slice
	// and yields to the scheduler between engine iterations. It trades
	// latency and CPU for not stalling co-resident work on the same
	// execution thread.
	WaitCooperative
)

// defaultPollInterval is the engine iteration slice under WaitCooperative.
const defaultPollInterval = 10 * time.Millisecond

// Config carries selector construction parameters.
type Config struct {
	// Wait picks the run-loop wait strategy. Zero value is WaitBlocking.
	Wait WaitMode

	// PollInterval is the slice length for WaitCooperative. Values <= 0
	// fall back to the 10ms default.
	PollInterval time.Duration

	// Reactor overrides the platform notification engine. Nil selects the
	// platform default (epoll/kqueue). Used by tests with the fake engine.
	Reactor api.Reactor
}

// DefaultConfig returns the blocking-wait configuration.
func DefaultConfig() Config {
	return Config{
		Wait:         WaitBlocking,
		PollInterval: defaultPollInterval,
	}
}
