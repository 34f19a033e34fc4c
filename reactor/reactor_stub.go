//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd
// +build !linux,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"github.com/momentics/hioload-selector/api"
)

// New returns an error for platforms without a notification engine.
func New() (api.Reactor, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "reactor: this platform is not supported").
		WithCause(api.ErrNotSupported)
}
