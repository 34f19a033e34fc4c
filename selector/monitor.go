// File: selector/monitor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package selector

import (
	"github.com/momentics/hioload-selector/api"
)

// Monitor is the registration record binding a file descriptor, its
// interest set and its most recently observed readiness. Monitors are
// created by Selector.Register and handed back to the caller; the
// back-reference to the owning selector does not keep it alive.
type Monitor struct {
	fd        uintptr
	interests api.FDEventType
	readiness api.FDEventType
	sel       *Selector
	closed    bool
}

// FD returns the registered file descriptor.
func (m *Monitor) FD() uintptr { return m.fd }

// Interests returns the interest set the monitor was registered with.
func (m *Monitor) Interests() api.FDEventType { return m.interests }

// Readiness returns the readiness mask observed during the last select
// iteration that reported this monitor.
func (m *Monitor) Readiness() api.FDEventType { return m.readiness }

// Readable reports whether the last observed readiness includes reading.
func (m *Monitor) Readable() bool { return m.readiness.Readable() }

// Writable reports whether the last observed readiness includes writing.
func (m *Monitor) Writable() bool { return m.readiness.Writable() }

// Closed reports whether the monitor has been closed.
func (m *Monitor) Closed() bool { return m.closed }

// Close detaches the monitor from the notification engine. With
// deregister true the selector's table entry is removed as well;
// Selector.Deregister passes false because it has already removed the
// entry and must not re-enter itself.
func (m *Monitor) Close(deregister bool) {
	_ = m.sel.lock.run(func() error {
		if m.closed {
			return nil
		}
		if deregister {
			m.sel.table.Delete(m.fd)
		}
		m.closeLocked()
		return nil
	})
}

// closeLocked requires the selector lock. After the selector itself is
// closed the engine is gone, so only the flag is flipped.
func (m *Monitor) closeLocked() {
	if m.closed {
		return
	}
	m.closed = true
	if !m.sel.closed.Load() {
		_ = m.sel.engine.Deregister(m.fd)
	}
}
