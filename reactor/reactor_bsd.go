//go:build darwin || dragonfly || freebsd || netbsd || openbsd
// +build darwin dragonfly freebsd netbsd openbsd

// File: reactor/reactor_bsd.go
// Author: momentics <momentics@gmail.com>
//
// kqueue(2)-based notification engine for Darwin and the BSDs. The
// one-shot timer is an EVFILT_TIMER kevent in the same queue. kqueue
// reports read and write readiness as separate kevents, so RunOnce
// coalesces them per descriptor before dispatching.

package reactor

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-selector/api"
)

// timerIdent is the EVFILT_TIMER ident. Idents are scoped per filter, so
// it cannot collide with a watched descriptor.
const timerIdent = 1

// kqueueReactor implements api.Reactor using kqueue.
type kqueueReactor struct {
	kq        int
	callbacks sync.Map // map[uintptr]api.FDCallback
	events    []unix.Kevent_t
}

// New constructs the platform notification engine for Darwin/BSD.
func New() (api.Reactor, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue create: %w", err)
	}
	return &kqueueReactor{
		kq:     kq,
		events: make([]unix.Kevent_t, maxEvents),
	}, nil
}

// Register adds the read/write filters for a file descriptor.
func (r *kqueueReactor) Register(fd uintptr, events api.FDEventType, cb api.FDCallback) error {
	changes := make([]unix.Kevent_t, 0, 2)
	if events.Readable() {
		var k unix.Kevent_t
		unix.SetKevent(&k, int(fd), unix.EVFILT_READ, unix.EV_ADD)
		changes = append(changes, k)
	}
	if events.Writable() {
		var k unix.Kevent_t
		unix.SetKevent(&k, int(fd), unix.EVFILT_WRITE, unix.EV_ADD)
		changes = append(changes, k)
	}

	if _, err := unix.Kevent(r.kq, changes, nil, nil); err != nil {
		return fmt.Errorf("kevent add: %w", err)
	}

	r.callbacks.Store(fd, cb)
	return nil
}

// Deregister removes both filters for a file descriptor. A filter that
// was never added reports ENOENT, which is not an error here.
func (r *kqueueReactor) Deregister(fd uintptr) error {
	for _, filter := range []int{unix.EVFILT_READ, unix.EVFILT_WRITE} {
		var k unix.Kevent_t
		unix.SetKevent(&k, int(fd), filter, unix.EV_DELETE)
		if _, err := unix.Kevent(r.kq, []unix.Kevent_t{k}, nil, nil); err != nil && err != unix.ENOENT {
			return fmt.Errorf("kevent delete: %w", err)
		}
	}
	r.callbacks.Delete(fd)
	return nil
}

// ArmTimer schedules a one-shot EVFILT_TIMER kevent after d.
func (r *kqueueReactor) ArmTimer(d time.Duration) error {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	var k unix.Kevent_t
	unix.SetKevent(&k, timerIdent, unix.EVFILT_TIMER, unix.EV_ADD|unix.EV_ONESHOT)
	k.Data = ms
	if _, err := unix.Kevent(r.kq, []unix.Kevent_t{k}, nil, nil); err != nil {
		return fmt.Errorf("kevent timer add: %w", err)
	}
	return nil
}

// DisarmTimer cancels a pending timer kevent, if one is armed.
func (r *kqueueReactor) DisarmTimer() error {
	var k unix.Kevent_t
	unix.SetKevent(&k, timerIdent, unix.EVFILT_TIMER, unix.EV_DELETE)
	if _, err := unix.Kevent(r.kq, []unix.Kevent_t{k}, nil, nil); err != nil && err != unix.ENOENT {
		return fmt.Errorf("kevent timer delete: %w", err)
	}
	return nil
}

// RunOnce blocks in kevent until at least one event arrives, coalesces
// readiness per descriptor and dispatches each callback exactly once.
func (r *kqueueReactor) RunOnce() error {
	for {
		n, err := unix.Kevent(r.kq, nil, r.events, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("kevent wait: %w", err)
		}

		order := make([]uintptr, 0, n)
		ready := make(map[uintptr]api.FDEventType, n)
		for i := 0; i < n; i++ {
			ev := r.events[i]
			if ev.Filter == unix.EVFILT_TIMER {
				continue
			}

			fd := uintptr(ev.Ident)
			events := ready[fd]
			if events == 0 {
				order = append(order, fd)
			}
			switch ev.Filter {
			case unix.EVFILT_READ:
				events |= api.EventRead
			case unix.EVFILT_WRITE:
				events |= api.EventWrite
			}
			if ev.Flags&unix.EV_ERROR != 0 {
				events |= api.EventError
			}
			ready[fd] = events
		}

		for _, fd := range order {
			val, ok := r.callbacks.Load(fd)
			if !ok {
				continue
			}
			val.(api.FDCallback)(fd, ready[fd])
		}
		return nil
	}
}

// Close releases the kqueue descriptor.
func (r *kqueueReactor) Close() error {
	return unix.Close(r.kq)
}
