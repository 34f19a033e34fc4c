//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based notification engine. The one-shot timer is a
// timerfd registered with the same epoll instance, so timer fires and
// descriptor readiness share a single blocking wait.

package reactor

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-selector/api"
)

// epollReactor implements api.Reactor using Linux epoll.
type epollReactor struct {
	epfd      int      // epoll file descriptor
	tfd       int      // timerfd for the engine one-shot timer
	callbacks sync.Map // map[uintptr]api.FDCallback
	events    []unix.EpollEvent
}

// New constructs the platform notification engine for Linux.
func New() (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}

	tfd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("timerfd create: %w", err)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(tfd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, tfd, &ev); err != nil {
		unix.Close(tfd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add timerfd: %w", err)
	}

	return &epollReactor{
		epfd:   epfd,
		tfd:    tfd,
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

// Register adds a file descriptor to the epoll watch list, level-triggered.
func (r *epollReactor) Register(fd uintptr, events api.FDEventType, cb api.FDCallback) error {
	var ev unix.EpollEvent
	if events.Readable() {
		ev.Events |= unix.EPOLLIN
	}
	if events.Writable() {
		ev.Events |= unix.EPOLLOUT
	}
	ev.Fd = int32(fd)

	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}

	r.callbacks.Store(fd, cb)
	return nil
}

// Deregister removes a file descriptor from the epoll watch list.
func (r *epollReactor) Deregister(fd uintptr) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	r.callbacks.Delete(fd)
	return nil
}

// ArmTimer schedules the timerfd to fire once after d.
func (r *epollReactor) ArmTimer(d time.Duration) error {
	if d < time.Nanosecond {
		d = time.Nanosecond
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(d.Nanoseconds())}
	if err := unix.TimerfdSettime(r.tfd, 0, &spec, nil); err != nil {
		return fmt.Errorf("timerfd settime: %w", err)
	}
	return nil
}

// DisarmTimer cancels any pending timerfd expiration.
func (r *epollReactor) DisarmTimer() error {
	var spec unix.ItimerSpec
	if err := unix.TimerfdSettime(r.tfd, 0, &spec, nil); err != nil {
		return fmt.Errorf("timerfd settime: %w", err)
	}
	return nil
}

// RunOnce blocks in epoll_wait until at least one event arrives, then
// dispatches callbacks for every ready descriptor and returns.
func (r *epollReactor) RunOnce() error {
	for {
		n, err := unix.EpollWait(r.epfd, r.events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("epoll wait: %w", err)
		}

		for i := 0; i < n; i++ {
			ev := r.events[i]
			fd := uintptr(ev.Fd)

			if int(ev.Fd) == r.tfd {
				r.drainTimer()
				continue
			}

			val, ok := r.callbacks.Load(fd)
			if !ok {
				continue
			}

			var events api.FDEventType
			if ev.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
				events |= api.EventRead
			}
			if ev.Events&unix.EPOLLOUT != 0 {
				events |= api.EventWrite
			}
			if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				events |= api.EventError
			}

			val.(api.FDCallback)(fd, events)
		}
		return nil
	}
}

// drainTimer consumes the timerfd expiration count. The fire itself is
// the interruption; no callback is attached.
func (r *epollReactor) drainTimer() {
	var buf [8]byte
	for {
		if n, err := unix.Read(r.tfd, buf[:]); n <= 0 || err != nil {
			return
		}
	}
}

// Close releases the epoll and timerfd descriptors.
func (r *epollReactor) Close() error {
	unix.Close(r.tfd)
	return unix.Close(r.epfd)
}
