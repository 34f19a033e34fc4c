// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides an in-memory notification engine for tests:
// readiness is injected with MakeReady and delivered on the next RunOnce,
// with no kernel involvement.
package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-selector/api"
)

type readyEvent struct {
	fd     uintptr
	events api.FDEventType
}

// Reactor is a test double for api.Reactor with deterministic dispatch.
type Reactor struct {
	mu        sync.Mutex
	callbacks map[uintptr]api.FDCallback
	queued    []readyEvent
	timer     time.Duration
	armed     bool
	runs      int
	closed    bool
}

// New creates an empty fake engine.
func New() *Reactor {
	return &Reactor{callbacks: make(map[uintptr]api.FDCallback)}
}

// MakeReady queues a readiness event for delivery on the next RunOnce.
func (r *Reactor) MakeReady(fd uintptr, events api.FDEventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, readyEvent{fd: fd, events: events})
}

// Runs reports how many RunOnce iterations have executed.
func (r *Reactor) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// IsClosed reports whether Close has been called.
func (r *Reactor) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Watching reports whether fd is currently registered.
func (r *Reactor) Watching(fd uintptr) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.callbacks[fd]
	return ok
}

func (r *Reactor) Register(fd uintptr, _ api.FDEventType, cb api.FDCallback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[fd] = cb
	return nil
}

func (r *Reactor) Deregister(fd uintptr) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.callbacks, fd)
	return nil
}

func (r *Reactor) ArmTimer(d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timer = d
	r.armed = true
	return nil
}

func (r *Reactor) DisarmTimer() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = false
	return nil
}

// RunOnce delivers all queued readiness events. With nothing queued it
// sleeps out the armed timer (or returns immediately when disarmed) to
// mimic a timer-bounded engine wait.
func (r *Reactor) RunOnce() error {
	r.mu.Lock()
	r.runs++
	pending := r.queued
	r.queued = nil
	armed, timer := r.armed, r.timer
	cbs := make(map[uintptr]api.FDCallback, len(r.callbacks))
	for fd, cb := range r.callbacks {
		cbs[fd] = cb
	}
	r.mu.Unlock()

	if len(pending) == 0 {
		if armed {
			time.Sleep(timer)
		}
		return nil
	}

	for _, ev := range pending {
		if cb, ok := cbs[ev.fd]; ok {
			cb(ev.fd, ev.events)
		}
	}
	return nil
}

func (r *Reactor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
