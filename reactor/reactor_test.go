//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd
// +build linux darwin dragonfly freebsd netbsd openbsd

// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// reactor_test.go — engine-level tests against the real platform
// mechanism: readiness dispatch, timer interruption, deregistration.

package reactor

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-selector/api"
)

func newTestReactor(t *testing.T) api.Reactor {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("new reactor: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func testPipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestRunOnceDispatchesReadReadiness(t *testing.T) {
	eng := newTestReactor(t)
	r, w := testPipe(t)

	var gotFD uintptr
	var gotEvents api.FDEventType
	var calls int
	err := eng.Register(uintptr(r), api.EventRead, func(fd uintptr, events api.FDEventType) {
		calls++
		gotFD = fd
		gotEvents = events
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := unix.Write(w, []byte{1}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Bound the wait in case dispatch never happens.
	if err := eng.ArmTimer(time.Second); err != nil {
		t.Fatalf("arm timer: %v", err)
	}
	if err := eng.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if calls != 1 {
		t.Fatalf("callback fired %d times, want 1", calls)
	}
	if gotFD != uintptr(r) {
		t.Errorf("callback fd = %d, want %d", gotFD, r)
	}
	if !gotEvents.Readable() {
		t.Errorf("callback events = %v, want readable", gotEvents)
	}
}

func TestTimerInterruptsRunOnce(t *testing.T) {
	eng := newTestReactor(t)
	r, _ := testPipe(t)

	fired := false
	if err := eng.Register(uintptr(r), api.EventRead, func(uintptr, api.FDEventType) {
		fired = true
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	started := time.Now()
	if err := eng.ArmTimer(30 * time.Millisecond); err != nil {
		t.Fatalf("arm timer: %v", err)
	}
	if err := eng.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}
	elapsed := time.Since(started)

	if fired {
		t.Error("callback fired without readiness")
	}
	if elapsed < 20*time.Millisecond || elapsed > time.Second {
		t.Errorf("timer interruption after %v, want ~30ms", elapsed)
	}
}

func TestDeregisteredDescriptorStaysSilent(t *testing.T) {
	eng := newTestReactor(t)
	r, w := testPipe(t)

	if err := eng.Register(uintptr(r), api.EventRead, func(uintptr, api.FDEventType) {
		t.Error("callback fired after deregister")
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := eng.Deregister(uintptr(r)); err != nil {
		t.Fatalf("deregister: %v", err)
	}

	if _, err := unix.Write(w, []byte{1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := eng.ArmTimer(50 * time.Millisecond); err != nil {
		t.Fatalf("arm timer: %v", err)
	}
	if err := eng.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}
}

func TestRearmReplacesPendingTimer(t *testing.T) {
	eng := newTestReactor(t)

	if err := eng.ArmTimer(10 * time.Second); err != nil {
		t.Fatalf("arm timer: %v", err)
	}
	if err := eng.ArmTimer(30 * time.Millisecond); err != nil {
		t.Fatalf("re-arm timer: %v", err)
	}

	started := time.Now()
	if err := eng.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Errorf("run once returned after %v, re-arm did not shorten the timer", elapsed)
	}
}

func TestWriteReadinessReported(t *testing.T) {
	eng := newTestReactor(t)
	_, w := testPipe(t)

	var gotEvents api.FDEventType
	if err := eng.Register(uintptr(w), api.EventWrite, func(_ uintptr, events api.FDEventType) {
		gotEvents = events
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// An empty pipe's write end is immediately writable.
	if err := eng.ArmTimer(time.Second); err != nil {
		t.Fatalf("arm timer: %v", err)
	}
	if err := eng.RunOnce(); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if !gotEvents.Writable() {
		t.Errorf("events = %v, want writable", gotEvents)
	}
}
