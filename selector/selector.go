// File: selector/selector.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Selector lifecycle, registration table and wakeup protocol. The run
// loop itself lives in run.go.

package selector

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-selector/api"
	"github.com/momentics/hioload-selector/reactor"
)

// Selector multiplexes readiness over registered file descriptors. All
// methods are safe for concurrent use; registration and select calls are
// serialized by a reentrant lock, Wakeup and Closed are lock-free.
type Selector struct {
	engine api.Reactor
	table  sync.Map // map[uintptr]*Monitor
	lock   reentrantLock
	cfg    Config

	// Self-pipe wakeup channel. The write end is the only resource
	// intentionally touched without the lock: a wakeup is a single byte
	// write and the read side drains idempotently.
	wakeupReader int
	wakeupWriter int

	closed atomic.Bool

	// Iteration-scoped state, touched only with the lock held. pending
	// and visitor exist only for the duration of one select call.
	selecting  bool
	readyCount int
	pending    *queue.Queue
	visitor    func(*Monitor)
}

// New creates a Selector over the platform notification engine with the
// default (blocking) configuration.
func New() (*Selector, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Selector with an explicit configuration. A
// failure to create the engine or the wakeup pipe aborts construction.
func NewWithConfig(cfg Config) (*Selector, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	engine := cfg.Reactor
	if engine == nil {
		var err error
		engine, err = reactor.New()
		if err != nil {
			return nil, fmt.Errorf("selector: create reactor: %w", err)
		}
	}

	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		_ = engine.Close()
		return nil, fmt.Errorf("selector: wakeup pipe: %w", err)
	}
	// The read end must never block the drain; the write end must never
	// block a wakeup against a full pipe.
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			_ = engine.Close()
			return nil, fmt.Errorf("selector: wakeup nonblock: %w", err)
		}
	}

	s := &Selector{
		engine:       engine,
		cfg:          cfg,
		wakeupReader: fds[0],
		wakeupWriter: fds[1],
	}

	if err := engine.Register(uintptr(fds[0]), api.EventRead, s.wakeupReady); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		_ = engine.Close()
		return nil, fmt.Errorf("selector: register wakeup channel: %w", err)
	}

	// Leaked selectors must still release their descriptors.
	runtime.SetFinalizer(s, (*Selector).shutdown)
	return s, nil
}

// Register creates and stores a Monitor watching fd for the given
// interest set. Registering a descriptor that is already present fails
// with api.ErrAlreadyRegistered and leaves the table unchanged.
func (s *Selector) Register(fd uintptr, interests api.FDEventType) (*Monitor, error) {
	var m *Monitor
	err := s.lock.run(func() error {
		if s.closed.Load() {
			return api.ErrSelectorClosed
		}
		if _, ok := s.table.Load(fd); ok {
			return api.ErrAlreadyRegistered
		}

		mon := &Monitor{fd: fd, interests: interests, sel: s}
		cb := func(fd uintptr, events api.FDEventType) {
			s.monitorReady(mon, events)
		}
		if err := s.engine.Register(fd, interests, cb); err != nil {
			return fmt.Errorf("selector: register fd %d: %w", fd, err)
		}

		s.table.Store(fd, mon)
		m = mon
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Deregister removes and returns the Monitor for fd, closing it without
// re-entering the table. Returns nil when fd is not registered; absence
// is not an error.
func (s *Selector) Deregister(fd uintptr) *Monitor {
	var m *Monitor
	_ = s.lock.run(func() error {
		val, ok := s.table.LoadAndDelete(fd)
		if !ok {
			return nil
		}
		m = val.(*Monitor)
		m.closeLocked()
		return nil
	})
	return m
}

// Registered reports whether fd currently has a Monitor. Best effort: it
// does not take the selector lock.
func (s *Selector) Registered(fd uintptr) bool {
	_, ok := s.table.Load(fd)
	return ok
}

// Wakeup interrupts an in-flight select call from any goroutine by
// writing one byte to the wakeup channel. Wakeups issued before the run
// loop observes them coalesce into a single interruption.
func (s *Selector) Wakeup() error {
	if s.closed.Load() {
		return api.ErrSelectorClosed
	}
	if _, err := unix.Write(s.wakeupWriter, []byte{0}); err != nil && err != unix.EAGAIN {
		// EAGAIN means the pipe already carries an undrained wakeup,
		// which is exactly the requested state.
		return fmt.Errorf("selector: wakeup: %w", err)
	}
	return nil
}

// Close destroys the notification engine and closes both wakeup channel
// endpoints. It is idempotent and never fails. Close blocks until an
// in-flight select call returns; issue a Wakeup first to interrupt one.
func (s *Selector) Close() error {
	_ = s.lock.run(func() error {
		s.shutdown()
		return nil
	})
	runtime.SetFinalizer(s, nil)
	return nil
}

// Closed reports whether the selector has been closed.
func (s *Selector) Closed() bool {
	return s.closed.Load()
}

// shutdown releases system resources exactly once. Shared by Close and
// the finalizer.
func (s *Selector) shutdown() {
	if s.engine != nil {
		_ = s.engine.Close()
		s.engine = nil
	}
	if s.closed.Load() {
		return
	}
	unix.Close(s.wakeupReader)
	unix.Close(s.wakeupWriter)
	s.closed.Store(true)
}

// monitorReady fires from inside an engine iteration, with the lock held
// by the selecting goroutine: one call per ready descriptor per
// iteration.
func (s *Selector) monitorReady(m *Monitor, events api.FDEventType) {
	s.readyCount++
	m.readiness = events
	switch {
	case s.visitor != nil:
		s.visitor(m)
	case s.pending != nil:
		s.pending.Add(m)
	}
}

// wakeupReady interrupts the in-flight iteration and drains the pipe,
// giving level-triggered rather than byte-counted wakeup behavior.
func (s *Selector) wakeupReady(uintptr, api.FDEventType) {
	s.selecting = false
	var buf [128]byte
	for {
		n, err := unix.Read(s.wakeupReader, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}
