// File: selector/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The select run loop: timeout validation, timer arming, one engine
// iteration under the chosen wait strategy, and result aggregation.

package selector

import (
	"runtime"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-selector/api"
)

// timerSlack nudges a requested timeout off zero; some engines
// special-case zero-duration timers.
const timerSlack = 100 * time.Microsecond

// Select blocks until at least one registered descriptor becomes ready
// or Wakeup is called, and returns the ready Monitors. A nil slice means
// no activity (interruption without readiness).
func (s *Selector) Select() ([]*Monitor, error) {
	return s.selectMonitors(0, false)
}

// SelectFor is Select with an upper bound on the wait. timeout zero
// polls; a negative timeout fails with api.ErrInvalidTimeout before any
// engine iteration.
func (s *Selector) SelectFor(timeout time.Duration) ([]*Monitor, error) {
	if timeout < 0 {
		return nil, api.ErrInvalidTimeout
	}
	return s.selectMonitors(timeout, true)
}

// SelectEach blocks like Select but streams each ready Monitor to fn
// instead of building a collection, and returns the number of ready
// descriptors; 0 means no activity. fn runs with the selector lock held
// and may call Register and Deregister.
func (s *Selector) SelectEach(fn func(*Monitor)) (int, error) {
	return s.selectEach(0, false, fn)
}

// SelectEachFor is SelectEach with an upper bound on the wait.
func (s *Selector) SelectEachFor(timeout time.Duration, fn func(*Monitor)) (int, error) {
	if timeout < 0 {
		return 0, api.ErrInvalidTimeout
	}
	return s.selectEach(timeout, true, fn)
}

func (s *Selector) selectMonitors(timeout time.Duration, hasTimeout bool) ([]*Monitor, error) {
	var out []*Monitor
	err := s.lock.run(func() error {
		if s.closed.Load() {
			return api.ErrSelectorClosed
		}

		s.pending = queue.New()
		defer func() { s.pending = nil }()

		n, err := s.run(timeout, hasTimeout)
		if err != nil || n == 0 {
			return err
		}

		out = make([]*Monitor, 0, s.pending.Length())
		for s.pending.Length() > 0 {
			out = append(out, s.pending.Remove().(*Monitor))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Selector) selectEach(timeout time.Duration, hasTimeout bool, fn func(*Monitor)) (int, error) {
	var n int
	err := s.lock.run(func() error {
		if s.closed.Load() {
			return api.ErrSelectorClosed
		}

		s.visitor = fn
		defer func() { s.visitor = nil }()

		var err error
		n, err = s.run(timeout, hasTimeout)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// run drives exactly one notification-engine iteration and returns the
// number of descriptors that became ready during it.
func (s *Selector) run(timeout time.Duration, hasTimeout bool) (int, error) {
	s.selecting = true
	s.readyCount = 0

	var err error
	switch s.cfg.Wait {
	case WaitCooperative:
		err = s.waitCooperative(timeout, hasTimeout)
	default:
		err = s.waitBlocking(timeout, hasTimeout)
	}
	_ = s.engine.DisarmTimer()

	n := s.readyCount
	s.selecting = false
	s.readyCount = 0

	if err != nil {
		return 0, err
	}
	return n, nil
}

// waitBlocking parks in the engine wait; the timeout, if any, is
// engine-enforced through the one-shot timer.
func (s *Selector) waitBlocking(timeout time.Duration, hasTimeout bool) error {
	if hasTimeout {
		if err := s.engine.ArmTimer(timeout + timerSlack); err != nil {
			return err
		}
	} else {
		if err := s.engine.DisarmTimer(); err != nil {
			return err
		}
	}
	return s.engine.RunOnce()
}

// waitCooperative iterates the engine in PollInterval slices, yielding
// between iterations, until a wakeup or ready event lands or the
// requested timeout elapses by wall clock. Effective timeout latency is
// bounded by timeout plus one slice.
func (s *Selector) waitCooperative(timeout time.Duration, hasTimeout bool) error {
	started := time.Now()
	for s.selecting && s.readyCount == 0 {
		if err := s.engine.ArmTimer(s.cfg.PollInterval); err != nil {
			return err
		}
		if err := s.engine.RunOnce(); err != nil {
			return err
		}
		runtime.Gosched()

		if hasTimeout && time.Since(started) >= timeout {
			break
		}
	}
	return nil
}
