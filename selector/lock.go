// File: selector/lock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reentrant critical section keyed by goroutine identity. Go has no
// recursive mutex, so reentrancy is modeled explicitly as lock + holder:
// a goroutine that already holds the lock runs the operation directly, a
// non-holder blocks, records itself and releases unconditionally.

package selector

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// reentrantLock serializes selector operations while letting the holder
// nest further operations, e.g. a readiness visitor registering a new
// descriptor from inside a select call.
type reentrantLock struct {
	mu     sync.Mutex
	holder atomic.Uint64 // goroutine id of the holder, 0 when unheld
}

// run executes fn inside the critical section. The release is deferred,
// so a failing fn never leaves the lock held.
func (l *reentrantLock) run(fn func() error) error {
	id := goroutineID()
	if l.holder.Load() == id {
		return fn()
	}

	l.mu.Lock()
	l.holder.Store(id)
	defer func() {
		l.holder.Store(0)
		l.mu.Unlock()
	}()
	return fn()
}

// goroutineID extracts the current goroutine's id from its stack header
// ("goroutine N [running]:"). Only equality against the stored holder is
// ever needed, never ordering.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for _, c := range buf[len("goroutine "):n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
