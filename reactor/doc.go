// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness-notification engine driven by the
// selector, with cross-platform implementations for epoll (Linux) and
// kqueue (Darwin/BSD). The engine-side one-shot timer uses timerfd on
// Linux and EVFILT_TIMER on kqueue, so a timer fire interrupts the wait
// like any other event.
package reactor
