// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package selector

import (
	"testing"

	"github.com/momentics/hioload-selector/api"
)

func TestMonitorAccessors(t *testing.T) {
	s, fr := newFakeSelector(t)

	m, err := s.Register(11, api.EventRead|api.EventWrite)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.FD() != 11 {
		t.Errorf("FD() = %d, want 11", m.FD())
	}
	if m.Interests() != api.EventRead|api.EventWrite {
		t.Errorf("Interests() = %v", m.Interests())
	}
	if m.Readable() || m.Writable() {
		t.Error("fresh monitor reports readiness")
	}

	fr.MakeReady(11, api.EventWrite)
	if _, err := s.SelectFor(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !m.Writable() || m.Readable() {
		t.Errorf("readiness after event = %v, want write only", m.Readiness())
	}
}

func TestMonitorCloseDeregisters(t *testing.T) {
	s, fr := newFakeSelector(t)

	m, err := s.Register(21, api.EventRead)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	m.Close(true)
	if !m.Closed() {
		t.Error("monitor not closed")
	}
	if s.Registered(21) {
		t.Error("descriptor still in table after Close(true)")
	}
	if fr.Watching(21) {
		t.Error("engine still watching fd after Close(true)")
	}

	// Close is idempotent.
	m.Close(true)
}

func TestMonitorCloseAfterSelectorClose(t *testing.T) {
	s, _ := newFakeSelector(t)

	m, err := s.Register(31, api.EventRead)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Must not touch the destroyed engine.
	m.Close(true)
	if !m.Closed() {
		t.Error("monitor not closed")
	}
}
