// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*EventBusService)(nil)

type fakeBus struct {
	mu          sync.Mutex
	startErr    error
	running     bool
	starts      int
	shutdowns   int
	started     chan struct{}
	shutdownDDL bool
}

func (b *fakeBus) Start(context.Context) error {
	b.mu.Lock()
	b.starts++
	if b.startErr == nil {
		b.running = true
	}
	b.mu.Unlock()
	if b.started != nil {
		b.started <- struct{}{}
	}
	return b.startErr
}

func (b *fakeBus) Shutdown(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdowns++
	b.running = false
	_, b.shutdownDDL = ctx.Deadline()
}

func (b *fakeBus) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func TestEventBusService_String(t *testing.T) {
	t.Parallel()

	svc := NewEventBusService(&fakeBus{}, 0)
	if svc.String() != "event-bus" {
		t.Errorf("String() = %q, want event-bus", svc.String())
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want 10s", svc.shutdownTimeout)
	}
}

func TestEventBusService_StartsAndShutsDown(t *testing.T) {
	t.Parallel()

	bus := &fakeBus{started: make(chan struct{}, 1)}
	svc := NewEventBusService(bus, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-bus.started
	if !bus.IsRunning() {
		t.Fatal("bus not running after Start")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.starts != 1 || bus.shutdowns != 1 {
		t.Errorf("starts = %d shutdowns = %d, want 1 and 1", bus.starts, bus.shutdowns)
	}
	if !bus.shutdownDDL {
		t.Error("Shutdown context has no deadline")
	}
	if bus.running {
		t.Error("bus still running after Serve returned")
	}
}

func TestEventBusService_StartError(t *testing.T) {
	t.Parallel()

	bus := &fakeBus{startErr: errors.New("router failed")}
	err := NewEventBusService(bus, time.Second).Serve(context.Background())
	if !errors.Is(err, bus.startErr) {
		t.Fatalf("Serve() = %v, want wrapped start error", err)
	}
	if bus.shutdowns != 0 {
		t.Errorf("shutdowns = %d, want 0", bus.shutdowns)
	}
}
