// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*WebSocketHubService)(nil)

type fakeHub struct {
	runs    atomic.Int32
	started chan struct{}
	err     error
}

func (h *fakeHub) RunWithContext(ctx context.Context) error {
	h.runs.Add(1)
	if h.started != nil {
		select {
		case h.started <- struct{}{}:
		default:
		}
	}
	if h.err != nil {
		return h.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService_String(t *testing.T) {
	t.Parallel()

	if got := NewWebSocketHubService(&fakeHub{}).String(); got != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", got)
	}
}

func TestWebSocketHubService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("returns context error on cancel", func(t *testing.T) {
		t.Parallel()
		hub := &fakeHub{started: make(chan struct{}, 1)}
		svc := NewWebSocketHubService(hub)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		<-hub.started
		cancel()

		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	})

	t.Run("propagates hub failure", func(t *testing.T) {
		t.Parallel()
		hub := &fakeHub{err: errors.New("hub crashed")}
		if err := NewWebSocketHubService(hub).Serve(context.Background()); !errors.Is(err, hub.err) {
			t.Errorf("Serve() = %v, want %v", err, hub.err)
		}
	})
}

func TestWebSocketHubService_RestartedBySupervisor(t *testing.T) {
	t.Parallel()

	hub := &fakeHub{started: make(chan struct{}, 16), err: errors.New("boom")}

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 100,
		FailureBackoff:   time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewWebSocketHubService(hub))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-hub.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d did not happen", i+1)
		}
	}
	cancel()
	<-errCh

	if hub.runs.Load() < 2 {
		t.Errorf("runs = %d, want at least 2", hub.runs.Load())
	}
}
