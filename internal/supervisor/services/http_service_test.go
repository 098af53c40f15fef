// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// fakeHTTPServer blocks in ListenAndServe until Shutdown is called, unless
// listenErr is set, in which case it fails immediately.
type fakeHTTPServer struct {
	mu          sync.Mutex
	listenErr   error
	shutdownErr error
	listening   chan struct{}
	closed      chan struct{}
	closeOnce   sync.Once
	listens     int
	shutdowns   int
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{
		listening: make(chan struct{}, 8),
		closed:    make(chan struct{}),
	}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.mu.Lock()
	f.listens++
	err := f.listenErr
	f.mu.Unlock()

	select {
	case f.listening <- struct{}{}:
	default:
	}
	if err != nil {
		return err
	}
	<-f.closed
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.mu.Lock()
	f.shutdowns++
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.closed) })
	return f.shutdownErr
}

func (f *fakeHTTPServer) counts() (listens, shutdowns int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listens, f.shutdowns
}

func TestNewHTTPServerService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"explicit", 3 * time.Second, 3 * time.Second},
		{"zero falls back", 0, 10 * time.Second},
		{"negative falls back", -time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewHTTPServerService(newFakeHTTPServer(), tt.timeout, zerolog.Nop())
			if svc.shutdownTimeout != tt.want {
				t.Errorf("shutdownTimeout = %v, want %v", svc.shutdownTimeout, tt.want)
			}
			if svc.String() != "http-server" {
				t.Errorf("String() = %q, want http-server", svc.String())
			}
		})
	}
}

func TestHTTPServerService_ServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.listening
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if listens, shutdowns := server.counts(); listens != 1 || shutdowns != 1 {
		t.Errorf("listens = %d shutdowns = %d, want 1 and 1", listens, shutdowns)
	}
}

func TestHTTPServerService_ServeListenError(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Fatalf("Serve() = %v, want wrapped listen error", err)
	}
	if _, shutdowns := server.counts(); shutdowns != 0 {
		t.Errorf("shutdowns = %d, want 0", shutdowns)
	}
}

func TestHTTPServerService_ServeShutdownError(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	server.shutdownErr = errors.New("deadline exceeded draining connections")
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.listening
	cancel()

	err := <-done
	if !errors.Is(err, server.shutdownErr) {
		t.Errorf("Serve() = %v, want wrapped shutdown error", err)
	}
}

func TestHTTPServerService_RestartedBySupervisor(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	server.listenErr = errors.New("bind failed")
	svc := NewHTTPServerService(server, time.Second, zerolog.Nop())

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 100,
		FailureBackoff:   time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-server.listening:
		case <-time.After(2 * time.Second):
			t.Fatalf("listen attempt %d did not happen", i+1)
		}
	}

	cancel()
	<-errCh

	if listens, _ := server.counts(); listens < 2 {
		t.Errorf("listens = %d, want at least 2", listens)
	}
}
