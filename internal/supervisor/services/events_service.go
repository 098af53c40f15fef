// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package services

import (
	"context"
	"fmt"
	"time"
)

// EventBusRunner is satisfied by *eventbus.Bus.
type EventBusRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// EventBusService adapts the bus's Start/Shutdown lifecycle to suture:
// Start, wait for cancellation, then Shutdown with a fresh deadline.
//
// A watermill router cannot be restarted once closed, so a failed Start
// is returned to suture but the bus is not rebuilt here; the restart
// simply retries Start until the process is restarted.
type EventBusService struct {
	bus             EventBusRunner
	shutdownTimeout time.Duration
	name            string
}

// NewEventBusService wraps bus. A non-positive shutdownTimeout becomes 10s.
func NewEventBusService(bus EventBusRunner, shutdownTimeout time.Duration) *EventBusService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EventBusService{
		bus:             bus,
		shutdownTimeout: shutdownTimeout,
		name:            "event-bus",
	}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	if err := s.bus.Start(ctx); err != nil {
		return fmt.Errorf("event bus start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.bus.Shutdown(shutdownCtx)

	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *EventBusService) String() string {
	return s.name
}
