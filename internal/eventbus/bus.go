// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/logging"
)

// Bus owns the in-memory pub/sub, the publisher feeding it and the router
// consuming it.
type Bus struct {
	cfg       Config
	pubsub    *gochannel.GoChannel
	router    *Router
	publisher *Publisher
	logger    zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a bus. Consumers are added with AddConsumer before Start.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger = logger.With().Str("component", "eventbus").Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	// Publish blocks until every subscriber acked, which keeps the events
	// of a run in order. Only the publisher pump ever waits on it.
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            int64(cfg.BufferSize),
		BlockPublishUntilSubscriberAck: true,
	}, wmLogger)

	router, err := NewRouter(cfg.Router, pubsub, wmLogger)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	return &Bus{
		cfg:       cfg,
		pubsub:    pubsub,
		router:    router,
		publisher: NewPublisher(pubsub, cfg.Topic, cfg.BufferSize, logger),
		logger:    logger,
	}, nil
}

// Publisher returns the recommend.Listener feeding the bus.
func (b *Bus) Publisher() *Publisher {
	return b.publisher
}

// Topic returns the training events topic.
func (b *Bus) Topic() string {
	return b.cfg.Topic
}

// AddConsumer subscribes handler to the training topic under name.
func (b *Bus) AddConsumer(name string, handler message.NoPublishHandlerFunc) {
	b.router.AddConsumerHandler(name, b.cfg.Topic, b.pubsub, handler)
}

// Start runs the router and the publisher pump in the background and
// returns once the router is consuming.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	routerErr := make(chan error, 1)

	go func() {
		routerErr <- b.router.Run(runCtx)
	}()

	select {
	case <-b.router.Running():
	case err := <-routerErr:
		cancel()
		return fmt.Errorf("start event router: %w", err)
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}

	go func() {
		defer close(done)
		if err := b.publisher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Error().Err(err).Msg("Event publisher stopped")
		}
	}()

	b.cancel = cancel
	b.done = done
	b.running = true
	b.logger.Info().Str("topic", b.cfg.Topic).Msg("Event bus started")
	return nil
}

// Shutdown stops the publisher, closes the router and the pub/sub.
// Events still queued are discarded.
func (b *Bus) Shutdown(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}

	b.cancel()
	select {
	case <-b.done:
	case <-ctx.Done():
		b.logger.Warn().Msg("Timed out waiting for event publisher")
	}

	if err := b.router.Close(); err != nil {
		b.logger.Warn().Err(err).Msg("Error closing event router")
	}
	if err := b.pubsub.Close(); err != nil {
		b.logger.Warn().Err(err).Msg("Error closing event pub/sub")
	}

	b.running = false
	b.logger.Info().Msg("Event bus stopped")
}

// IsRunning reports whether the bus has been started and not shut down.
func (b *Bus) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}
