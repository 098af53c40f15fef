// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Router wraps the Watermill router with the middleware stack shared by
// every consumer of the training topic.
type Router struct {
	router   *message.Router
	config   RouterConfig
	logger   watermill.LoggerAdapter
	running  atomic.Bool
	handlers map[string]*message.Handler
}

// NewRouter creates a router. poisonPublisher may be nil, which disables
// the poison queue.
func NewRouter(cfg RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router:   wmRouter,
		config:   cfg,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}

	// Middleware order, outermost first:
	// 1. Poison queue (or drop) - a message that still fails is acked
	// 2. Retry - transient handler failures with backoff
	// 3. Recoverer - handler panics become errors
	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	} else {
		wmRouter.AddMiddleware(r.dropFailed)
	}

	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      cfg.RetryMultiplier,
			Logger:          logger,
		}
		wmRouter.AddMiddleware(retry.Middleware)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	return r, nil
}

// dropFailed acknowledges a message whose handler failed so the in-memory
// pub/sub does not redeliver it forever.
func (r *Router) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := h(msg)
		if err != nil {
			r.logger.Error("Dropping event after handler failure", err, watermill.LogFields{
				"message_uuid": msg.UUID,
			})
			return nil, nil
		}
		return msgs, nil
	}
}

// AddConsumerHandler registers a handler that consumes topic without
// publishing.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	h := r.router.AddNoPublisherHandler(name, subscribeTopic, subscriber, handler)
	r.handlers[name] = h
	return h
}

// AddHandlerMiddleware adds middleware to a single named handler.
func (r *Router) AddHandlerMiddleware(handlerName string, m ...message.HandlerMiddleware) error {
	h, exists := r.handlers[handlerName]
	if !exists {
		return fmt.Errorf("handler %q not found", handlerName)
	}
	h.AddMiddleware(m...)
	return nil
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running is closed once the router is consuming.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether Run is in progress.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close stops the router, waiting up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
