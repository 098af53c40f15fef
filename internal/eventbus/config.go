// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import (
	"fmt"
	"time"
)

// Config holds event bus configuration.
type Config struct {
	// Topic is the topic training events are published on.
	// Default: training.events
	Topic string

	// BufferSize bounds both the publisher queue and the per-subscriber
	// output channel. Events arriving at a full queue are dropped.
	// Default: 256
	BufferSize int

	// Router configures the consuming side.
	Router RouterConfig
}

// RouterConfig holds message router configuration.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic receives messages whose handler still fails after
	// all retries. Empty disables the poison queue, in which case a failed
	// message is logged and acknowledged.
	PoisonQueueTopic string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Topic:      "training.events",
		BufferSize: 256,
		Router:     DefaultRouterConfig(),
	}
}

// DefaultRouterConfig returns the production router defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     "training.events.dlq",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("%w: buffer_size must be positive, got %d", ErrInvalidConfig, c.BufferSize)
	}
	if c.Router.RetryMaxRetries < 0 {
		return fmt.Errorf("%w: retry_max_retries must not be negative", ErrInvalidConfig)
	}
	if c.Router.PoisonQueueTopic == c.Topic {
		return fmt.Errorf("%w: poison queue topic must differ from %q", ErrInvalidConfig, c.Topic)
	}
	return nil
}
