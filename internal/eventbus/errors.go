// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import "errors"

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrBufferFull is recorded when an event is dropped because the
// publisher queue is full.
var ErrBufferFull = errors.New("event buffer full")

// ErrAlreadyStarted is returned by Start on a running bus.
var ErrAlreadyStarted = errors.New("event bus already started")
