// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/metrics"
	"github.com/tomtom215/cartwise/internal/recommend"
)

// WebSocketBroadcaster defines the interface for broadcasting to WebSocket clients.
type WebSocketBroadcaster interface {
	// BroadcastRaw sends raw JSON bytes to all connected clients.
	BroadcastRaw(data []byte)
}

// WebSocketHandler forwards training events to WebSocket clients.
type WebSocketHandler struct {
	hub    WebSocketBroadcaster
	logger zerolog.Logger

	messagesReceived  atomic.Int64
	messagesBroadcast atomic.Int64
}

// NewWebSocketHandler creates a new handler for WebSocket broadcasting.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWebSocketHandler(hub WebSocketBroadcaster, logger zerolog.Logger) (*WebSocketHandler, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	return &WebSocketHandler{hub: hub, logger: logger}, nil
}

// Handle broadcasts the envelope unchanged. It always succeeds: a slow or
// absent browser must not cause retries.
func (h *WebSocketHandler) Handle(msg *message.Message) error {
	h.messagesReceived.Add(1)
	h.hub.BroadcastRaw(msg.Payload)
	h.messagesBroadcast.Add(1)
	return nil
}

// Stats returns current handler statistics.
func (h *WebSocketHandler) Stats() WebSocketHandlerStats {
	return WebSocketHandlerStats{
		MessagesReceived:  h.messagesReceived.Load(),
		MessagesBroadcast: h.messagesBroadcast.Load(),
	}
}

// WebSocketHandlerStats holds runtime statistics.
type WebSocketHandlerStats struct {
	MessagesReceived  int64
	MessagesBroadcast int64
}

// MetricsHandler folds training events into the Prometheus collectors.
type MetricsHandler struct {
	logger zerolog.Logger

	handled     atomic.Int64
	parseErrors atomic.Int64
}

// NewMetricsHandler creates a new metrics handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMetricsHandler(logger zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{logger: logger}
}

// Handle records one training event. Malformed payloads are logged and
// acknowledged since retrying cannot fix them.
func (h *MetricsHandler) Handle(msg *message.Message) error {
	env, err := UnmarshalEnvelope(msg.Payload)
	if err != nil {
		h.parseErrors.Add(1)
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Skipping malformed training event")
		return nil
	}

	if err := h.record(env); err != nil {
		h.parseErrors.Add(1)
		h.logger.Warn().Err(err).Str("type", env.Type).Msg("Skipping malformed training event")
		return nil
	}
	h.handled.Add(1)
	return nil
}

func (h *MetricsHandler) record(env *Envelope) error {
	switch env.Type {
	case TypeProgress:
		ev, err := env.Progress()
		if err != nil {
			return err
		}
		if ev.Progress == recommend.ProgressFetch {
			metrics.RecordTrainingStart()
		}

	case TypeEpoch:
		ev, err := env.Epoch()
		if err != nil {
			return err
		}
		metrics.RecordTrainingEpoch(ev.Loss, ev.Accuracy)

	case TypeComplete:
		ev, err := env.Completion()
		if err != nil {
			return err
		}
		metrics.RecordTrainingRun(ev.Status, string(ev.Stage), time.Duration(ev.DurationMS)*time.Millisecond)
		if ev.Status == recommend.StatusCompleted && ev.Result != nil {
			metrics.RecordModelPublished(ev.Result.ModelVersion, ev.Result.Dimensions, ev.Result.CompletedAt)
		}
	}
	return nil
}

// Stats returns the number of handled and rejected events.
func (h *MetricsHandler) Stats() (handled, rejected int64) {
	return h.handled.Load(), h.parseErrors.Load()
}
