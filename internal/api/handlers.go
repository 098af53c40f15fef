// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/config"
	"github.com/tomtom215/cartwise/internal/recommend"
	ws "github.com/tomtom215/cartwise/internal/websocket"
)

// Engine is the part of recommend.Engine the HTTP layer drives.
type Engine interface {
	Train(ctx context.Context, users []recommend.User, listener recommend.Listener) (*recommend.TrainingResult, error)
	Recommend(ctx context.Context, user recommend.User) (*recommend.Recommendation, error)
	Status() recommend.TrainingStatus
}

var _ Engine = (*recommend.Engine)(nil)

// Handler serves the HTTP API.
type Handler struct {
	engine    Engine
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates a Handler. hub may be nil, in which case the
// websocket endpoint answers 503.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine Engine, hub *ws.Hub, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		wsHub:     hub,
		config:    cfg,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin allows origins listed in security.cors_origins.
// Browsers always send Origin on websocket handshakes, so a missing header
// is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.logger.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	h.logger.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and attaches it to the hub, which
// streams training events to it.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    CodeUnavailable,
			Message: "WebSocket service unavailable",
		}, nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}

// NotFound answers unknown routes with the JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, &APIError{Code: CodeNotFound, Message: "Resource not found"}, nil)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, &APIError{Code: CodeMethodNotAllowed, Message: "Method not allowed"}, nil)
}
