// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package services

import (
	"context"
)

// ContextHub is satisfied by *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService supervises the websocket hub that streams training
// events to browsers.
type WebSocketHubService struct {
	hub  ContextHub
	name string
}

// NewWebSocketHubService wraps hub.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service by delegating to RunWithContext.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (w *WebSocketHubService) String() string {
	return w.name
}
