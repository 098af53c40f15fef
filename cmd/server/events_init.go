// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/config"
	"github.com/tomtom215/cartwise/internal/eventbus"
	"github.com/tomtom215/cartwise/internal/recommend"
	"github.com/tomtom215/cartwise/internal/supervisor"
	"github.com/tomtom215/cartwise/internal/supervisor/services"
	ws "github.com/tomtom215/cartwise/internal/websocket"
)

// initEvents builds the training event bus, subscribes the websocket and
// metrics consumers, and registers the bus as an engine listener.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEvents(cfg *config.Config, engine *recommend.Engine, hub *ws.Hub, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*eventbus.Bus, error) {
	bus, err := eventbus.New(cfg.Events.BusConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}

	wsHandler, err := eventbus.NewWebSocketHandler(hub, logger)
	if err != nil {
		return nil, fmt.Errorf("create websocket consumer: %w", err)
	}
	bus.AddConsumer("websocket-broadcast", wsHandler.Handle)
	bus.AddConsumer("training-metrics", eventbus.NewMetricsHandler(logger).Handle)

	engine.AddListener(bus.Publisher())
	tree.AddMessagingService(services.NewEventBusService(bus, cfg.Server.ShutdownTimeout))

	logger.Info().Str("topic", bus.Topic()).Msg("Event bus added to supervisor tree")
	return bus, nil
}
