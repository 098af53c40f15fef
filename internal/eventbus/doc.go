// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package eventbus carries training events from the recommendation engine to
the rest of the process over an in-memory Watermill pub/sub.

# Architecture

	recommend.Engine
	      |  Listener (synchronous, must not block)
	      v
	Publisher --buffer--> pump goroutine --> GoChannel topic "training.events"
	                                                 |
	                                   message.Router (Recoverer, Retry)
	                                      |                     |
	                              WebSocketHandler        MetricsHandler
	                              (hub.BroadcastRaw)      (Prometheus)

The Publisher implements recommend.Listener. Each callback wraps the event
in an Envelope and hands it to a bounded buffer without blocking; when the
buffer is full the event is dropped and counted. A single pump goroutine
publishes buffered envelopes in order.

# Wire Format

Every message payload is one JSON envelope:

	{"type":"training_epoch","run_id":"...","timestamp":"...","data":{...}}

The type is one of training_progress, training_epoch or
training_complete; data is the matching recommend event. WebSocket clients
receive the payload unchanged.

# Usage

	bus, err := eventbus.New(eventbus.DefaultConfig(), logger)
	bus.AddConsumer("websocket", eventbus.NewWebSocketHandler(hub, logger).Handle)
	bus.AddConsumer("metrics", eventbus.NewMetricsHandler(logger).Handle)
	engine.AddListener(bus.Publisher())

	go bus.Run(ctx) // or supervise bus.Publisher() and bus.Router()
*/
package eventbus
