// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package main is the entry point for the Cartwise server.

Cartwise trains a small neural scorer on users' purchase histories against
a product catalog and serves ranked, personalized product recommendations
over a JSON API. Training progress streams to browsers over a WebSocket.

# Application Architecture

Long-running components run under a Suture v4 supervision tree:

	RootSupervisor ("cartwise")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event Bus (watermill gochannel, training events)
	│   └── WebSocket Hub (training progress to browsers)
	├── TrainingSupervisor ("training-layer")
	│   └── Recommend Service (startup and periodic retraining, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON or console output
 3. Catalog source: HTTP client with circuit breaker, or a JSON file
 4. Engine: MLP scoring backend and the recommendation engine
 5. Event bus: websocket and metrics consumers, engine listener
 6. HTTP server: REST API, health probes, Prometheus metrics
 7. Supervisor tree: every service above, then signal handling

# Configuration

Configuration is layered (highest priority wins):
  - Environment variables (HTTP_PORT, CATALOG_URL, RECOMMEND_EPOCHS, ...)
  - Config file (config.yaml, or the path in CONFIG_PATH)
  - Built-in defaults

# Example Usage

Serve recommendations from a local catalog, training on demand:

	export CATALOG_PATH=./products.json
	./cartwise

Train at startup and every hour from a users file:

	export CATALOG_URL=http://catalog:8080/products
	export RECOMMEND_USERS_PATH=/data/users.json
	export RECOMMEND_TRAIN_ON_STARTUP=true
	export RECOMMEND_RETRAIN_INTERVAL=1h
	./cartwise

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
server.shutdown_timeout, the event bus stops and websocket clients are
closed with a going-away frame.
*/
package main
