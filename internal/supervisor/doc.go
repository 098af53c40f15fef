// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package supervisor runs the long-lived parts of the service under a suture
v4 supervision tree.

	cartwise
	├── messaging-layer
	│   ├── EventBusService     (watermill router + publisher pump)
	│   └── WebSocketHubService
	├── training-layer
	│   └── RecommendService    (only when scheduled training is configured)
	└── api-layer
	    └── HTTPServerService

Supervisor events are logged through sutureslog, which writes to the
zerolog bridge in the logging package:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 30*time.Second))
	err = tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
