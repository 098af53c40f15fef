// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cartwise/internal/api"
	"github.com/tomtom215/cartwise/internal/config"
	"github.com/tomtom215/cartwise/internal/logging"
	"github.com/tomtom215/cartwise/internal/supervisor"
	"github.com/tomtom215/cartwise/internal/supervisor/services"
	ws "github.com/tomtom215/cartwise/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.LoggerConfig())
	logger := logging.Logger()

	logging.Info().
		Str("version", api.Version).
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("Starting Cartwise with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	components, err := initRecommend(cfg, logging.WithComponent("recommend"), tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	wsHub := ws.NewHub(logging.WithComponent("websocket"))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))

	if _, err := initEvents(cfg, components.Engine, wsHub, logging.WithComponent("events"), tree); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}

	handler := api.NewHandler(components.Engine, wsHub, cfg, logger)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromConfig(cfg)), logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// errCh delivers exactly one value and is never closed.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if components.Service != nil {
		logging.Info().
			Int64("training_runs", components.Service.Runs()).
			Int64("training_failures", components.Service.Failures()).
			Msg("Training scheduler summary")
	}

	logging.Info().Msg("Application stopped gracefully")
}
