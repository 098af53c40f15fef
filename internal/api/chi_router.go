// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger
}

// NewRouter creates a Router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(handler *Handler, mw *ChiMiddleware, logger zerolog.Logger) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		logger:        logger,
	}
}

// SetupChi builds the HTTP handler.
//
//	GET  /metrics                Prometheus exposition
//	GET  /api/v1/health          health summary (+ /live, /ready)
//	POST /api/v1/train           synchronous training run
//	POST /api/v1/recommend       ranked catalog for one user
//	GET  /api/v1/status          training lifecycle
//	GET  /api/v1/ws              training event stream
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to every route, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(router.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Get("/ws", router.handler.WebSocket)
		r.Get("/status", router.handler.Status)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(5, "application/json"))
			r.Post("/train", router.handler.Train)
			r.Post("/recommend", router.handler.Recommend)
		})
	})

	return r
}
