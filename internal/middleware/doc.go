// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package middleware provides HTTP middleware shared by the API router.

All middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: assigns or propagates X-Request-ID and stores it in the
    request context (see logging.RequestIDFromContext)
  - RequestLogger: one structured log line per request
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds
    and api_active_requests, labeled by chi route pattern

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics)

RequestID must come first so the other middleware can read the ID.
*/
package middleware
