// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto
and exposed by the server at /metrics in Prometheus text format:

	curl http://localhost:3860/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Training Metrics:
  - recommend_training_runs_total: Training runs (counter)
    Labels: status (completed, failed), stage (fetch, context, encode, dataset, train)
  - recommend_training_duration_seconds: Run duration (histogram)
  - recommend_training_epochs_total: Completed epochs (counter)
  - recommend_training_loss, recommend_training_accuracy: Last epoch (gauge)
  - recommend_training_in_progress: 1 while a run is in flight (gauge)
  - recommend_model_version, recommend_model_dimensions: Serving model (gauge)
  - recommend_model_last_trained_timestamp: Unix time of last success (gauge)

Recommendation Metrics:
  - recommend_requests_total: Requests (counter)
    Labels: result (success, cache_hit, no_model, error)
  - recommend_duration_seconds: Latency (histogram)
  - recommend_cold_start_total: Requests for users without purchases (counter)
  - cache_hits_total, cache_misses_total: Result cache (counter)
    Labels: cache_type

Catalog Metrics:
  - catalog_fetch_duration_seconds: Fetch latency (histogram)
    Labels: source (http, file)
  - catalog_fetch_errors_total: Failed fetches (counter)
  - catalog_products: Products in the last fetch (gauge)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests by result (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Consecutive failures (gauge)
  - circuit_breaker_state_transitions_total: Transitions (counter)
    Labels: name, from_state, to_state

Event and WebSocket Metrics:
  - training_events_published_total: Events on the bus (counter)
    Labels: type
  - training_event_publish_errors_total: Failed publishes (counter)
  - websocket_connections: Connected clients (gauge)
  - websocket_messages_sent_total: Messages sent (counter)
  - websocket_errors_total: Errors (counter)
    Labels: error_type

# Example Alerts

	groups:
	  - name: cartwise
	    rules:
	      - alert: TrainingFailing
	        expr: increase(recommend_training_runs_total{status="failed"}[1h]) > 3
	        for: 5m
	      - alert: CatalogCircuitOpen
	        expr: circuit_breaker_state{name="catalog-api"} == 2
	        for: 2m
*/
package metrics
