// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - API endpoint latency and throughput
// - Model training runs and epochs
// - Recommendation latency and cache efficiency
// - Catalog fetches and the catalog circuit breaker
// - Training event delivery and WebSocket connections

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"status", "stage"}, // status: "completed", "failed"; stage empty on success
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	TrainingEpochs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_training_epochs_total",
			Help: "Total number of completed training epochs",
		},
	)

	TrainingLoss = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_loss",
			Help: "Loss of the most recent training epoch",
		},
	)

	TrainingAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_accuracy",
			Help: "Accuracy of the most recent training epoch",
		},
	)

	TrainingInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_in_progress",
			Help: "1 while a training run is in flight",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Version of the model currently serving recommendations",
		},
	)

	ModelDimensions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_dimensions",
			Help: "Feature dimensions of the serving encoding context",
		},
	)

	ModelLastTrained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_last_trained_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Recommendation Metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"result"}, // "success", "cache_hit", "no_model", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendColdStart = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cold_start_total",
			Help: "Total number of recommendations for users without purchase history",
		},
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "recommend"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Catalog Metrics
	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"}, // "http", "file"
	)

	CatalogFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_errors_total",
			Help: "Total number of failed catalog fetches",
		},
		[]string{"source"},
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Number of products returned by the last catalog fetch",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_events_published_total",
			Help: "Total number of training events published to the event bus",
		},
		[]string{"type"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_event_publish_errors_total",
			Help: "Total number of training events that could not be published",
		},
		[]string{"type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTrainingStart marks a training run as in flight.
func RecordTrainingStart() {
	TrainingInProgress.Set(1)
}

// RecordTrainingEpoch records the metrics of one completed epoch.
func RecordTrainingEpoch(loss, accuracy float64) {
	TrainingEpochs.Inc()
	TrainingLoss.Set(loss)
	TrainingAccuracy.Set(accuracy)
}

// RecordTrainingRun records the outcome of a training run. stage names the
// failing pipeline stage and is empty for completed runs.
func RecordTrainingRun(status, stage string, duration time.Duration) {
	TrainingInProgress.Set(0)
	TrainingRunsTotal.WithLabelValues(status, stage).Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordModelPublished records the serving model after a successful run.
func RecordModelPublished(version, dimensions int, trainedAt time.Time) {
	ModelVersion.Set(float64(version))
	ModelDimensions.Set(float64(dimensions))
	ModelLastTrained.Set(float64(trainedAt.Unix()))
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(result string, coldStart bool, duration time.Duration) {
	RecommendRequestsTotal.WithLabelValues(result).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if coldStart {
		RecommendColdStart.Inc()
	}

	switch result {
	case "cache_hit":
		CacheHits.WithLabelValues("recommend").Inc()
	case "success":
		CacheMisses.WithLabelValues("recommend").Inc()
	}
}

// RecordCatalogFetch records a catalog fetch from source.
func RecordCatalogFetch(source string, products int, duration time.Duration, err error) {
	CatalogFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		CatalogFetchErrors.WithLabelValues(source).Inc()
		return
	}
	CatalogProducts.Set(float64(products))
}

// RecordEventPublished records a training event handed to the event bus.
func RecordEventPublished(eventType string, err error) {
	if err != nil {
		EventPublishErrors.WithLabelValues(eventType).Inc()
		return
	}
	EventsPublished.WithLabelValues(eventType).Inc()
}
