// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cartwise/internal/metrics"
	"github.com/tomtom215/cartwise/internal/recommend"
)

// breakerName labels the catalog breaker in logs and metrics.
const breakerName = "catalog-api"

// maxErrorBody bounds how much of an error response is quoted in errors.
const maxErrorBody = 512

// Ensure Client implements recommend.CatalogSource
var _ recommend.CatalogSource = (*Client)(nil)

// ClientConfig configures the HTTP catalog client.
type ClientConfig struct {
	// URL is the catalog endpoint returning a JSON product list.
	URL string

	// Timeout bounds a single fetch.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// BreakerMaxRequests is the number of probes allowed while half-open.
	BreakerMaxRequests uint32

	// BreakerInterval is the closed-state window after which counts reset.
	BreakerInterval time.Duration

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration

	// BreakerFailureThreshold is the consecutive failure count that opens
	// the breaker.
	BreakerFailureThreshold uint32
}

// Client fetches the product catalog over HTTP with circuit breaker
// protection.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker) for its
// interval and timeout calculations.
type Client struct {
	url        string
	userAgent  string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[interface{}]
	logger     zerolog.Logger
}

// NewClient creates a catalog client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("catalog url is required")
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, fmt.Errorf("catalog url must be http or https: %q", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "cartwise/1.0"
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = 5
	}

	logger = logger.With().Str("component", "catalog").Logger()

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	threshold := cfg.BreakerFailureThreshold
	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,

		// Opens after threshold consecutive failures
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= threshold
			if shouldTrip {
				logger.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("opening catalog circuit breaker")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("catalog circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Client{
		url:       cfg.URL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb:     cb,
		logger: logger,
	}, nil
}

// Products fetches the catalog with circuit breaker protection.
func (c *Client) Products(ctx context.Context) ([]recommend.Product, error) {
	start := time.Now()
	result, err := c.execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		metrics.RecordCatalogFetch("http", 0, time.Since(start), err)
		return nil, err
	}

	products, ok := result.([]recommend.Product)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for Products")
	}

	metrics.RecordCatalogFetch("http", len(products), time.Since(start), nil)
	c.logger.Debug().
		Int("products", len(products)).
		Dur("duration", time.Since(start)).
		Msg("fetched catalog")

	return products, nil
}

// State returns the circuit breaker state as a string.
func (c *Client) State() string {
	return stateToString(c.cb.State())
}

// execute wraps a catalog call with circuit breaker protection
func (c *Client) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			c.logger.Warn().Err(err).Msg("catalog request rejected by circuit breaker")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
			counts := c.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	return result, nil
}

// fetch performs one GET of the catalog endpoint.
func (c *Client) fetch(ctx context.Context) ([]recommend.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return nil, fmt.Errorf("catalog returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	products, err := decodeProducts(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return products, nil
}

// decodeProducts reads a JSON product list and rejects unnamed records.
func decodeProducts(r io.Reader) ([]recommend.Product, error) {
	var products []recommend.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Name == "" {
			return nil, fmt.Errorf("product %d has no name", i)
		}
	}
	return products, nil
}

// stateToFloat converts circuit breaker state to a metric value
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
