// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package catalog provides the product catalog sources consumed by training runs.

Two sources implement recommend.CatalogSource:

  - Client fetches a JSON list of product records over HTTP. Every fetch
    goes through a sony/gobreaker circuit breaker so a failing catalog
    service fails training runs fast instead of stacking timeouts.
  - FileSource reads the same JSON list from a local file, for offline
    training and tests.

The catalog format is a JSON array of product records:

	[
	  {"name": "A", "price": 10, "color": "red", "category": "x"},
	  {"name": "B", "price": 20, "color": "blue", "category": "y", "sku": "B-1"}
	]

Keys other than name, price, color and category are preserved and returned
with recommendations.

LoadUsers reads a JSON array of users in the shape accepted by the train
endpoint; the scheduled training service uses it to retrain from disk.

# Circuit Breaker

The breaker opens after BreakerFailureThreshold consecutive failures and
rejects fetches with gobreaker.ErrOpenState until BreakerTimeout has
elapsed. State changes are exported as circuit_breaker_* metrics under the
name "catalog-api".
*/
package catalog
