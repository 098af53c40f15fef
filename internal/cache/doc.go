// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package cache provides a thread-safe, generic LRU cache with TTL support.

The recommendation engine memoizes ranked results in an LRU keyed by the
query user's fingerprint and the serving model version, so a retrained model
never serves results computed by its predecessor.

# Usage Example

	results := cache.NewLRU[*recommend.Recommendation](1000, 5*time.Minute)
	results.Add(key, rec)
	if rec, ok := results.Get(key); ok {
	    // cache hit
	}

# Thread Safety

All operations take a single mutex. Get mutates recency order, so reads
are exclusive as well.
*/
package cache
