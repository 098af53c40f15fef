// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Encoding controls how products and users are vectorized.
	Encoding EncodingConfig `json:"encoding"`

	// Training contains the scoring backend hyperparameters.
	Training TrainConfig `json:"training"`

	// Cache contains recommendation result caching parameters.
	Cache CacheConfig `json:"cache"`

	// Seed is the random seed for deterministic training.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// FeatureWeights scales each semantic field of the feature vector.
type FeatureWeights struct {
	// Age weights the (average buyer) age scalar. Default: 0.1.
	Age float64 `json:"age"`

	// Price weights the normalized price scalar. Default: 0.2.
	Price float64 `json:"price"`

	// Color is the value of the hot position of the color one-hot. Default: 0.3.
	Color float64 `json:"color"`

	// Category is the value of the hot position of the category one-hot. Default: 0.4.
	Category float64 `json:"category"`
}

// OOVPolicy decides how a color or category missing from the context
// vocabulary is encoded.
type OOVPolicy string

const (
	// OOVZero encodes an unknown value as an all-zero one-hot segment.
	OOVZero OOVPolicy = "zero"

	// OOVStrict fails the encoding with ErrUnknownCategory.
	OOVStrict OOVPolicy = "strict"
)

// Valid reports whether p is a known policy.
func (p OOVPolicy) Valid() bool {
	return p == OOVZero || p == OOVStrict
}

// EncodingConfig controls the feature encoder.
type EncodingConfig struct {
	// Weights scales the four semantic fields.
	Weights FeatureWeights `json:"weights"`

	// Aggregation names the strategy folding purchase vectors into a user
	// vector: min, mean or max.
	// Default: min.
	Aggregation string `json:"aggregation"`

	// OOVPolicy decides how unknown colors and categories are encoded.
	// Default: zero.
	OOVPolicy OOVPolicy `json:"oov_policy"`
}

// TrainConfig contains the scoring backend hyperparameters.
type TrainConfig struct {
	// HiddenUnits lists the width of each ReLU hidden layer.
	// Default: [128, 64, 32].
	HiddenUnits []int `json:"hidden_units"`

	// LearningRate is the Adam step size.
	// Default: 0.01.
	LearningRate float64 `json:"learning_rate"`

	// Epochs is the number of passes over the dataset.
	// Default: 100.
	Epochs int `json:"epochs"`

	// BatchSize is the mini-batch size.
	// Default: 32.
	BatchSize int `json:"batch_size"`

	// Shuffle reshuffles the rows before every epoch.
	// Default: true.
	Shuffle bool `json:"shuffle"`

	// Seed drives weight initialization and shuffling.
	// Filled from Config.Seed by the engine when zero.
	Seed int64 `json:"seed"`

	// Timeout is the maximum time allowed for one Fit call.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`
}

// CacheConfig contains result caching parameters.
type CacheConfig struct {
	// Enabled controls whether recommendation results are memoized.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached results.
	// Default: 1000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Encoding: EncodingConfig{
			Weights: FeatureWeights{
				Age:      0.1,
				Price:    0.2,
				Color:    0.3,
				Category: 0.4,
			},
			Aggregation: AggregationMin,
			OOVPolicy:   OOVZero,
		},
		Training: TrainConfig{
			HiddenUnits:  []int{128, 64, 32},
			LearningRate: 0.01,
			Epochs:       100,
			BatchSize:    32,
			Shuffle:      true,
			Timeout:      10 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
		},
		Seed: 42, // Default seed for determinism
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	w := c.Encoding.Weights
	if w.Age < 0 || w.Price < 0 || w.Color < 0 || w.Category < 0 {
		return fmt.Errorf("encoding.weights must be non-negative, got %+v", w)
	}
	if _, err := AggregatorByName(c.Encoding.Aggregation); err != nil {
		return fmt.Errorf("encoding.aggregation: %w", err)
	}
	if !c.Encoding.OOVPolicy.Valid() {
		return fmt.Errorf("encoding.oov_policy must be %q or %q, got %q", OOVZero, OOVStrict, c.Encoding.OOVPolicy)
	}

	if len(c.Training.HiddenUnits) == 0 {
		return fmt.Errorf("training.hidden_units must not be empty")
	}
	for i, units := range c.Training.HiddenUnits {
		if units < 1 {
			return fmt.Errorf("training.hidden_units[%d] must be positive, got %d", i, units)
		}
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive, got %f", c.Training.LearningRate)
	}
	if c.Training.Epochs < 1 {
		return fmt.Errorf("training.epochs must be positive, got %d", c.Training.Epochs)
	}
	if c.Training.BatchSize < 1 {
		return fmt.Errorf("training.batch_size must be positive, got %d", c.Training.BatchSize)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Training.HiddenUnits = append([]int(nil), c.Training.HiddenUnits...)
	return &cp
}
