// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package config

import (
	"time"

	"github.com/tomtom215/cartwise/internal/catalog"
	"github.com/tomtom215/cartwise/internal/eventbus"
	"github.com/tomtom215/cartwise/internal/logging"
	"github.com/tomtom215/cartwise/internal/recommend"
)

// Config holds the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings for the HTTP API.
type SecurityConfig struct {
	// CORSOrigins lists allowed browser origins. Empty disallows
	// cross-origin requests; "*" allows every origin.
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CatalogConfig selects and tunes the product catalog source. URL takes
// precedence over Path when both are set.
type CatalogConfig struct {
	URL       string        `koanf:"url"`
	Path      string        `koanf:"path"`
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`

	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// RecommendConfig holds engine settings and scheduled training.
type RecommendConfig struct {
	Weights     WeightsConfig  `koanf:"weights"`
	Aggregation string         `koanf:"aggregation"`
	OOVPolicy   string         `koanf:"oov_policy"`
	Training    TrainingConfig `koanf:"training"`
	Cache       CacheConfig    `koanf:"cache"`
	Seed        int64          `koanf:"seed"`

	// UsersPath is a JSON file of users trained on at startup and on every
	// retrain tick. Empty disables scheduled training.
	UsersPath       string        `koanf:"users_path"`
	TrainOnStartup  bool          `koanf:"train_on_startup"`
	RetrainInterval time.Duration `koanf:"retrain_interval"`
}

// WeightsConfig scales the semantic fields of the feature vector.
type WeightsConfig struct {
	Age      float64 `koanf:"age"`
	Price    float64 `koanf:"price"`
	Color    float64 `koanf:"color"`
	Category float64 `koanf:"category"`
}

// TrainingConfig holds scoring backend hyperparameters.
type TrainingConfig struct {
	Epochs       int           `koanf:"epochs"`
	BatchSize    int           `koanf:"batch_size"`
	LearningRate float64       `koanf:"learning_rate"`
	HiddenUnits  []int         `koanf:"hidden_units"`
	Shuffle      bool          `koanf:"shuffle"`
	Timeout      time.Duration `koanf:"timeout"`
}

// CacheConfig holds recommendation result cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// EventsConfig holds training event bus settings.
type EventsConfig struct {
	Topic      string `koanf:"topic"`
	BufferSize int    `koanf:"buffer_size"`
}

// ScheduledTraining reports whether the recommend service has anything to do.
func (c *RecommendConfig) ScheduledTraining() bool {
	return c.UsersPath != "" && (c.TrainOnStartup || c.RetrainInterval > 0)
}

// EngineConfig converts the recommend section to the engine's configuration.
func (c *RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Encoding: recommend.EncodingConfig{
			Weights: recommend.FeatureWeights{
				Age:      c.Weights.Age,
				Price:    c.Weights.Price,
				Color:    c.Weights.Color,
				Category: c.Weights.Category,
			},
			Aggregation: c.Aggregation,
			OOVPolicy:   recommend.OOVPolicy(c.OOVPolicy),
		},
		Training: recommend.TrainConfig{
			HiddenUnits:  append([]int(nil), c.Training.HiddenUnits...),
			LearningRate: c.Training.LearningRate,
			Epochs:       c.Training.Epochs,
			BatchSize:    c.Training.BatchSize,
			Shuffle:      c.Training.Shuffle,
			Seed:         c.Seed,
			Timeout:      c.Training.Timeout,
		},
		Cache: recommend.CacheConfig{
			Enabled:    c.Cache.Enabled,
			TTL:        c.Cache.TTL,
			MaxEntries: c.Cache.MaxEntries,
		},
		Seed: c.Seed,
	}
}

// ClientConfig converts the catalog section to the HTTP client configuration.
func (c *CatalogConfig) ClientConfig() catalog.ClientConfig {
	return catalog.ClientConfig{
		URL:                     c.URL,
		Timeout:                 c.Timeout,
		UserAgent:               c.UserAgent,
		BreakerMaxRequests:      c.BreakerMaxRequests,
		BreakerInterval:         c.BreakerInterval,
		BreakerTimeout:          c.BreakerTimeout,
		BreakerFailureThreshold: c.BreakerFailureThreshold,
	}
}

// BusConfig converts the events section to the event bus configuration.
// Router settings keep the bus defaults.
func (c *EventsConfig) BusConfig() eventbus.Config {
	cfg := eventbus.DefaultConfig()
	cfg.Topic = c.Topic
	cfg.BufferSize = c.BufferSize
	return cfg
}

// LoggerConfig converts the logging section to the logger configuration.
func (c *LoggingConfig) LoggerConfig() logging.Config {
	return logging.Config{
		Level:   c.Level,
		Format:  c.Format,
		Caller:  c.Caller,
		Service: "cartwise",
	}
}
