// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cartwise/config.yaml",
	"/etc/cartwise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3860,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute, // POST /train runs synchronously
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Timeout:                 10 * time.Second,
			UserAgent:               "cartwise/1.0",
			BreakerMaxRequests:      3,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Recommend: RecommendConfig{
			Weights: WeightsConfig{
				Age:      0.1,
				Price:    0.2,
				Color:    0.3,
				Category: 0.4,
			},
			Aggregation: "min",
			OOVPolicy:   "zero",
			Training: TrainingConfig{
				Epochs:       100,
				BatchSize:    32,
				LearningRate: 0.01,
				HiddenUnits:  []int{128, 64, 32},
				Shuffle:      true,
				Timeout:      10 * time.Minute,
			},
			Cache: CacheConfig{
				Enabled:    true,
				TTL:        5 * time.Minute,
				MaxEntries: 1000,
			},
			Seed:            42,
			UsersPath:       "",
			TrainOnStartup:  false,
			RetrainInterval: 0, // disabled
		},
		Events: EventsConfig{
			Topic:      "training.events",
			BufferSize: 256,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence, and validates
// the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first of
// DefaultConfigPaths that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// stringSlicePaths are config paths whose env values are comma-separated strings.
var stringSlicePaths = []string{
	"security.cors_origins",
}

// intSlicePaths are config paths whose env values are comma-separated integers.
var intSlicePaths = []string{
	"recommend.training.hidden_units",
}

// processSliceFields converts comma-separated string values into slices.
// Values that are already slices (from defaults or YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range stringSlicePaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		if err := k.Set(path, splitCSV(strVal)); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	for _, path := range intSlicePaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := splitCSV(strVal)
		ints := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q", path, p)
			}
			ints = append(ints, n)
		}
		if err := k.Set(path, ints); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps lower-cased environment variable names to config paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"catalog_url":                       "catalog.url",
	"catalog_path":                      "catalog.path",
	"catalog_timeout":                   "catalog.timeout",
	"catalog_user_agent":                "catalog.user_agent",
	"catalog_breaker_max_requests":      "catalog.breaker_max_requests",
	"catalog_breaker_interval":          "catalog.breaker_interval",
	"catalog_breaker_timeout":           "catalog.breaker_timeout",
	"catalog_breaker_failure_threshold": "catalog.breaker_failure_threshold",

	"recommend_weight_age":       "recommend.weights.age",
	"recommend_weight_price":     "recommend.weights.price",
	"recommend_weight_color":     "recommend.weights.color",
	"recommend_weight_category":  "recommend.weights.category",
	"recommend_aggregation":      "recommend.aggregation",
	"recommend_oov_policy":       "recommend.oov_policy",
	"recommend_epochs":           "recommend.training.epochs",
	"recommend_batch_size":       "recommend.training.batch_size",
	"recommend_learning_rate":    "recommend.training.learning_rate",
	"recommend_hidden_units":     "recommend.training.hidden_units",
	"recommend_shuffle":          "recommend.training.shuffle",
	"recommend_train_timeout":    "recommend.training.timeout",
	"recommend_seed":             "recommend.seed",
	"recommend_users_path":       "recommend.users_path",
	"recommend_train_on_startup": "recommend.train_on_startup",
	"recommend_retrain_interval": "recommend.retrain_interval",
	"recommend_cache_enabled":    "recommend.cache.enabled",
	"recommend_cache_ttl":        "recommend.cache.ttl",
	"recommend_cache_max":        "recommend.cache.max_entries",

	"events_topic":       "events.topic",
	"events_buffer_size": "events.buffer_size",
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never reach the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
