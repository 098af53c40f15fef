// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cartwise/internal/recommend"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Catalog.URL = "http://catalog.local/products"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero shutdown", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "server.shutdown_timeout"},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, "security.rate_limit_reqs"},
		{"rate limit disabled ignores values", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"console format", func(c *Config) { c.Logging.Format = "console" }, ""},
		{"xml format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"ftp catalog", func(c *Config) { c.Catalog.URL = "ftp://catalog.local/p" }, "http or https"},
		{"catalog without host", func(c *Config) { c.Catalog.URL = "http:///products" }, "host"},
		{"file catalog only", func(c *Config) {
			c.Catalog.URL = ""
			c.Catalog.Path = "/data/products.json"
		}, ""},
		{"negative weight", func(c *Config) { c.Recommend.Weights.Color = -1 }, "weights"},
		{"bad oov", func(c *Config) { c.Recommend.OOVPolicy = "ignore" }, "oov_policy"},
		{"no hidden layers", func(c *Config) { c.Recommend.Training.HiddenUnits = nil }, "hidden_units"},
		{"negative retrain", func(c *Config) { c.Recommend.RetrainInterval = -time.Second }, "retrain_interval"},
		{"startup training without users", func(c *Config) { c.Recommend.TrainOnStartup = true }, "users_path"},
		{"empty topic", func(c *Config) { c.Events.Topic = "" }, "events"},
		{"zero buffer", func(c *Config) { c.Events.BufferSize = 0 }, "events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Recommend.Seed = 7
	cfg.Recommend.OOVPolicy = "strict"

	ec := cfg.Recommend.EngineConfig()
	if ec.Seed != 7 || ec.Training.Seed != 7 {
		t.Errorf("seed = %d/%d, want 7", ec.Seed, ec.Training.Seed)
	}
	if ec.Encoding.OOVPolicy != recommend.OOVStrict {
		t.Errorf("OOVPolicy = %q, want strict", ec.Encoding.OOVPolicy)
	}
	if ec.Encoding.Weights.Category != 0.4 {
		t.Errorf("Weights.Category = %v, want 0.4", ec.Encoding.Weights.Category)
	}

	ec.Training.HiddenUnits[0] = 1
	if cfg.Recommend.Training.HiddenUnits[0] != 128 {
		t.Error("EngineConfig() shares the hidden_units slice")
	}
}

func TestSectionConverters(t *testing.T) {
	t.Parallel()

	cfg := validConfig()

	cc := cfg.Catalog.ClientConfig()
	if cc.URL != cfg.Catalog.URL || cc.BreakerFailureThreshold != 5 || cc.UserAgent != "cartwise/1.0" {
		t.Errorf("ClientConfig() = %+v", cc)
	}

	bc := cfg.Events.BusConfig()
	if bc.Topic != "training.events" || bc.BufferSize != 256 {
		t.Errorf("BusConfig() = %+v", bc)
	}
	if bc.Router.PoisonQueueTopic == "" {
		t.Error("BusConfig() lost router defaults")
	}

	lc := cfg.Logging.LoggerConfig()
	if lc.Level != "info" || lc.Service != "cartwise" {
		t.Errorf("LoggerConfig() = %+v", lc)
	}
}

func TestScheduledTraining(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rc   RecommendConfig
		want bool
	}{
		{"nothing configured", RecommendConfig{}, false},
		{"users without schedule", RecommendConfig{UsersPath: "u.json"}, false},
		{"startup only", RecommendConfig{UsersPath: "u.json", TrainOnStartup: true}, true},
		{"interval only", RecommendConfig{UsersPath: "u.json", RetrainInterval: time.Hour}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.rc.ScheduledTraining(); got != tt.want {
				t.Errorf("ScheduledTraining() = %v, want %v", got, tt.want)
			}
		})
	}
}
