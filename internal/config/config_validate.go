// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/cartwise/internal/logging"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateEvents()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.URL == "" && c.Catalog.Path == "" {
		return fmt.Errorf("catalog.url or catalog.path is required")
	}
	if c.Catalog.URL != "" {
		u, err := url.Parse(c.Catalog.URL)
		if err != nil {
			return fmt.Errorf("catalog.url is invalid: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("catalog.url must use http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("catalog.url must include a host")
		}
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive, got %v", c.Catalog.Timeout)
	}
	if c.Catalog.BreakerFailureThreshold < 1 {
		return fmt.Errorf("catalog.breaker_failure_threshold must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if c.Recommend.RetrainInterval < 0 {
		return fmt.Errorf("recommend.retrain_interval must not be negative, got %v", c.Recommend.RetrainInterval)
	}
	if (c.Recommend.TrainOnStartup || c.Recommend.RetrainInterval > 0) && c.Recommend.UsersPath == "" {
		return fmt.Errorf("recommend.users_path is required for scheduled training")
	}
	return nil
}

func (c *Config) validateEvents() error {
	cfg := c.Events.BusConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	return nil
}
