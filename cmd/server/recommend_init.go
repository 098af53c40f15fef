// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/catalog"
	"github.com/tomtom215/cartwise/internal/config"
	"github.com/tomtom215/cartwise/internal/recommend"
	"github.com/tomtom215/cartwise/internal/recommend/mlp"
	"github.com/tomtom215/cartwise/internal/supervisor"
	"github.com/tomtom215/cartwise/internal/supervisor/services"
)

// RecommendComponents holds the engine and its optional scheduler.
type RecommendComponents struct {
	Engine  *recommend.Engine
	Service *services.RecommendService
}

// buildCatalogSource picks the HTTP client when catalog.url is set and
// the JSON file otherwise.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildCatalogSource(cfg *config.CatalogConfig, logger zerolog.Logger) (recommend.CatalogSource, error) {
	if cfg.URL != "" {
		client, err := catalog.NewClient(cfg.ClientConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("create catalog client: %w", err)
		}
		logger.Info().Str("url", cfg.URL).Msg("Using HTTP catalog source")
		return client, nil
	}
	logger.Info().Str("path", cfg.Path).Msg("Using file catalog source")
	return catalog.NewFileSource(cfg.Path), nil
}

// usersLoader reads the users file on every call.
func usersLoader(path string) services.UsersLoader {
	return func() ([]recommend.User, error) {
		return catalog.LoadUsers(path)
	}
}

// initRecommend creates the engine and, when scheduled training is
// configured, adds the training scheduler to the tree.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initRecommend(cfg *config.Config, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*RecommendComponents, error) {
	source, err := buildCatalogSource(&cfg.Catalog, logger)
	if err != nil {
		return nil, err
	}

	engineCfg := cfg.Recommend.EngineConfig()
	engine, err := recommend.NewEngine(engineCfg, source, mlp.New(logger), logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	logger.Info().
		Ints("hidden_units", engineCfg.Training.HiddenUnits).
		Int("epochs", engineCfg.Training.Epochs).
		Str("aggregation", engineCfg.Encoding.Aggregation).
		Str("oov_policy", string(engineCfg.Encoding.OOVPolicy)).
		Bool("cache", engineCfg.Cache.Enabled).
		Msg("Recommendation engine initialized")

	components := &RecommendComponents{Engine: engine}

	if !cfg.Recommend.ScheduledTraining() {
		logger.Info().Msg("Scheduled training disabled, training only via POST /api/v1/train")
		return components, nil
	}

	components.Service = services.NewRecommendService(engine, usersLoader(cfg.Recommend.UsersPath), services.RecommendServiceConfig{
		TrainOnStartup:  cfg.Recommend.TrainOnStartup,
		RetrainInterval: cfg.Recommend.RetrainInterval,
	}, logger)
	tree.AddTrainingService(components.Service)

	logger.Info().
		Str("users_path", cfg.Recommend.UsersPath).
		Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
		Dur("retrain_interval", cfg.Recommend.RetrainInterval).
		Msg("Training scheduler added to supervisor tree")

	return components, nil
}
