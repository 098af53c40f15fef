// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/recommend"
)

// Trainer is the part of recommend.Engine the scheduler drives.
type Trainer interface {
	Train(ctx context.Context, users []recommend.User, listener recommend.Listener) (*recommend.TrainingResult, error)
}

// UsersLoader returns the users to train on. It is called before every
// run so edits to the users file are picked up.
type UsersLoader func() ([]recommend.User, error)

// RecommendServiceConfig holds scheduled training settings.
type RecommendServiceConfig struct {
	// TrainOnStartup runs one training as soon as the service starts.
	TrainOnStartup bool

	// RetrainInterval is the period between scheduled runs. Zero disables
	// periodic retraining.
	RetrainInterval time.Duration
}

// RecommendService runs scheduled training under supervision. A failed
// run is logged and counted and never stops the service; the next tick
// simply tries again.
type RecommendService struct {
	engine   Trainer
	load     UsersLoader
	config   RecommendServiceConfig
	logger   zerolog.Logger
	name     string
	runs     atomic.Int64
	failures atomic.Int64
}

// NewRecommendService creates the scheduler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(engine Trainer, load UsersLoader, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	return &RecommendService{
		engine: engine,
		load:   load,
		config: cfg,
		logger: logger.With().Str("service", "recommend").Logger(),
		name:   "recommend-service",
	}
}

// Serve implements suture.Service.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("retrain_interval", s.config.RetrainInterval).
		Msg("recommendation service starting")

	if s.config.TrainOnStartup {
		s.runOnce(ctx, "startup")
	}

	if s.config.RetrainInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RetrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.runOnce(ctx, "scheduled")
		}
	}
}

// runOnce performs one training run and records its outcome.
func (s *RecommendService) runOnce(ctx context.Context, trigger string) {
	s.runs.Add(1)
	start := time.Now()

	result, err := s.train(ctx)
	switch {
	case err == nil:
		s.logger.Info().
			Str("trigger", trigger).
			Str("run_id", result.RunID).
			Int("model_version", result.ModelVersion).
			Dur("duration", time.Since(start)).
			Msg("scheduled training complete")

	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("training skipped: another run is in progress")

	case ctx.Err() != nil:
		s.logger.Debug().Err(err).Str("trigger", trigger).Msg("training interrupted by shutdown")

	default:
		s.failures.Add(1)
		s.logger.Warn().
			Err(err).
			Str("trigger", trigger).
			Str("stage", string(recommend.StageOf(err))).
			Msg("scheduled training failed")
	}
}

func (s *RecommendService) train(ctx context.Context) (*recommend.TrainingResult, error) {
	users, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return s.engine.Train(ctx, users, nil)
}

// Runs returns how many training runs were attempted.
func (s *RecommendService) Runs() int64 {
	return s.runs.Load()
}

// Failures returns how many attempted runs failed.
func (s *RecommendService) Failures() int64 {
	return s.failures.Load()
}

// String implements fmt.Stringer for suture's logs.
func (s *RecommendService) String() string {
	return s.name
}
