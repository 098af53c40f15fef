// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

// Package logging provides centralized zerolog-based structured logging for Cartwise.
//
// JSON output is used in production and a human-readable console format
// in development. The same zerolog logger also backs the slog adapter used
// by the Suture supervisor and the Watermill adapter used by the event bus,
// so every component writes one format.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:   "info",
//	    Format:  "json",
//	    Service: "cartwise",
//	})
//
//	logging.Info().Int("products", n).Msg("Catalog fetched")
//	logging.Error().Err(err).Str("stage", "fetch").Msg("Training failed")
//
// # Configuration
//
// Environment variables (read by internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Component Loggers
//
// Long-lived components take a zerolog.Logger by value at construction:
//
//	client, err := catalog.NewClient(cfg, logging.WithComponent("catalog"))
//
// # Context-Aware Logging
//
// The request ID set by the HTTP middleware and the run ID of a training
// run travel in the context and are added by Ctx:
//
//	ctx = logging.ContextWithRunID(ctx, runID)
//	logging.Ctx(ctx).Info().Msg("Training started")
//	// {"level":"info","run_id":"...","message":"Training started"}
//
// # Adapters
//
//	slogLogger := logging.NewSlogLogger()                       // suture/sutureslog
//	wmLogger := logging.NewWatermillAdapter(logging.Logger())   // watermill router
//
// Watermill logs every subscription at Info, so the adapter demotes Info to
// debug.
//
// # Output Formats
//
// JSON Format (Production):
//
//	{"level":"info","service":"cartwise","time":"2026-01-03T10:30:00Z","message":"Server starting","port":3860}
//
// Console Format (Development):
//
//	10:30:00 INF Server starting port=3860
//
// # Testing
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
package logging
