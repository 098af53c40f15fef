// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// Ensure WatermillAdapter implements watermill.LoggerAdapter
var _ watermill.LoggerAdapter = (*WatermillAdapter)(nil)

// WatermillAdapter routes Watermill's internal logging to zerolog so the
// event bus logs in the same format as the rest of the service.
//
// Watermill is chatty at Info level (every subscription and router start),
// so Info is logged at debug level.
type WatermillAdapter struct {
	logger zerolog.Logger
}

// NewWatermillAdapter wraps logger for use by Watermill components.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillAdapter(logger zerolog.Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

// Error implements watermill.LoggerAdapter.
func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	withFields(a.logger.Error().Err(err), fields).Msg(msg)
}

// Info implements watermill.LoggerAdapter.
func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	withFields(a.logger.Debug(), fields).Msg(msg)
}

// Debug implements watermill.LoggerAdapter.
func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	withFields(a.logger.Debug(), fields).Msg(msg)
}

// Trace implements watermill.LoggerAdapter.
func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	withFields(a.logger.Trace(), fields).Msg(msg)
}

// With implements watermill.LoggerAdapter.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: a.logger.With().Fields(map[string]interface{}(fields)).Logger()}
}

func withFields(event *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	if len(fields) == 0 {
		return event
	}
	return event.Fields(map[string]interface{}(fields))
}
