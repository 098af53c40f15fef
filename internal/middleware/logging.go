// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/logging"
)

// RequestLogger logs one line per request through logger, tagged with the
// request ID, and stores logger in the context for logging.Ctx. It must run
// after RequestID.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			reqLogger := logger.With().Str("request_id", GetRequestID(r.Context())).Logger()
			ctx := logging.ContextWithLogger(r.Context(), logger)

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			event := reqLogger.Debug()
			if wrapper.statusCode >= http.StatusInternalServerError {
				event = reqLogger.Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
