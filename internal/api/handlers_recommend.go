// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cartwise/internal/logging"
	"github.com/tomtom215/cartwise/internal/metrics"
)

// Train runs a training pipeline on the posted users and returns the
// TrainingResult. Progress streams over the websocket while the request is
// open.
//
// The run is detached from client cancellation: a client that disconnects
// does not abort a run that already holds the training lock. The engine's
// own training timeout still applies.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TrainRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ctx := context.WithoutCancel(r.Context())
	result, err := h.engine.Train(ctx, req.ToUsers(), nil)
	if err != nil {
		status, apiErr := classifyError(err)
		respondError(w, r, status, apiErr, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("run_id", result.RunID).
		Int("model_version", result.ModelVersion).
		Int("users", result.Users).
		Int("products", result.Products).
		Msg("Training request completed")

	respondSuccess(w, r, http.StatusOK, result, start)
}

// Recommend ranks the catalog for the posted user.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecommendRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user := req.User.ToUser()
	rec, err := h.engine.Recommend(r.Context(), user)
	if err != nil {
		metrics.RecordRecommendation("error", !user.HasPurchases(), time.Since(start))
		status, apiErr := classifyError(err)
		respondError(w, r, status, apiErr, err)
		return
	}

	if req.Limit > 0 && req.Limit < len(rec.Items) {
		rec.Items = rec.Items[:req.Limit]
	}

	result := "success"
	if rec.CacheHit {
		result = "cache_hit"
	}
	metrics.RecordRecommendation(result, rec.ColdStart, time.Since(start))

	respondSuccess(w, r, http.StatusOK, rec, start)
}

// Status reports the training lifecycle of the engine.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.engine.Status(), time.Time{})
}
