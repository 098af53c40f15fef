// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"net/http"
	"time"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status           string     `json:"status"`
	Version          string     `json:"version"`
	ModelReady       bool       `json:"model_ready"`
	ModelVersion     int        `json:"model_version"`
	IsTraining       bool       `json:"is_training"`
	LastTrainedAt    *time.Time `json:"last_trained_at,omitempty"`
	WebSocketClients int        `json:"websocket_clients"`
	Uptime           float64    `json:"uptime_seconds"`
}

// Health reports overall service health. The service is "degraded" until
// a model has been trained; it still answers 200 because the process is
// able to accept training requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()

	health := HealthStatus{
		Status:       "healthy",
		Version:      Version,
		ModelReady:   st.ModelVersion > 0,
		ModelVersion: st.ModelVersion,
		IsTraining:   st.IsTraining,
		Uptime:       time.Since(h.startTime).Seconds(),
	}
	if !health.ModelReady {
		health.Status = "degraded"
	}
	if !st.LastTrainedAt.IsZero() {
		trainedAt := st.LastTrainedAt
		health.LastTrainedAt = &trainedAt
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}

	respondSuccess(w, r, http.StatusOK, health, time.Time{})
}

// HealthLive answers liveness probes.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Time{})
}

// HealthReady answers readiness probes: 503 until a model can serve
// recommendations.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()
	if st.ModelVersion == 0 {
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    CodeNoModel,
			Message: "No model has been trained yet",
		}, nil)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"ready":         true,
		"model_version": st.ModelVersion,
	}, time.Time{})
}
