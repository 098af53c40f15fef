// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartwise/internal/logging"
	"github.com/tomtom215/cartwise/internal/middleware"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// APIError is the error part of the envelope.
type APIError struct {
	// Code is a stable machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details carries optional context such as the failing field or
	// pipeline stage.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Metadata is attached to every response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// newMetadata builds response metadata for r. start may be zero.
func newMetadata(r *http.Request, start time.Time) Metadata {
	md := Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r.Context()),
	}
	if !start.IsZero() {
		md.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return md
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &APIResponse{
		Status:   StatusSuccess,
		Data:     data,
		Metadata: newMetadata(r, start),
	})
}

// respondError sends an error envelope. A non-nil err is logged with the
// request's correlation fields and never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", apiErr.Code).
			Str("error", sanitizeLogValue(err.Error())).
			Int("status", status).
			Msg("API error")
	}

	respondJSON(w, status, &APIResponse{
		Status:   StatusError,
		Error:    apiErr,
		Metadata: newMetadata(r, time.Time{}),
	})
}

// generateETag creates a simple ETag from data using FNV-1a hash.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// sanitizeLogValue escapes control characters so client-influenced text
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
