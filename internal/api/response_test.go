// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/cartwise/internal/recommend"
)

func TestRespondJSON_Headers(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, &APIResponse{Status: StatusSuccess, Data: map[string]int{"n": 1}})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag missing")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", rec.Header().Get("Cache-Control"))
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	a := generateETag([]byte(`{"a":1}`))
	if a != generateETag([]byte(`{"a":1}`)) {
		t.Error("ETag not deterministic")
	}
	if a == generateETag([]byte(`{"a":2}`)) {
		t.Error("ETag collision for different bodies")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Errorf("ETag %s is not quoted", a)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantStage  string
	}{
		{"in progress", recommend.ErrTrainingInProgress, http.StatusConflict, CodeTrainingInProgress, ""},
		{"no model", recommend.ErrNoModel, http.StatusServiceUnavailable, CodeNoModel, ""},
		{"empty input", &recommend.StageError{Stage: recommend.StageContext, Err: recommend.ErrEmptyInput},
			http.StatusUnprocessableEntity, CodeInvalidData, "context"},
		{"wrapped catalog", fmt.Errorf("outer: %w", &recommend.StageError{Stage: recommend.StageFetch, Err: recommend.ErrCatalogFetch}),
			http.StatusBadGateway, CodeCatalogUnavailable, "fetch"},
		{"train deadline", &recommend.StageError{Stage: recommend.StageTrain, Err: context.DeadlineExceeded},
			http.StatusGatewayTimeout, CodeTimeout, "train"},
		{"canceled", context.Canceled, statusClientClosedRequest, CodeCanceled, ""},
		{"unknown", errors.New("x"), http.StatusInternalServerError, CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, apiErr := classifyError(tt.err)
			if status != tt.wantStatus || apiErr.Code != tt.wantCode {
				t.Errorf("classifyError() = %d %q, want %d %q", status, apiErr.Code, tt.wantStatus, tt.wantCode)
			}
			if tt.wantStage == "" {
				if apiErr.Details != nil {
					t.Errorf("Details = %v, want nil", apiErr.Details)
				}
				return
			}
			if apiErr.Details["stage"] != tt.wantStage {
				t.Errorf("stage = %v, want %q", apiErr.Details["stage"], tt.wantStage)
			}
		})
	}
}

func TestRequestConversion(t *testing.T) {
	t.Parallel()

	req := TrainRequest{Users: []UserRequest{
		{ID: "u1", Age: 40, Purchases: []PurchaseRequest{{Name: "Hat", Price: 12, Color: "red", Category: "apparel"}}},
		{Age: 22},
	}}

	users := req.ToUsers()
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}
	p := users[0].Purchases[0]
	if p.Name != "Hat" || p.Price != 12 || p.Color != "red" || p.Category != "apparel" {
		t.Errorf("purchase = %+v", p)
	}
	if users[1].HasPurchases() {
		t.Error("second user should be cold-start")
	}
}
