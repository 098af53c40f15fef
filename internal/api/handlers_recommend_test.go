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
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/recommend"
)

func TestTrain_Success(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	h := newTestRouter(t, engine, nil, nil)

	body := map[string]interface{}{
		"users": []map[string]interface{}{
			{"id": "u1", "age": 34, "purchases": []map[string]interface{}{{"name": "Boots"}}},
			{"age": 51},
		},
	}
	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/train", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if env.Status != StatusSuccess {
		t.Errorf("envelope status = %q", env.Status)
	}

	var result recommend.TrainingResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.RunID != "run-1" || result.Users != 2 {
		t.Errorf("result = %+v", result)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.trainedUsers) != 2 {
		t.Fatalf("trained users = %d, want 2", len(engine.trainedUsers))
	}
	first := engine.trainedUsers[0]
	if first.ID != "u1" || first.Age != 34 || len(first.Purchases) != 1 || first.Purchases[0].Name != "Boots" {
		t.Errorf("first user = %+v", first)
	}
	if engine.trainedUsers[1].Purchases != nil {
		t.Errorf("cold-start user purchases = %v, want nil", engine.trainedUsers[1].Purchases)
	}
}

func TestTrain_DetachedFromClientCancel(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	handler := NewHandler(engine, nil, testConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/train", strings.NewReader(`{"users":[{"age":20}]}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.Train(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.trainCtxErr != nil {
		t.Errorf("engine saw ctx error %v, want detached context", engine.trainCtxErr)
	}
}

func TestTrain_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		trainErr   error
		wantStatus int
		wantCode   string
		wantStage  string
	}{
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidJSON,
		},
		{
			name:       "malformed json",
			body:       `{"users": [`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidJSON,
		},
		{
			name:       "no users",
			body:       `{"users": []}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "age out of range",
			body:       `{"users": [{"age": 200}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "purchase without name",
			body:       `{"users": [{"age": 20, "purchases": [{"price": 3}]}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "in progress",
			body:       `{"users": [{"age": 20}]}`,
			trainErr:   recommend.ErrTrainingInProgress,
			wantStatus: http.StatusConflict,
			wantCode:   CodeTrainingInProgress,
		},
		{
			name:       "catalog down",
			body:       `{"users": [{"age": 20}]}`,
			trainErr:   &recommend.StageError{Stage: recommend.StageFetch, Err: fmt.Errorf("%w: status 500", recommend.ErrCatalogFetch)},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeCatalogUnavailable,
			wantStage:  "fetch",
		},
		{
			name:       "no trainable data",
			body:       `{"users": [{"age": 20}]}`,
			trainErr:   &recommend.StageError{Stage: recommend.StageDataset, Err: recommend.ErrNoTrainableData},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeInvalidData,
			wantStage:  "dataset",
		},
		{
			name:       "backend failure",
			body:       `{"users": [{"age": 20}]}`,
			trainErr:   &recommend.StageError{Stage: recommend.StageTrain, Err: recommend.ErrBackendTraining},
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeBackendFailure,
			wantStage:  "train",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{}
			if tt.trainErr != nil {
				engine.trainFn = func(context.Context, []recommend.User) (*recommend.TrainingResult, error) {
					return nil, tt.trainErr
				}
			}
			h := newTestRouter(t, engine, nil, nil)

			rec, env := doRequest(t, h, http.MethodPost, "/api/v1/train", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if env.Status != StatusError || env.Error == nil {
				t.Fatalf("envelope = %+v, want error", env)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if tt.wantStage != "" && env.Error.Details["stage"] != tt.wantStage {
				t.Errorf("details.stage = %v, want %q", env.Error.Details["stage"], tt.wantStage)
			}
			if strings.Contains(rec.Body.String(), "status 500") {
				t.Error("internal error text leaked to the client")
			}
		})
	}
}

func TestRecommend_Success(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		recommendFn: func(context.Context, recommend.User) (*recommend.Recommendation, error) {
			return rankedCatalog(5), nil
		},
	}
	h := newTestRouter(t, engine, nil, nil)

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/recommend",
		`{"user": {"age": 30, "purchases": [{"name": "a"}]}, "limit": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var got struct {
		Items []struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
		} `json:"items"`
		TotalProducts int `json:"total_products"`
		ModelVersion  int `json:"model_version"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Name != "a" || got.Items[1].Name != "b" {
		t.Errorf("order = %q, %q", got.Items[0].Name, got.Items[1].Name)
	}
	if got.TotalProducts != 5 || got.ModelVersion != 3 {
		t.Errorf("total/version = %d/%d", got.TotalProducts, got.ModelVersion)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.lastUser.Age != 30 || len(engine.lastUser.Purchases) != 1 {
		t.Errorf("engine user = %+v", engine.lastUser)
	}
}

func TestRecommend_LimitZeroReturnsAll(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		recommendFn: func(context.Context, recommend.User) (*recommend.Recommendation, error) {
			return rankedCatalog(4), nil
		},
	}
	h := newTestRouter(t, engine, nil, nil)

	_, env := doRequest(t, h, http.MethodPost, "/api/v1/recommend", `{"user": {"age": 0}}`)

	var got struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 4 {
		t.Errorf("items = %d, want full catalog of 4", len(got.Items))
	}
}

func TestRecommend_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing user", `{"limit": 3}`, nil, http.StatusBadRequest, CodeValidation},
		{"negative limit", `{"user": {"age": 3}, "limit": -1}`, nil, http.StatusBadRequest, CodeValidation},
		{"untrained", `{"user": {"age": 3}}`, recommend.ErrNoModel, http.StatusServiceUnavailable, CodeNoModel},
		{"strict oov", `{"user": {"age": 3}}`,
			&recommend.StageError{Stage: recommend.StageEncode, Err: recommend.ErrUnknownCategory},
			http.StatusUnprocessableEntity, CodeUnknownCategory},
		{"predict failure", `{"user": {"age": 3}}`,
			&recommend.StageError{Stage: recommend.StagePredict, Err: recommend.ErrBackendPredict},
			http.StatusInternalServerError, CodeBackendFailure},
		{"deadline", `{"user": {"age": 3}}`, context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout},
		{"unknown", `{"user": {"age": 3}}`, errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{}
			if tt.err != nil {
				engine.recommendFn = func(context.Context, recommend.User) (*recommend.Recommendation, error) {
					return nil, tt.err
				}
			}
			h := newTestRouter(t, engine, nil, nil)

			rec, env := doRequest(t, h, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", env.Error, tt.wantCode)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{status: recommend.TrainingStatus{IsTraining: true, Progress: 50, CurrentRunID: "r9"}}
	h := newTestRouter(t, engine, nil, nil)

	rec, env := doRequest(t, h, http.MethodGet, "/api/v1/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var st recommend.TrainingStatus
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.IsTraining || st.Progress != 50 || st.CurrentRunID != "r9" {
		t.Errorf("status = %+v", st)
	}
}
