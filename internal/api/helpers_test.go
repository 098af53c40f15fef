// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/config"
	"github.com/tomtom215/cartwise/internal/recommend"
	ws "github.com/tomtom215/cartwise/internal/websocket"
)

// fakeEngine is a hand-written Engine stub.
type fakeEngine struct {
	mu          sync.Mutex
	trainFn     func(ctx context.Context, users []recommend.User) (*recommend.TrainingResult, error)
	recommendFn func(ctx context.Context, user recommend.User) (*recommend.Recommendation, error)
	status      recommend.TrainingStatus

	trainedUsers []recommend.User
	trainCtxErr  error
	lastUser     recommend.User
}

func (f *fakeEngine) Train(ctx context.Context, users []recommend.User, _ recommend.Listener) (*recommend.TrainingResult, error) {
	f.mu.Lock()
	f.trainedUsers = users
	f.trainCtxErr = ctx.Err()
	fn := f.trainFn
	f.mu.Unlock()

	if fn == nil {
		return &recommend.TrainingResult{RunID: "run-1", ModelVersion: 1, Users: len(users)}, nil
	}
	return fn(ctx, users)
}

func (f *fakeEngine) Recommend(ctx context.Context, user recommend.User) (*recommend.Recommendation, error) {
	f.mu.Lock()
	f.lastUser = user
	fn := f.recommendFn
	f.mu.Unlock()

	if fn == nil {
		return nil, recommend.ErrNoModel
	}
	return fn(ctx, user)
}

func (f *fakeEngine) Status() recommend.TrainingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// rankedCatalog returns a recommendation over n products with descending scores.
func rankedCatalog(n int) *recommend.Recommendation {
	rec := &recommend.Recommendation{TotalProducts: n, ModelVersion: 3, RunID: "run-3"}
	for i := 0; i < n; i++ {
		rec.Items = append(rec.Items, recommend.ScoredProduct{
			Product: recommend.Product{Name: string(rune('a' + i)), Price: float64(10 * (i + 1))},
			Score:   1 - float64(i)/float64(n),
		})
	}
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"http://allowed.local"},
			RateLimitReqs:     1000,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
		},
	}
}

// newTestRouter builds the full chi handler around engine.
func newTestRouter(t *testing.T, engine Engine, hub *ws.Hub, cfg *config.Config) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	handler := NewHandler(engine, hub, cfg, zerolog.Nop())
	mw := NewChiMiddleware(ChiMiddlewareConfigFromConfig(cfg))
	return NewRouter(handler, mw, zerolog.Nop()).SetupChi()
}

// envelope mirrors APIResponse with raw data for decoding in tests.
type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Error    *APIError       `json:"error"`
	Metadata Metadata        `json:"metadata"`
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, env
}
