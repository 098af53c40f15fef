// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// testLogger returns a no-op logger for tests.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fixtureProducts is the two-product catalog used across tests.
func fixtureProducts() []Product {
	return []Product{
		{Name: "A", Price: 10, Color: "red", Category: "x"},
		{Name: "B", Price: 20, Color: "blue", Category: "y"},
	}
}

// fixtureUsers has one buyer of A and one cold-start user.
func fixtureUsers() []User {
	return []User{
		{Age: 30, Purchases: []Product{{Name: "A"}}},
		{Age: 40, Purchases: []Product{}},
	}
}

// approxEqual compares floats with a small tolerance.
func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// approxSlice compares float slices element-wise.
func approxSlice(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !approxEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// staticSource implements CatalogSource for testing.
type staticSource struct {
	products []Product
	err      error
	calls    atomic.Int32
}

func (s *staticSource) Products(_ context.Context) ([]Product, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return append([]Product(nil), s.products...), nil
}

// stubModel is a linear model: score = sigmoid(w . x).
type stubModel struct {
	weights []float64
}

func (m *stubModel) InputWidth() int { return len(m.weights) }

// stubBackend implements Backend deterministically. Fit sets the weights to
// the mean positive row minus the mean negative row and reports a
// decreasing loss per epoch.
type stubBackend struct {
	fitErr      error
	predictErr  error
	shortScores bool

	// block, when set, holds Fit until it is closed
	block   chan struct{}
	started chan struct{}

	mu         sync.Mutex
	fitCalls   int
	lastConfig TrainConfig
	lastX      [][]float64
	lastY      []float64
	predicts   atomic.Int32
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Fit(ctx context.Context, x [][]float64, y []float64, cfg TrainConfig, onEpoch EpochFunc) (Model, error) {
	b.mu.Lock()
	b.fitCalls++
	b.lastConfig = cfg
	b.lastX = x
	b.lastY = y
	b.mu.Unlock()

	if b.started != nil {
		close(b.started)
	}
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.fitErr != nil {
		return nil, b.fitErr
	}

	width := len(x[0])
	pos := make([]float64, width)
	neg := make([]float64, width)
	var nPos, nNeg float64
	for i, row := range x {
		target := neg
		if y[i] == 1 {
			target = pos
			nPos++
		} else {
			nNeg++
		}
		for j, v := range row {
			target[j] += v
		}
	}

	weights := make([]float64, width)
	for j := range weights {
		if nPos > 0 {
			weights[j] += pos[j] / nPos
		}
		if nNeg > 0 {
			weights[j] -= neg[j] / nNeg
		}
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		onEpoch(epoch, 1/float64(epoch+1), 0.5+0.5*float64(epoch)/float64(cfg.Epochs))
	}

	return &stubModel{weights: weights}, nil
}

func (b *stubBackend) Predict(_ context.Context, m Model, x [][]float64) ([]float64, error) {
	b.predicts.Add(1)
	if b.predictErr != nil {
		return nil, b.predictErr
	}
	model, ok := m.(*stubModel)
	if !ok {
		return nil, errors.New("foreign model")
	}

	n := len(x)
	if b.shortScores {
		n--
	}
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		var dot float64
		for j, v := range x[i] {
			dot += model.weights[j] * v
		}
		scores[i] = 1 / (1 + math.Exp(-dot))
	}
	return scores, nil
}

// recordingListener records every event it receives.
type recordingListener struct {
	mu       sync.Mutex
	progress []ProgressEvent
	epochs   []EpochEvent
	complete []CompletionEvent
	order    []string
}

func (r *recordingListener) OnProgress(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, e)
	r.order = append(r.order, "progress")
}

func (r *recordingListener) OnEpoch(e EpochEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epochs = append(r.epochs, e)
	r.order = append(r.order, "epoch")
}

func (r *recordingListener) OnComplete(e CompletionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complete = append(r.complete, e)
	r.order = append(r.order, "complete")
}

// fastConfig returns the default config with a short training schedule.
func fastConfig() *Config {
	cfg := DefaultConfig()
	cfg.Training.Epochs = 3
	return cfg
}
