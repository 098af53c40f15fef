// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package mlp

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cartwise/internal/recommend"
)

// Name is the backend name reported in training results.
const Name = "mlp"

// predictChunk is the number of rows scored per errgroup task.
const predictChunk = 256

var (
	// ErrInvalidDataset is returned by Fit for empty or ragged input.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrModelMismatch is returned by Predict for a foreign model or a row
	// whose width differs from the model input width.
	ErrModelMismatch = errors.New("model mismatch")
)

// Backend trains and serves Network models. It holds no per-model state
// and may be shared between engines.
type Backend struct {
	logger  zerolog.Logger
	workers int
}

// New creates a new MLP backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(logger zerolog.Logger) *Backend {
	return &Backend{
		logger:  logger.With().Str("component", "mlp").Logger(),
		workers: runtime.GOMAXPROCS(0),
	}
}

// Name implements recommend.Backend.
func (b *Backend) Name() string {
	return Name
}

// Fit trains a new network on x and y.
//
// The context is checked between mini-batches; a canceled or expired
// context stops training and returns the context error. onEpoch is called
// once per completed epoch with the mean loss and the accuracy at a 0.5
// threshold.
func (b *Backend) Fit(ctx context.Context, x [][]float64, y []float64, cfg recommend.TrainConfig, onEpoch recommend.EpochFunc) (recommend.Model, error) {
	width, err := validateDataset(x, y)
	if err != nil {
		return nil, err
	}
	if cfg.Epochs < 1 || cfg.BatchSize < 1 || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("%w: epochs %d, batch size %d, learning rate %v",
			ErrInvalidDataset, cfg.Epochs, cfg.BatchSize, cfg.LearningRate)
	}

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(cfg.Seed))

	net := newNetwork(width, cfg.HiddenUnits, rng)
	opt := newAdam(net, cfg.LearningRate)
	act := net.newActivations()
	grads := net.newGradients()

	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}

	start := time.Now()
	b.logger.Debug().
		Int("rows", len(x)).
		Int("width", width).
		Ints("hidden_units", cfg.HiddenUnits).
		Int("parameters", net.Parameters()).
		Int("epochs", cfg.Epochs).
		Msg("fitting network")

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if cfg.Shuffle {
			rng.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		var lossSum float64
		var correct int

		for batchStart := 0; batchStart < len(order); batchStart += cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			batchEnd := min(batchStart+cfg.BatchSize, len(order))
			grads.reset()
			for _, idx := range order[batchStart:batchEnd] {
				p := net.forward(x[idx], act)
				lossSum += binaryCrossEntropy(p, y[idx])
				if (p >= 0.5) == (y[idx] >= 0.5) {
					correct++
				}
				net.backward(x[idx], y[idx], act, grads)
			}
			opt.apply(net, grads, batchEnd-batchStart)
		}

		loss := lossSum / float64(len(order))
		accuracy := float64(correct) / float64(len(order))
		if onEpoch != nil {
			onEpoch(epoch, loss, accuracy)
		}
	}

	b.logger.Debug().
		Dur("duration", time.Since(start)).
		Msg("network fitted")

	return net, nil
}

// Predict scores every row of x with m. Rows are split into chunks scored
// concurrently; the result keeps row order.
func (b *Backend) Predict(ctx context.Context, m recommend.Model, x [][]float64) ([]float64, error) {
	net, ok := m.(*Network)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not an mlp network", ErrModelMismatch, m)
	}
	for i, row := range x {
		if len(row) != net.inputWidth {
			return nil, fmt.Errorf("%w: row %d has width %d, model expects %d",
				ErrModelMismatch, i, len(row), net.inputWidth)
		}
	}

	scores := make([]float64, len(x))
	if len(x) <= predictChunk {
		act := net.newActivations()
		for i, row := range x {
			scores[i] = net.forward(row, act)
		}
		return scores, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.workers, 1))

	for start := 0; start < len(x); start += predictChunk {
		end := min(start+predictChunk, len(x))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			act := net.newActivations()
			for i := start; i < end; i++ {
				scores[i] = net.forward(x[i], act)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// validateDataset checks that x is non-empty and rectangular and that y
// labels every row. It returns the row width.
func validateDataset(x [][]float64, y []float64) (int, error) {
	if len(x) == 0 {
		return 0, fmt.Errorf("%w: no rows", ErrInvalidDataset)
	}
	if len(y) != len(x) {
		return 0, fmt.Errorf("%w: %d rows but %d labels", ErrInvalidDataset, len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return 0, fmt.Errorf("%w: zero-width rows", ErrInvalidDataset)
	}
	for i, row := range x {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has width %d, expected %d", ErrInvalidDataset, i, len(row), width)
		}
	}
	return width, nil
}
