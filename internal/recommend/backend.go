// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"context"
)

// Model is a fitted scoring model. It is opaque to the engine and only
// ever handed back to the Backend that produced it.
type Model interface {
	// InputWidth is the row width the model was fitted on.
	InputWidth() int
}

// EpochFunc receives per-epoch training metrics. Backends call it
// synchronously once per completed epoch; epoch is 0-based.
type EpochFunc func(epoch int, loss, accuracy float64)

// Backend trains a binary classifier on assembled rows and scores new rows.
// The vectorization pipeline depends only on this contract, so any
// conforming numeric library can be plugged in.
type Backend interface {
	// Name identifies the backend in logs and training results.
	Name() string

	// Fit trains a model on x with labels y. Fit must honor ctx
	// cancellation between epochs and must be deterministic for a fixed
	// cfg.Seed.
	Fit(ctx context.Context, x [][]float64, y []float64, cfg TrainConfig, onEpoch EpochFunc) (Model, error)

	// Predict returns one probability in [0,1] per row of x. It has no
	// side effects on the model.
	Predict(ctx context.Context, m Model, x [][]float64) ([]float64, error)
}

// CatalogSource supplies the product catalog for a training run.
type CatalogSource interface {
	Products(ctx context.Context) ([]Product, error)
}

// CatalogSourceFunc adapts a function to CatalogSource.
type CatalogSourceFunc func(ctx context.Context) ([]Product, error)

// Products implements CatalogSource.
func (f CatalogSourceFunc) Products(ctx context.Context) ([]Product, error) {
	return f(ctx)
}
