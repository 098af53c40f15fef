// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package mlp provides the default scoring backend: a fully connected
feed-forward network trained in-process.

The network maps one concat(user, product) row to a purchase probability.
Hidden layers use ReLU, the output unit uses a sigmoid, and training
minimizes binary cross-entropy with the Adam optimizer over shuffled
mini-batches.

# Architecture

For hidden units [128, 64, 32] and a 12-wide input:

	12 -> 128 (relu) -> 64 (relu) -> 32 (relu) -> 1 (sigmoid)

Weights are drawn from a Glorot uniform distribution using a seeded
source, so two runs with the same seed and dataset produce identical
models.

# Usage

	backend := mlp.New(logger)
	engine, err := recommend.NewEngine(cfg, source, backend, logger)

# Thread Safety

A trained Network is immutable and Predict may be called concurrently.
Predict fans large batches out over a bounded errgroup.
*/
package mlp
