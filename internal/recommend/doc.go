// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

// Package recommend implements the feature-encoding and dataset pipeline
// behind personalized product recommendations.
//
// # Pipeline
//
// Raw users and catalog products flow through the following stages:
//
//   - BuildContext: value ranges, first-seen categorical vocabularies and
//     the per-product average buyer age (the implicit signal)
//   - Encoder: fixed-width weighted vectors laid out as
//     [age, price, category one-hot, color one-hot]
//   - AssembleDataset: every user with purchases crossed with every
//     product, labeled 1 when the user bought the product
//   - Backend: an external trainer/predictor fitted on the matrix
//   - Engine.Recommend: one user row per product, scored in one batch and
//     stable-sorted by score
//
// # Policies
//
// Two encoding behaviors are configurable:
//
//   - Aggregation: how a user's purchase vectors fold into one vector.
//     The default is the element-wise minimum; mean and max are available.
//   - OOVPolicy: unknown colors and categories encode as zeros by default,
//     or fail with ErrUnknownCategory under OOVStrict.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), source, backend, logger)
//	if err != nil {
//	    return err
//	}
//
//	result, err := engine.Train(ctx, users, listener)
//	rec, err := engine.Recommend(ctx, recommend.User{Age: 30})
//
// # Thread Safety
//
// The Engine is safe for concurrent use. Training runs are serialized and
// publish their output as one immutable snapshot; Recommend reads the
// current snapshot without waiting for an in-flight run.
//
// # Errors
//
// Pipeline errors are *StageError values wrapping a sentinel such as
// ErrNoTrainableData or ErrBackendPredict, so callers can tell data
// problems from backend problems.
package recommend
