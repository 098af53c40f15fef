// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors. Pipeline failures are returned wrapped in a *StageError,
// so callers match them with errors.Is and recover the stage with errors.As.
var (
	// ErrEmptyInput is returned when the user or product collection is empty
	// at context-build time and the normalization ranges are undefined.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoTrainableData is returned when no user has purchase history.
	ErrNoTrainableData = errors.New("no trainable data")

	// ErrUnknownCategory is returned under the strict out-of-vocabulary
	// policy when a color or category is absent from the context vocabulary.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrNoModel is returned by Recommend before any training has completed.
	ErrNoModel = errors.New("no trained model")

	// ErrBackendTraining wraps failures reported by Backend.Fit.
	ErrBackendTraining = errors.New("backend training failed")

	// ErrBackendPredict wraps failures reported by Backend.Predict.
	ErrBackendPredict = errors.New("backend prediction failed")

	// ErrCatalogFetch wraps failures of the catalog source.
	ErrCatalogFetch = errors.New("catalog fetch failed")

	// ErrTrainingInProgress is returned when a run is requested while
	// another one is still in flight.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// Stage identifies the pipeline step an error came from.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageContext Stage = "context"
	StageEncode  Stage = "encode"
	StageDataset Stage = "dataset"
	StageTrain   Stage = "train"
	StagePredict Stage = "predict"
)

// StageError tags an error with the pipeline stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// stageErr wraps err in a StageError. Nil stays nil, and an error already
// tagged keeps its original stage.
func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, or "" if there is none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
