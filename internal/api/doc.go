// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package api is the HTTP surface of the recommendation service.

Routes are served by chi. Every JSON response uses one envelope:

	{
	  "status": "success" | "error",
	  "data": ...,
	  "error": {"code": "NO_MODEL", "message": "...", "details": {"stage": "predict"}},
	  "metadata": {"timestamp": "...", "request_id": "...", "query_time_ms": 12}
	}

Engine errors map to statuses by sentinel:

	ErrTrainingInProgress   409 TRAINING_IN_PROGRESS
	ErrNoModel              503 NO_MODEL
	ErrCatalogFetch         502 CATALOG_UNAVAILABLE
	ErrUnknownCategory      422 UNKNOWN_CATEGORY
	ErrEmptyInput           422 INVALID_DATA
	ErrNoTrainableData      422 INVALID_DATA
	ErrBackendTraining      500 BACKEND_FAILURE
	ErrBackendPredict       500 BACKEND_FAILURE
	context.DeadlineExceeded 504 TIMEOUT

Request bodies are decoded with goccy/go-json and validated with the
validation package before they reach the engine; validation failures are
400 VALIDATION_ERROR with the failing JSON path in details.field.

POST /train holds the connection until the run finishes. Clients that want
live progress open GET /ws first and receive training_progress,
training_epoch and training_complete frames for every run.
*/
package api
