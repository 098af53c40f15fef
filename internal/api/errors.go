// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cartwise/internal/recommend"
	"github.com/tomtom215/cartwise/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation         = validation.ErrorCode
	CodeInvalidJSON        = "INVALID_JSON"
	CodeBodyTooLarge       = "BODY_TOO_LARGE"
	CodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	CodeInvalidData        = "INVALID_DATA"
	CodeUnknownCategory    = "UNKNOWN_CATEGORY"
	CodeNoModel            = "NO_MODEL"
	CodeBackendFailure     = "BACKEND_FAILURE"
	CodeTimeout            = "TIMEOUT"
	CodeCanceled           = "CANCELED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// statusClientClosedRequest is the de facto status for requests the client
// abandoned.
const statusClientClosedRequest = 499

// errorMapping ties an engine sentinel to its HTTP status and code.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// engineErrors is checked in order; the first errors.Is match wins.
var engineErrors = []errorMapping{
	{recommend.ErrTrainingInProgress, http.StatusConflict, CodeTrainingInProgress, "A training run is already in progress"},
	{recommend.ErrNoModel, http.StatusServiceUnavailable, CodeNoModel, "No model has been trained yet"},
	{recommend.ErrCatalogFetch, http.StatusBadGateway, CodeCatalogUnavailable, "The product catalog could not be fetched"},
	{recommend.ErrUnknownCategory, http.StatusUnprocessableEntity, CodeUnknownCategory, "A color or category is not in the training vocabulary"},
	{recommend.ErrEmptyInput, http.StatusUnprocessableEntity, CodeInvalidData, "Users or products are empty"},
	{recommend.ErrNoTrainableData, http.StatusUnprocessableEntity, CodeInvalidData, "No user has purchase history"},
	{recommend.ErrBackendTraining, http.StatusInternalServerError, CodeBackendFailure, "The scoring backend failed to train"},
	{recommend.ErrBackendPredict, http.StatusInternalServerError, CodeBackendFailure, "The scoring backend failed to predict"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout, "The operation timed out"},
	{context.Canceled, statusClientClosedRequest, CodeCanceled, "The request was canceled"},
}

// classifyError maps an engine error to an HTTP status and API error.
// Unknown errors become 500 INTERNAL_ERROR. The pipeline stage, when
// known, is reported under details.stage.
func classifyError(err error) (int, *APIError) {
	status, apiErr := http.StatusInternalServerError, &APIError{
		Code:    CodeInternal,
		Message: "Internal server error",
	}

	for _, m := range engineErrors {
		if errors.Is(err, m.target) {
			status = m.status
			apiErr = &APIError{Code: m.code, Message: m.message}
			break
		}
	}

	if stage := recommend.StageOf(err); stage != "" {
		apiErr.Details = map[string]interface{}{"stage": string(stage)}
	}
	return status, apiErr
}
