// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

// Package validation wraps go-playground/validator for API request structs.
//
// Example:
//
//	type RecommendRequest struct {
//	    User  UserRequest `json:"user" validate:"required"`
//	    Limit int         `json:"limit" validate:"gte=0,lte=10000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrorCode is the API error code reported for validation failures.
const ErrorCode = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError describes one failed field constraint.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the JSON path of the failing field, e.g. users[2].age.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the failed validation tag.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the tag parameter, if any.
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the rejected value.
func (e *ValidationError) Value() interface{} {
	return e.value
}

func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects every failed constraint of a request.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(ve.errors))
	for i := range ve.errors {
		messages[i] = ve.errors[i].message
	}
	return strings.Join(messages, "; ")
}

// APIError is the transport-neutral form of a validation failure.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the validation errors into an APIError. A single
// failure reports its field, tag and value; several failures are listed
// under details.fields.
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.errors) {
	case 0:
		return &APIError{Code: ErrorCode, Message: "Validation failed"}
	case 1:
		err := ve.errors[0]
		return &APIError{
			Code:    ErrorCode,
			Message: err.message,
			Details: map[string]interface{}{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
	}

	return &APIError{
		Code:    ErrorCode,
		Message: ve.Error(),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator. Field names in errors are the
// JSON names, and the non-standard notblank tag is registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("register notblank validator: %v", err))
		}
	})

	return validate
}

// ValidateStruct validates s. It returns nil on success.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		path := fieldPath(fieldErr)
		fieldErrors[i] = ValidationError{
			field:   path,
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr, path),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// fieldPath strips the root struct name from the error namespace:
// TrainRequest.users[0].age becomes users[0].age.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"notblank": "%s must not be blank",
	"url":      "%s must be a valid URL",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError, field string) string {
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max with messages specific to strings,
// collections and numbers.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}

	switch tag {
	case "min":
		return fmt.Sprintf("%s must have at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must have at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
