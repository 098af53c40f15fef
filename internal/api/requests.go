// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartwise/internal/recommend"
	"github.com/tomtom215/cartwise/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// PurchaseRequest is one purchase. Only the name is required; the engine
// resolves the remaining fields from the catalog by name.
type PurchaseRequest struct {
	Name     string  `json:"name" validate:"required,notblank,max=256"`
	Price    float64 `json:"price" validate:"gte=0"`
	Color    string  `json:"color" validate:"max=128"`
	Category string  `json:"category" validate:"max=128"`
}

// UserRequest is a shopper.
type UserRequest struct {
	ID        string            `json:"id,omitempty" validate:"max=128"`
	Age       float64           `json:"age" validate:"gte=0,lte=150"`
	Purchases []PurchaseRequest `json:"purchases" validate:"max=10000,dive"`
}

// TrainRequest is the body of POST /api/v1/train.
type TrainRequest struct {
	Users []UserRequest `json:"users" validate:"required,min=1,max=100000,dive"`
}

// RecommendRequest is the body of POST /api/v1/recommend. Limit 0 returns
// the full ranked catalog.
type RecommendRequest struct {
	User  *UserRequest `json:"user" validate:"required"`
	Limit int          `json:"limit" validate:"gte=0,lte=10000"`
}

// ToUser converts the request to the engine's user type.
func (u *UserRequest) ToUser() recommend.User {
	user := recommend.User{ID: u.ID, Age: u.Age}
	if len(u.Purchases) > 0 {
		user.Purchases = make([]recommend.Product, len(u.Purchases))
		for i, p := range u.Purchases {
			user.Purchases[i] = recommend.Product{
				Name:     p.Name,
				Price:    p.Price,
				Color:    p.Color,
				Category: p.Category,
			}
		}
	}
	return user
}

// ToUsers converts every user of the request.
func (r *TrainRequest) ToUsers() []recommend.User {
	users := make([]recommend.User, len(r.Users))
	for i := range r.Users {
		users[i] = r.Users[i].ToUser()
	}
	return users
}

// decodeRequest reads a JSON body into dst and validates it. On failure it
// writes the error response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, r, http.StatusRequestEntityTooLarge, &APIError{
				Code:    CodeBodyTooLarge,
				Message: fmt.Sprintf("Request body exceeds %d bytes", maxBodyBytes),
			}, nil)
		case errors.Is(err, io.EOF):
			respondError(w, r, http.StatusBadRequest, &APIError{
				Code:    CodeInvalidJSON,
				Message: "Request body is empty",
			}, nil)
		default:
			respondError(w, r, http.StatusBadRequest, &APIError{
				Code:    CodeInvalidJSON,
				Message: "Request body is not valid JSON",
			}, nil)
		}
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil)
		return false
	}
	return true
}
