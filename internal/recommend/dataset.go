// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"fmt"
)

// Dataset is the assembled training matrix.
//
// Rows are ordered user-major, product-minor: the rows of the first
// training user come first, each in catalog order. X[i] and Y[i] always
// describe the same (user, product) pair.
type Dataset struct {
	// X holds one concat(userVector, productVector) row per pair.
	X [][]float64

	// Y holds 1 when the row's product was purchased by the row's user.
	Y []float64

	// Width is the row width, 2 x context dimensions.
	Width int

	// Users is the number of training users (users with purchases).
	Users int

	// Products is the catalog size.
	Products int

	// Positives is the number of rows labeled 1.
	Positives int
}

// Rows returns the number of training rows.
func (d *Dataset) Rows() int {
	return len(d.X)
}

// AssembleDataset crosses every user with purchases against every encoded
// catalog product. Cold-start users carry no label signal and are skipped.
// An empty result fails with ErrNoTrainableData rather than handing the
// backend an empty matrix.
func AssembleDataset(enc *Encoder, products []ProductVector) (*Dataset, error) {
	ectx := enc.Context()
	users := ectx.TrainingUsers()
	if len(users) == 0 || len(products) == 0 {
		return nil, fmt.Errorf("%w: %d users with purchases, %d products",
			ErrNoTrainableData, len(users), len(products))
	}

	rows := len(users) * len(products)
	ds := &Dataset{
		X:        make([][]float64, 0, rows),
		Y:        make([]float64, 0, rows),
		Width:    2 * ectx.Dimensions,
		Users:    len(users),
		Products: len(products),
	}

	for i := range users {
		u := users[i]
		userVec, err := enc.EncodeUser(u)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i, err)
		}
		purchased := u.purchasedNames()

		for j := range products {
			ds.X = append(ds.X, concatRow(userVec, products[j].Vector))

			label := 0.0
			if _, ok := purchased[products[j].Name]; ok {
				label = 1
				ds.Positives++
			}
			ds.Y = append(ds.Y, label)
		}
	}

	return ds, nil
}

// concatRow returns a new slice holding user followed by product.
func concatRow(user, product []float64) []float64 {
	row := make([]float64, 0, len(user)+len(product))
	row = append(row, user...)
	return append(row, product...)
}
