// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"fmt"
)

// EncodingContext is the snapshot of value ranges, categorical vocabularies
// and implicit signals shared by every encoding of one training run.
//
// A context is immutable once built and must not be modified by callers.
// When the user or product collections change, build a new one: indices
// and ranges are not incrementally updatable.
type EncodingContext struct {
	// Numeric ranges observed across the users and the catalog.
	MinAge   float64
	MaxAge   float64
	MinPrice float64
	MaxPrice float64

	// Colors and Categories hold distinct values in first-seen order.
	// The order defines one-hot positions.
	Colors     []string
	Categories []string

	// ColorIndex and CategoryIndex map a value to its one-hot position.
	ColorIndex    map[string]int
	CategoryIndex map[string]int

	// Dimensions is 2 + len(Colors) + len(Categories).
	Dimensions int

	// ProductAvgAgeNorm maps a product name to the normalized average age
	// of its buyers, or the normalized age midpoint when nobody bought it.
	ProductAvgAgeNorm map[string]float64

	// Products and Users are the collections the context was built from.
	Products []Product
	Users    []User

	// productByName maps a name to the first catalog entry carrying it.
	productByName map[string]int
}

// BuildContext derives an EncodingContext from the full user and product
// collections. Both must be non-empty, otherwise the normalization ranges
// are undefined and ErrEmptyInput is returned.
func BuildContext(users []User, products []Product) (*EncodingContext, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no users", ErrEmptyInput)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products", ErrEmptyInput)
	}

	c := &EncodingContext{
		ColorIndex:        make(map[string]int),
		CategoryIndex:     make(map[string]int),
		ProductAvgAgeNorm: make(map[string]float64, len(products)),
		Products:          products,
		Users:             users,
		productByName:     make(map[string]int, len(products)),
	}

	c.MinAge, c.MaxAge = users[0].Age, users[0].Age
	for i := range users {
		c.MinAge = min(c.MinAge, users[i].Age)
		c.MaxAge = max(c.MaxAge, users[i].Age)
	}

	c.MinPrice, c.MaxPrice = products[0].Price, products[0].Price
	for i := range products {
		p := &products[i]
		c.MinPrice = min(c.MinPrice, p.Price)
		c.MaxPrice = max(c.MaxPrice, p.Price)

		if _, ok := c.ColorIndex[p.Color]; !ok {
			c.ColorIndex[p.Color] = len(c.Colors)
			c.Colors = append(c.Colors, p.Color)
		}
		if _, ok := c.CategoryIndex[p.Category]; !ok {
			c.CategoryIndex[p.Category] = len(c.Categories)
			c.Categories = append(c.Categories, p.Category)
		}
		if _, ok := c.productByName[p.Name]; !ok {
			c.productByName[p.Name] = i
		}
	}

	c.Dimensions = 2 + len(c.Colors) + len(c.Categories)
	c.computeAverageBuyerAge()

	return c, nil
}

// computeAverageBuyerAge fills ProductAvgAgeNorm. Purchases are keyed by
// product name, not by record identity.
func (c *EncodingContext) computeAverageBuyerAge() {
	type ageSum struct {
		sum   float64
		count int
	}

	sums := make(map[string]*ageSum)
	for i := range c.Users {
		u := &c.Users[i]
		for j := range u.Purchases {
			name := u.Purchases[j].Name
			s, ok := sums[name]
			if !ok {
				s = &ageSum{}
				sums[name] = s
			}
			s.sum += u.Age
			s.count++
		}
	}

	midAge := (c.MinAge + c.MaxAge) / 2
	for i := range c.Products {
		name := c.Products[i].Name
		avg := midAge
		if s, ok := sums[name]; ok && s.count > 0 {
			avg = s.sum / float64(s.count)
		}
		c.ProductAvgAgeNorm[name] = Normalize(avg, c.MinAge, c.MaxAge)
	}
}

// NormalizeAge scales an age against the context's age range.
func (c *EncodingContext) NormalizeAge(age float64) float64 {
	return Normalize(age, c.MinAge, c.MaxAge)
}

// NormalizePrice scales a price against the context's price range.
func (c *EncodingContext) NormalizePrice(price float64) float64 {
	return Normalize(price, c.MinPrice, c.MaxPrice)
}

// CategoryOffset is the index of the first category one-hot position.
func (c *EncodingContext) CategoryOffset() int {
	return 2
}

// ColorOffset is the index of the first color one-hot position.
func (c *EncodingContext) ColorOffset() int {
	return 2 + len(c.Categories)
}

// LookupProduct returns the catalog record with the given name.
func (c *EncodingContext) LookupProduct(name string) (Product, bool) {
	idx, ok := c.productByName[name]
	if !ok {
		return Product{}, false
	}
	return c.Products[idx], true
}

// TrainingUsers returns the users with purchase history, in input order.
func (c *EncodingContext) TrainingUsers() []User {
	users := make([]User, 0, len(c.Users))
	for i := range c.Users {
		if c.Users[i].HasPurchases() {
			users = append(users, c.Users[i])
		}
	}
	return users
}
