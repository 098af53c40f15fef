// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"fmt"
)

// defaultAvgAgeNorm is the age signal for products unknown to the context.
const defaultAvgAgeNorm = 0.5

// Encoder maps products and users into fixed-width weighted feature vectors.
//
// Both vector kinds share one layout so they can be concatenated
// positionally:
//
//	[age, price, category one-hot..., color one-hot...]
//
// An Encoder is bound to one EncodingContext and is safe for concurrent use.
type Encoder struct {
	ctx     *EncodingContext
	weights FeatureWeights
	oov     OOVPolicy
	agg     Aggregator
}

// NewEncoder binds an encoder to ectx using the weights, out-of-vocabulary
// policy and aggregation strategy in cfg.
func NewEncoder(ectx *EncodingContext, cfg *EncodingConfig) (*Encoder, error) {
	if ectx == nil {
		return nil, fmt.Errorf("encoding context is nil")
	}
	if cfg == nil {
		def := DefaultConfig().Encoding
		cfg = &def
	}

	agg, err := AggregatorByName(cfg.Aggregation)
	if err != nil {
		return nil, err
	}

	if !cfg.OOVPolicy.Valid() {
		return nil, fmt.Errorf("unknown oov policy %q", cfg.OOVPolicy)
	}

	return &Encoder{
		ctx:     ectx,
		weights: cfg.Weights,
		oov:     cfg.OOVPolicy,
		agg:     agg,
	}, nil
}

// WithAggregator returns a copy of the encoder using agg for user vectors.
func (e *Encoder) WithAggregator(agg Aggregator) *Encoder {
	cp := *e
	cp.agg = agg
	return &cp
}

// Context returns the encoding context the encoder is bound to.
func (e *Encoder) Context() *EncodingContext {
	return e.ctx
}

// Aggregator returns the user aggregation strategy.
func (e *Encoder) Aggregator() Aggregator {
	return e.agg
}

// EncodeProduct encodes one product. Products whose name is unknown to the
// context get the neutral age signal 0.5.
//
//nolint:gocritic // hugeParam: Product passed by value like the rest of the API
func (e *Encoder) EncodeProduct(p Product) ([]float64, error) {
	vec := make([]float64, e.ctx.Dimensions)

	avgAge, ok := e.ctx.ProductAvgAgeNorm[p.Name]
	if !ok {
		avgAge = defaultAvgAgeNorm
	}
	vec[0] = avgAge * e.weights.Age
	vec[1] = e.ctx.NormalizePrice(p.Price) * e.weights.Price

	catStart := e.ctx.CategoryOffset()
	colorStart := e.ctx.ColorOffset()

	if err := e.oneHot(vec[catStart:colorStart], e.ctx.CategoryIndex, "category", p.Category, e.weights.Category); err != nil {
		return nil, err
	}
	if err := e.oneHot(vec[colorStart:], e.ctx.ColorIndex, "color", p.Color, e.weights.Color); err != nil {
		return nil, err
	}

	return vec, nil
}

// oneHot writes weight at the vocabulary position of value. Values outside
// the vocabulary leave the segment zero, or fail under OOVStrict.
func (e *Encoder) oneHot(segment []float64, index map[string]int, field, value string, weight float64) error {
	idx, ok := index[value]
	if !ok {
		if e.oov == OOVStrict {
			return fmt.Errorf("%w: %s %q", ErrUnknownCategory, field, value)
		}
		return nil
	}
	segment[idx] = weight
	return nil
}

// EncodeUser encodes one user.
//
// A user with purchases gets the aggregate of the purchased products'
// encodings. Each purchase is resolved by name against the catalog; a
// purchase missing from the catalog is encoded from its own fields. A
// missing purchase that carries nothing but its name is skipped, since its
// zero price would fall below the price range and dominate min
// aggregation.
//
// A cold-start user, or one whose purchases were all skipped, gets an
// age-only vector: price and every one-hot segment stay zero.
//
//nolint:gocritic // hugeParam: User passed by value like the rest of the API
func (e *Encoder) EncodeUser(u User) ([]float64, error) {
	if !u.HasPurchases() {
		return e.ageOnly(u.Age), nil
	}

	vectors := make([][]float64, 0, len(u.Purchases))
	for i := range u.Purchases {
		purchase := u.Purchases[i]
		if p, ok := e.ctx.LookupProduct(purchase.Name); ok {
			purchase = p
		} else if nameOnly(&purchase) {
			continue
		}
		vec, err := e.EncodeProduct(purchase)
		if err != nil {
			return nil, fmt.Errorf("purchase %q: %w", purchase.Name, err)
		}
		vectors = append(vectors, vec)
	}

	if len(vectors) == 0 {
		return e.ageOnly(u.Age), nil
	}
	return e.agg.Aggregate(vectors), nil
}

func (e *Encoder) ageOnly(age float64) []float64 {
	vec := make([]float64, e.ctx.Dimensions)
	vec[0] = e.ctx.NormalizeAge(age) * e.weights.Age
	return vec
}

// nameOnly reports whether p carries no encodable field besides its name.
func nameOnly(p *Product) bool {
	return p.Price == 0 && p.Color == "" && p.Category == ""
}

// EncodeCatalog encodes every product of the context's catalog, in order.
func (e *Encoder) EncodeCatalog() ([]ProductVector, error) {
	out := make([]ProductVector, 0, len(e.ctx.Products))
	for i := range e.ctx.Products {
		p := e.ctx.Products[i]
		vec, err := e.EncodeProduct(p)
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", p.Name, err)
		}
		out = append(out, ProductVector{Name: p.Name, Meta: p, Vector: vec})
	}
	return out, nil
}
