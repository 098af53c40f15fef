// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"fmt"
	"sort"
)

// Aggregation strategy names accepted by AggregatorByName.
const (
	AggregationMin  = "min"
	AggregationMean = "mean"
	AggregationMax  = "max"
)

// Aggregator folds the encodings of a user's purchases into one user vector.
// Implementations receive at least one vector; all vectors share one width.
type Aggregator interface {
	// Name returns the strategy name used in configuration.
	Name() string

	// Aggregate returns a new vector; the inputs are not modified.
	Aggregate(vectors [][]float64) []float64
}

// MinAggregator keeps the element-wise minimum. A feature is only present
// in the user vector when every purchase carries it.
type MinAggregator struct{}

// Name implements Aggregator.
func (MinAggregator) Name() string { return AggregationMin }

// Aggregate implements Aggregator.
func (MinAggregator) Aggregate(vectors [][]float64) []float64 {
	out := append([]float64(nil), vectors[0]...)
	for _, v := range vectors[1:] {
		for i := range out {
			out[i] = min(out[i], v[i])
		}
	}
	return out
}

// MeanAggregator averages the purchase vectors.
type MeanAggregator struct{}

// Name implements Aggregator.
func (MeanAggregator) Name() string { return AggregationMean }

// Aggregate implements Aggregator.
func (MeanAggregator) Aggregate(vectors [][]float64) []float64 {
	out := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range out {
			out[i] += v[i]
		}
	}
	n := float64(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return out
}

// MaxAggregator keeps the element-wise maximum: the union of the signals.
type MaxAggregator struct{}

// Name implements Aggregator.
func (MaxAggregator) Name() string { return AggregationMax }

// Aggregate implements Aggregator.
func (MaxAggregator) Aggregate(vectors [][]float64) []float64 {
	out := append([]float64(nil), vectors[0]...)
	for _, v := range vectors[1:] {
		for i := range out {
			out[i] = max(out[i], v[i])
		}
	}
	return out
}

var aggregators = map[string]Aggregator{
	AggregationMin:  MinAggregator{},
	AggregationMean: MeanAggregator{},
	AggregationMax:  MaxAggregator{},
}

// AggregatorByName returns the named strategy.
func AggregatorByName(name string) (Aggregator, error) {
	agg, ok := aggregators[name]
	if !ok {
		return nil, fmt.Errorf("unknown aggregation %q (available: %v)", name, AggregatorNames())
	}
	return agg, nil
}

// AggregatorNames lists the registered strategy names in sorted order.
func AggregatorNames() []string {
	names := make([]string, 0, len(aggregators))
	for name := range aggregators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
