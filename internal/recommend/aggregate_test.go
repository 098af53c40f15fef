// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"slices"
	"testing"
)

func TestAggregators(t *testing.T) {
	t.Parallel()

	vectors := [][]float64{
		{0, 1, 0.5},
		{1, 0, 0.5},
		{0.5, 0.5, 0.2},
	}

	tests := []struct {
		agg  Aggregator
		want []float64
	}{
		{MinAggregator{}, []float64{0, 0, 0.2}},
		{MaxAggregator{}, []float64{1, 1, 0.5}},
		{MeanAggregator{}, []float64{0.5, 0.5, 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.agg.Name(), func(t *testing.T) {
			t.Parallel()
			got := tt.agg.Aggregate(vectors)
			if !approxSlice(got, tt.want) {
				t.Errorf("Aggregate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregators_SingleVectorIsIdentity(t *testing.T) {
	t.Parallel()

	in := []float64{0.1, 0, 0.4}
	for _, name := range AggregatorNames() {
		agg, err := AggregatorByName(name)
		if err != nil {
			t.Fatalf("AggregatorByName(%s) error = %v", name, err)
		}
		if got := agg.Aggregate([][]float64{in}); !approxSlice(got, in) {
			t.Errorf("%s.Aggregate(single) = %v, want %v", name, got, in)
		}
	}
}

func TestAggregators_DoNotMutateInput(t *testing.T) {
	t.Parallel()

	first := []float64{1, 1}
	second := []float64{0, 0}
	for _, agg := range []Aggregator{MinAggregator{}, MaxAggregator{}, MeanAggregator{}} {
		_ = agg.Aggregate([][]float64{first, second})
		if !slices.Equal(first, []float64{1, 1}) || !slices.Equal(second, []float64{0, 0}) {
			t.Fatalf("%s.Aggregate() mutated its input", agg.Name())
		}
	}
}

func TestAggregatorByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{AggregationMin, AggregationMean, AggregationMax} {
		agg, err := AggregatorByName(name)
		if err != nil {
			t.Errorf("AggregatorByName(%q) error = %v", name, err)
			continue
		}
		if agg.Name() != name {
			t.Errorf("AggregatorByName(%q).Name() = %q", name, agg.Name())
		}
	}

	if _, err := AggregatorByName("median"); err == nil {
		t.Error("AggregatorByName(median) = nil error, want error")
	}

	want := []string{"max", "mean", "min"}
	if got := AggregatorNames(); !slices.Equal(got, want) {
		t.Errorf("AggregatorNames() = %v, want %v", got, want)
	}
}
