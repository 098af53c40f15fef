// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package mlp_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/recommend"
	"github.com/tomtom215/cartwise/internal/recommend/mlp"
)

func twoProductCatalog() recommend.CatalogSource {
	return recommend.CatalogSourceFunc(func(context.Context) ([]recommend.Product, error) {
		return []recommend.Product{
			{Name: "A", Price: 10, Color: "red", Category: "x"},
			{Name: "B", Price: 20, Color: "blue", Category: "y"},
		}, nil
	})
}

func twoUsers() []recommend.User {
	return []recommend.User{
		{Age: 30, Purchases: []recommend.Product{{Name: "A"}}},
		{Age: 40, Purchases: []recommend.Product{}},
	}
}

// trainAndRank trains a fresh engine backed by the MLP and ranks the buyer
// of A.
func trainAndRank(t *testing.T) (*recommend.TrainingResult, *recommend.Recommendation) {
	t.Helper()

	cfg := recommend.DefaultConfig()
	cfg.Cache.Enabled = false

	engine, err := recommend.NewEngine(cfg, twoProductCatalog(), mlp.New(zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	result, err := engine.Train(context.Background(), twoUsers(), nil)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	rec, err := engine.Recommend(context.Background(), recommend.User{
		Age:       30,
		Purchases: []recommend.Product{{Name: "A"}},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	return result, rec
}

func TestEngineWithMLP_TwoProductScenario(t *testing.T) {
	t.Parallel()

	result, rec := trainAndRank(t)

	if result.Dimensions != 6 || result.Rows != 2 || result.Positives != 1 {
		t.Errorf("dimensions/rows/positives = %d/%d/%d, want 6/2/1",
			result.Dimensions, result.Rows, result.Positives)
	}
	if result.TrainUsers != 1 || result.ColdStartUsers != 1 {
		t.Errorf("train/cold users = %d/%d, want 1/1", result.TrainUsers, result.ColdStartUsers)
	}

	if len(rec.Items) != 2 {
		t.Fatalf("items = %d, want the whole catalog", len(rec.Items))
	}
	if rec.Items[0].Product.Name != "A" {
		t.Errorf("top item = %s, want A", rec.Items[0].Product.Name)
	}
	if rec.Items[0].Score < 0.5 || rec.Items[0].Score <= rec.Items[1].Score {
		t.Errorf("scores = %v, %v, want A above 0.5 and above B", rec.Items[0].Score, rec.Items[1].Score)
	}
	for i, item := range rec.Items {
		if item.Score < 0 || item.Score > 1 {
			t.Errorf("score[%d] = %v outside [0,1]", i, item.Score)
		}
	}
}

func TestEngineWithMLP_SeededRunsAreIdentical(t *testing.T) {
	t.Parallel()

	_, first := trainAndRank(t)
	_, second := trainAndRank(t)

	if len(first.Items) != len(second.Items) {
		t.Fatalf("item counts differ: %d vs %d", len(first.Items), len(second.Items))
	}
	for i := range first.Items {
		a, b := first.Items[i], second.Items[i]
		if a.Product.Name != b.Product.Name || a.Score != b.Score {
			t.Errorf("item %d: %s=%v vs %s=%v", i, a.Product.Name, a.Score, b.Product.Name, b.Score)
		}
	}
}
