// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"time"

	"github.com/goccy/go-json"
)

// productFields are the JSON keys mapped onto Product's typed fields.
// Every other key of a catalog record is kept in Product.Extra.
var productFields = []string{"name", "price", "color", "category"}

// Product is a catalog record. Name is the unique key used for labels,
// purchase resolution and the implicit average-age signal.
type Product struct {
	// Name is the unique product key.
	Name string `json:"name"`

	// Price is the list price. Normalized against the catalog price range.
	Price float64 `json:"price"`

	// Color is a categorical attribute encoded one-hot.
	Color string `json:"color"`

	// Category is a categorical attribute encoded one-hot.
	Category string `json:"category"`

	// Extra holds arbitrary metadata carried through to recommendation results.
	Extra map[string]any `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps unknown keys as Extra.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var base plain
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range productFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		base.Extra = raw
	}

	*p = Product(base)
	return nil
}

// MarshalJSON flattens Extra next to the typed fields so that the record
// round-trips to the shape it was fetched in.
//
//nolint:gocritic // value receiver so both Product and *Product marshal flat
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.fields())
}

// fields returns the flattened record. Typed fields win over Extra keys.
func (p *Product) fields() map[string]any {
	out := make(map[string]any, len(p.Extra)+len(productFields))
	for k, v := range p.Extra {
		out[k] = v
	}
	out["name"] = p.Name
	out["price"] = p.Price
	out["color"] = p.Color
	out["category"] = p.Category
	return out
}

// User is a shopper. Purchases are product-like records; only Name is
// required, the remaining fields are resolved from the catalog by name.
type User struct {
	// ID is an optional caller-supplied identifier used for logging.
	ID string `json:"id,omitempty"`

	// Age is normalized against the age range of the training users.
	Age float64 `json:"age"`

	// Purchases is the ordered purchase history.
	Purchases []Product `json:"purchases"`
}

// HasPurchases reports whether the user carries any purchase history.
func (u *User) HasPurchases() bool {
	return len(u.Purchases) > 0
}

// purchasedNames returns the set of purchased product names.
func (u *User) purchasedNames() map[string]struct{} {
	names := make(map[string]struct{}, len(u.Purchases))
	for i := range u.Purchases {
		names[u.Purchases[i].Name] = struct{}{}
	}
	return names
}

// ProductVector is a catalog product together with its encoding under one
// training context. The slice is shared read-only between recommend calls.
type ProductVector struct {
	Name   string    `json:"name"`
	Meta   Product   `json:"meta"`
	Vector []float64 `json:"vector"`
}

// ScoredProduct is one ranked recommendation.
type ScoredProduct struct {
	Product Product
	Score   float64
}

// MarshalJSON emits the product metadata with the score merged in.
//
//nolint:gocritic // value receiver so slices of ScoredProduct marshal flat
func (s ScoredProduct) MarshalJSON() ([]byte, error) {
	out := s.Product.fields()
	out["score"] = s.Score
	return json.Marshal(out)
}

// Recommendation is the result of a single Recommend call.
type Recommendation struct {
	// Items is the ranked catalog, highest score first.
	Items []ScoredProduct `json:"items"`

	// TotalProducts is the catalog size before any limit was applied.
	TotalProducts int `json:"total_products"`

	// ModelVersion identifies the training run that produced the scores.
	ModelVersion int `json:"model_version"`

	// RunID is the identifier of that training run.
	RunID string `json:"run_id"`

	// TrainedAt is when that run completed.
	TrainedAt time.Time `json:"trained_at"`

	// ColdStart is true when the user had no purchase history.
	ColdStart bool `json:"cold_start"`

	// CacheHit is true when the result was served from the result cache.
	CacheHit bool `json:"cache_hit"`

	// LatencyMS is the wall time spent producing the result.
	LatencyMS int64 `json:"latency_ms"`
}

// TrainingResult summarizes a completed training run.
type TrainingResult struct {
	RunID          string        `json:"run_id"`
	ModelVersion   int           `json:"model_version"`
	Users          int           `json:"users"`
	TrainUsers     int           `json:"train_users"`
	ColdStartUsers int           `json:"cold_start_users"`
	Products       int           `json:"products"`
	Dimensions     int           `json:"dimensions"`
	Rows           int           `json:"rows"`
	Positives      int           `json:"positives"`
	Epochs         int           `json:"epochs"`
	FinalLoss      float64       `json:"final_loss"`
	FinalAccuracy  float64       `json:"final_accuracy"`
	Backend        string        `json:"backend"`
	Aggregation    string        `json:"aggregation"`
	OOVPolicy      string        `json:"oov_policy"`
	Duration       time.Duration `json:"-"`
	DurationMS     int64         `json:"duration_ms"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// TrainingStatus reports the state of the engine's training lifecycle.
type TrainingStatus struct {
	// IsTraining is true while a run is in flight.
	IsTraining bool `json:"is_training"`

	// Progress is the coarse progress of the in-flight run (0-100).
	Progress int `json:"progress"`

	// CurrentRunID identifies the in-flight run, if any.
	CurrentRunID string `json:"current_run_id,omitempty"`

	// CurrentEpoch is the last epoch reported by the in-flight run.
	CurrentEpoch int `json:"current_epoch"`

	// ModelVersion is the version of the model serving recommendations.
	// Zero means no model has been trained yet.
	ModelVersion int `json:"model_version"`

	// LastTrainedAt is when the serving model was trained.
	LastTrainedAt time.Time `json:"last_trained_at,omitempty"`

	// LastTrainingDurationMS is the wall time of the last finished run.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError is the error of the last failed run, cleared on success.
	LastError string `json:"last_error,omitempty"`

	// LastLoss and LastAccuracy are the final epoch metrics of the serving model.
	LastLoss     float64 `json:"last_loss"`
	LastAccuracy float64 `json:"last_accuracy"`

	// Dimensions is the feature width of the serving context.
	Dimensions int `json:"dimensions"`

	// Products is the catalog size of the serving context.
	Products int `json:"products"`
}
