// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/cache"
)

// snapshot is everything one training run produces. A snapshot is never
// mutated after it is published; the next run replaces it wholesale.
type snapshot struct {
	ectx      *EncodingContext
	encoder   *Encoder
	products  []ProductVector
	model     Model
	version   int
	runID     string
	trainedAt time.Time
}

// Engine is the session object owning the current encoding context and
// model. It is safe for concurrent use.
//
// Training runs are serialized: a run requested while another is in flight
// fails with ErrTrainingInProgress. Recommend never waits for training; it
// reads the published snapshot atomically and keeps serving the previous
// model until a new run has fully completed.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Collaborators
	source  CatalogSource
	backend Backend

	// Registered listeners receive every run's events
	listeners  []Listener
	listenerMu sync.RWMutex

	// Training state
	trainMu  sync.Mutex
	statusMu sync.RWMutex
	status   TrainingStatus
	version  int

	// current is the serving snapshot, nil until the first run completes
	current atomic.Pointer[snapshot]

	// results memoizes rankings per (user fingerprint, model version)
	results *cache.LRU[*Recommendation]

	// Metrics
	requestCount     atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	errorCount       atomic.Int64
	trainingRuns     atomic.Int64
	trainingFailures atomic.Int64
}

// Metrics contains engine-level counters.
type Metrics struct {
	RequestCount     int64 `json:"request_count"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	ErrorCount       int64 `json:"error_count"`
	TrainingRuns     int64 `json:"training_runs"`
	TrainingFailures int64 `json:"training_failures"`
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source CatalogSource, backend Backend, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("catalog source is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("scoring backend is required")
	}

	e := &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		source:  source,
		backend: backend,
	}

	if e.config.Seed == 0 {
		e.config.Seed = 42
	}

	if e.config.Cache.Enabled {
		e.results = cache.NewLRU[*Recommendation](e.config.Cache.MaxEntries, e.config.Cache.TTL)
	}

	return e, nil
}

// AddListener registers a listener that observes every training run.
func (e *Engine) AddListener(l Listener) {
	if l == nil {
		return
	}
	e.listenerMu.Lock()
	defer e.listenerMu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Train fetches the catalog, builds a fresh encoding context from users and
// the catalog, assembles the training matrix, fits the backend and
// publishes the result as the serving snapshot.
//
// Events go to the registered listeners and to listener, which may be nil.
// Every run ends with exactly one CompletionEvent. On error nothing is
// published and the previous snapshot keeps serving.
func (e *Engine) Train(ctx context.Context, users []User, listener Listener) (*TrainingResult, error) {
	if !e.trainMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	runID := uuid.NewString()
	start := time.Now()
	logger := e.logger.With().Str("run_id", runID).Logger()
	notify := e.newNotifier(listener, logger)

	e.trainingRuns.Add(1)
	e.beginTraining(runID)
	logger.Info().Int("users", len(users)).Msg("starting model training")

	result, err := e.runPipeline(ctx, runID, cloneUsers(users), notify, logger)
	duration := time.Since(start)
	e.finishTraining(result, err, duration)

	if err != nil {
		e.trainingFailures.Add(1)
		logger.Error().
			Err(err).
			Str("stage", string(StageOf(err))).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("model training failed")

		notify.complete(CompletionEvent{
			RunID:        runID,
			Status:       StatusFailed,
			Stage:        StageOf(err),
			Error:        err.Error(),
			ModelVersion: e.ModelVersion(),
			DurationMS:   duration.Milliseconds(),
			Timestamp:    time.Now(),
		})
		return nil, err
	}

	result.Duration = duration
	result.DurationMS = duration.Milliseconds()

	logger.Info().
		Int("version", result.ModelVersion).
		Int("rows", result.Rows).
		Int("dimensions", result.Dimensions).
		Float64("loss", result.FinalLoss).
		Float64("accuracy", result.FinalAccuracy).
		Int64("duration_ms", result.DurationMS).
		Msg("model training complete")

	notify.progress(ProgressEvent{RunID: runID, Progress: ProgressComplete, Timestamp: time.Now()})
	notify.complete(CompletionEvent{
		RunID:        runID,
		Status:       StatusCompleted,
		ModelVersion: result.ModelVersion,
		DurationMS:   result.DurationMS,
		Result:       result,
		Timestamp:    time.Now(),
	})

	return result, nil
}

// runPipeline executes the stages of one run. Must be called with trainMu held.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) runPipeline(ctx context.Context, runID string, users []User, notify *notifier, logger zerolog.Logger) (*TrainingResult, error) {
	notify.progress(ProgressEvent{RunID: runID, Progress: ProgressFetch, Stage: StageFetch, Timestamp: time.Now()})
	e.setProgress(ProgressFetch)

	products, err := e.source.Products(ctx)
	if err != nil {
		return nil, stageErr(StageFetch, fmt.Errorf("%w: %w", ErrCatalogFetch, err))
	}
	logger.Debug().Int("products", len(products)).Msg("fetched catalog")

	ectx, err := BuildContext(users, products)
	if err != nil {
		return nil, stageErr(StageContext, err)
	}

	enc, err := NewEncoder(ectx, &e.config.Encoding)
	if err != nil {
		return nil, stageErr(StageEncode, err)
	}

	vectors, err := enc.EncodeCatalog()
	if err != nil {
		return nil, stageErr(StageEncode, err)
	}

	ds, err := AssembleDataset(enc, vectors)
	if err != nil {
		return nil, stageErr(StageDataset, err)
	}

	logger.Info().
		Int("rows", ds.Rows()).
		Int("width", ds.Width).
		Int("train_users", ds.Users).
		Int("positives", ds.Positives).
		Msg("assembled training dataset")

	model, stats, err := e.fit(ctx, runID, ds, notify)
	if err != nil {
		return nil, stageErr(StageTrain, err)
	}

	trainedAt := time.Now()
	e.version++
	e.current.Store(&snapshot{
		ectx:      ectx,
		encoder:   enc,
		products:  vectors,
		model:     model,
		version:   e.version,
		runID:     runID,
		trainedAt: trainedAt,
	})
	if e.results != nil {
		e.results.Clear()
	}

	return &TrainingResult{
		RunID:          runID,
		ModelVersion:   e.version,
		Users:          len(users),
		TrainUsers:     ds.Users,
		ColdStartUsers: len(users) - ds.Users,
		Products:       len(products),
		Dimensions:     ectx.Dimensions,
		Rows:           ds.Rows(),
		Positives:      ds.Positives,
		Epochs:         stats.epochs,
		FinalLoss:      stats.loss,
		FinalAccuracy:  stats.accuracy,
		Backend:        e.backend.Name(),
		Aggregation:    enc.Aggregator().Name(),
		OOVPolicy:      string(e.config.Encoding.OOVPolicy),
		CompletedAt:    trainedAt,
	}, nil
}

// epochStats holds the metrics of the last reported epoch.
type epochStats struct {
	epochs   int
	loss     float64
	accuracy float64
}

// fit runs the backend under the training timeout, forwarding epochs.
func (e *Engine) fit(ctx context.Context, runID string, ds *Dataset, notify *notifier) (Model, epochStats, error) {
	cfg := e.trainConfig()

	fitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var stats epochStats
	onEpoch := func(epoch int, loss, accuracy float64) {
		stats = epochStats{epochs: epoch + 1, loss: loss, accuracy: accuracy}
		e.setEpoch(epoch)
		notify.epoch(EpochEvent{
			RunID:     runID,
			Epoch:     epoch,
			Epochs:    cfg.Epochs,
			Loss:      loss,
			Accuracy:  accuracy,
			Timestamp: time.Now(),
		})
	}

	model, err := e.backend.Fit(fitCtx, ds.X, ds.Y, cfg, onEpoch)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrBackendTraining, err)
	}
	if model == nil {
		return nil, stats, fmt.Errorf("%w: backend %s returned no model", ErrBackendTraining, e.backend.Name())
	}
	if model.InputWidth() != ds.Width {
		return nil, stats, fmt.Errorf("%w: model input width %d, dataset width %d",
			ErrBackendTraining, model.InputWidth(), ds.Width)
	}

	return model, stats, nil
}

// trainConfig returns the backend configuration with the engine seed applied.
func (e *Engine) trainConfig() TrainConfig {
	cfg := e.config.Training
	cfg.HiddenUnits = append([]int(nil), cfg.HiddenUnits...)
	if cfg.Seed == 0 {
		cfg.Seed = e.config.Seed
	}
	return cfg
}

// Recommend ranks the catalog of the serving snapshot for user.
//
// The user is encoded once, paired with every cached product vector and
// scored in a single backend call. The result holds every catalog product,
// highest score first; ties keep catalog order.
//
//nolint:gocritic // hugeParam: User passed by value like the rest of the API
func (e *Engine) Recommend(ctx context.Context, user User) (*Recommendation, error) {
	start := time.Now()
	e.requestCount.Add(1)

	snap := e.current.Load()
	if snap == nil {
		e.errorCount.Add(1)
		return nil, ErrNoModel
	}

	logger := e.logger.With().
		Str("user_id", user.ID).
		Int("model_version", snap.version).
		Logger()

	var key string
	if e.results != nil {
		key = resultKey(snap.version, &user)
		if cached, ok := e.results.Get(key); ok {
			e.cacheHits.Add(1)
			rec := copyRecommendation(cached)
			rec.CacheHit = true
			rec.LatencyMS = time.Since(start).Milliseconds()
			logger.Debug().Msg("cache hit")
			return rec, nil
		}
		e.cacheMisses.Add(1)
	}

	rec, err := e.rank(ctx, snap, user)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	rec.LatencyMS = time.Since(start).Milliseconds()

	if e.results != nil {
		e.results.Add(key, copyRecommendation(rec))
	}

	logger.Debug().
		Int("products", len(rec.Items)).
		Bool("cold_start", rec.ColdStart).
		Int64("latency_ms", rec.LatencyMS).
		Msg("recommendation complete")

	return rec, nil
}

// rank scores every product vector of snap against user.
//
//nolint:gocritic // hugeParam: User passed by value like the rest of the API
func (e *Engine) rank(ctx context.Context, snap *snapshot, user User) (*Recommendation, error) {
	userVec, err := snap.encoder.EncodeUser(user)
	if err != nil {
		return nil, stageErr(StageEncode, err)
	}

	rows := make([][]float64, len(snap.products))
	for i := range snap.products {
		rows[i] = concatRow(userVec, snap.products[i].Vector)
	}

	scores, err := e.backend.Predict(ctx, snap.model, rows)
	if err != nil {
		return nil, stageErr(StagePredict, fmt.Errorf("%w: %w", ErrBackendPredict, err))
	}
	if len(scores) != len(rows) {
		return nil, stageErr(StagePredict, fmt.Errorf("%w: %d scores for %d rows",
			ErrBackendPredict, len(scores), len(rows)))
	}

	items := make([]ScoredProduct, len(snap.products))
	for i := range snap.products {
		items[i] = ScoredProduct{Product: snap.products[i].Meta, Score: scores[i]}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	return &Recommendation{
		Items:         items,
		TotalProducts: len(items),
		ModelVersion:  snap.version,
		RunID:         snap.runID,
		TrainedAt:     snap.trainedAt,
		ColdStart:     !user.HasPurchases(),
	}, nil
}

// resultKey fingerprints a user for the result cache. Purchases are
// included field by field because unresolved purchases encode from their
// own fields.
func resultKey(version int, u *User) string {
	var b strings.Builder
	b.WriteString("v")
	b.WriteString(strconv.Itoa(version))
	b.WriteString("|")
	b.WriteString(strconv.FormatFloat(u.Age, 'g', -1, 64))
	for i := range u.Purchases {
		p := &u.Purchases[i]
		b.WriteString("|")
		b.WriteString(p.Name)
		b.WriteByte(0x1f)
		b.WriteString(strconv.FormatFloat(p.Price, 'g', -1, 64))
		b.WriteByte(0x1f)
		b.WriteString(p.Color)
		b.WriteByte(0x1f)
		b.WriteString(p.Category)
	}
	return b.String()
}

// copyRecommendation copies rec so cached entries are never shared.
func copyRecommendation(rec *Recommendation) *Recommendation {
	cp := *rec
	cp.Items = append([]ScoredProduct(nil), rec.Items...)
	return &cp
}

// cloneUsers copies users and their purchase slices so the published
// context cannot be changed through the caller's slices.
func cloneUsers(users []User) []User {
	out := make([]User, len(users))
	for i := range users {
		out[i] = users[i]
		out[i].Purchases = append([]Product(nil), users[i].Purchases...)
	}
	return out
}

// beginTraining marks a run as in flight.
func (e *Engine) beginTraining(runID string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.status.IsTraining = true
	e.status.Progress = 0
	e.status.CurrentRunID = runID
	e.status.CurrentEpoch = 0
}

// setProgress records coarse progress of the in-flight run.
func (e *Engine) setProgress(progress int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.Progress = progress
}

// setEpoch records the last epoch of the in-flight run.
func (e *Engine) setEpoch(epoch int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.CurrentEpoch = epoch
}

// finishTraining updates the training status after a run.
func (e *Engine) finishTraining(result *TrainingResult, err error, duration time.Duration) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.status.IsTraining = false
	e.status.CurrentRunID = ""
	e.status.LastTrainingDurationMS = duration.Milliseconds()

	if err != nil {
		e.status.LastError = err.Error()
		return
	}

	e.status.Progress = ProgressComplete
	e.status.LastError = ""
	e.status.ModelVersion = result.ModelVersion
	e.status.LastTrainedAt = result.CompletedAt
	e.status.LastLoss = result.FinalLoss
	e.status.LastAccuracy = result.FinalAccuracy
	e.status.Dimensions = result.Dimensions
	e.status.Products = result.Products
}

// Status returns the current training status.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// ModelVersion returns the version of the serving model, 0 when untrained.
func (e *Engine) ModelVersion() int {
	if snap := e.current.Load(); snap != nil {
		return snap.version
	}
	return 0
}

// EncodingContext returns the context of the serving snapshot, or nil.
func (e *Engine) EncodingContext() *EncodingContext {
	if snap := e.current.Load(); snap != nil {
		return snap.ectx
	}
	return nil
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:     e.requestCount.Load(),
		CacheHits:        e.cacheHits.Load(),
		CacheMisses:      e.cacheMisses.Load(),
		ErrorCount:       e.errorCount.Load(),
		TrainingRuns:     e.trainingRuns.Load(),
		TrainingFailures: e.trainingFailures.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}
