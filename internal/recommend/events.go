// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package recommend

import (
	"time"

	"github.com/rs/zerolog"
)

// Completion statuses carried by CompletionEvent.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Coarse progress checkpoints of a training run.
const (
	ProgressFetch    = 50
	ProgressComplete = 100
)

// ProgressEvent is a coarse progress signal (0-100), emitted before the
// catalog fetch and at completion.
type ProgressEvent struct {
	RunID     string    `json:"run_id"`
	Progress  int       `json:"progress"`
	Stage     Stage     `json:"stage,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EpochEvent carries the metrics of one finished training epoch.
type EpochEvent struct {
	RunID     string    `json:"run_id"`
	Epoch     int       `json:"epoch"`
	Epochs    int       `json:"epochs"`
	Loss      float64   `json:"loss"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// CompletionEvent closes a training run, successful or not.
type CompletionEvent struct {
	RunID        string          `json:"run_id"`
	Status       string          `json:"status"`
	Stage        Stage           `json:"stage,omitempty"`
	Error        string          `json:"error,omitempty"`
	ModelVersion int             `json:"model_version"`
	DurationMS   int64           `json:"duration_ms"`
	Result       *TrainingResult `json:"result,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Listener observes training runs. The engine invokes it synchronously on
// the training goroutine; implementations must return quickly and must
// not block. Events are a side channel: losing one is not a failure.
type Listener interface {
	OnProgress(ProgressEvent)
	OnEpoch(EpochEvent)
	OnComplete(CompletionEvent)
}

// ListenerFuncs adapts optional functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Progress func(ProgressEvent)
	Epoch    func(EpochEvent)
	Complete func(CompletionEvent)
}

// OnProgress implements Listener.
func (l ListenerFuncs) OnProgress(e ProgressEvent) {
	if l.Progress != nil {
		l.Progress(e)
	}
}

// OnEpoch implements Listener.
func (l ListenerFuncs) OnEpoch(e EpochEvent) {
	if l.Epoch != nil {
		l.Epoch(e)
	}
}

// OnComplete implements Listener.
//
//nolint:gocritic // hugeParam: events are passed by value
func (l ListenerFuncs) OnComplete(e CompletionEvent) {
	if l.Complete != nil {
		l.Complete(e)
	}
}

// MultiListener fans events out to several listeners in order.
type MultiListener []Listener

// OnProgress implements Listener.
func (m MultiListener) OnProgress(e ProgressEvent) {
	for _, l := range m {
		l.OnProgress(e)
	}
}

// OnEpoch implements Listener.
func (m MultiListener) OnEpoch(e EpochEvent) {
	for _, l := range m {
		l.OnEpoch(e)
	}
}

// OnComplete implements Listener.
//
//nolint:gocritic // hugeParam: events are passed by value
func (m MultiListener) OnComplete(e CompletionEvent) {
	for _, l := range m {
		l.OnComplete(e)
	}
}

// notifier delivers one run's events to a fixed set of listeners. A
// panicking listener is logged and skipped; it never fails the run.
type notifier struct {
	listeners []Listener
	logger    zerolog.Logger
}

// newNotifier snapshots the registered listeners plus extra for one run.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) newNotifier(extra Listener, logger zerolog.Logger) *notifier {
	e.listenerMu.RLock()
	listeners := append([]Listener(nil), e.listeners...)
	e.listenerMu.RUnlock()

	if extra != nil {
		listeners = append(listeners, extra)
	}
	return &notifier{listeners: listeners, logger: logger}
}

func (n *notifier) progress(ev ProgressEvent) {
	for _, l := range n.listeners {
		n.deliver("progress", func() { l.OnProgress(ev) })
	}
}

func (n *notifier) epoch(ev EpochEvent) {
	for _, l := range n.listeners {
		n.deliver("epoch", func() { l.OnEpoch(ev) })
	}
}

//nolint:gocritic // hugeParam: events are passed by value
func (n *notifier) complete(ev CompletionEvent) {
	for _, l := range n.listeners {
		n.deliver("complete", func() { l.OnComplete(ev) })
	}
}

func (n *notifier) deliver(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error().
				Str("event", event).
				Interface("panic", r).
				Msg("training listener panicked")
		}
	}()
	fn()
}
