// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartwise/internal/recommend"
)

// Event types carried in Envelope.Type.
const (
	TypeProgress = "training_progress"
	TypeEpoch    = "training_epoch"
	TypeComplete = "training_complete"
)

// ErrUnknownEventType is returned when decoding an envelope whose type is
// not one of the training event types.
var ErrUnknownEventType = errors.New("unknown event type")

// Envelope is the payload of every message on the training topic.
type Envelope struct {
	Type      string          `json:"type"`
	RunID     string          `json:"run_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Validate checks that the envelope can be routed.
func (e *Envelope) Validate() error {
	switch e.Type {
	case TypeProgress, TypeEpoch, TypeComplete:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
	if e.RunID == "" {
		return fmt.Errorf("run_id is required")
	}
	if len(e.Data) == 0 {
		return fmt.Errorf("data is required")
	}
	return nil
}

// NewEnvelope wraps an event of the given type.
func NewEnvelope(eventType, runID string, ts time.Time, event any) (*Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return &Envelope{Type: eventType, RunID: runID, Timestamp: ts, Data: data}, nil
}

// Progress decodes the envelope data as a progress event.
func (e *Envelope) Progress() (recommend.ProgressEvent, error) {
	var ev recommend.ProgressEvent
	err := e.decode(TypeProgress, &ev)
	return ev, err
}

// Epoch decodes the envelope data as an epoch event.
func (e *Envelope) Epoch() (recommend.EpochEvent, error) {
	var ev recommend.EpochEvent
	err := e.decode(TypeEpoch, &ev)
	return ev, err
}

// Completion decodes the envelope data as a completion event.
func (e *Envelope) Completion() (recommend.CompletionEvent, error) {
	var ev recommend.CompletionEvent
	err := e.decode(TypeComplete, &ev)
	return ev, err
}

func (e *Envelope) decode(want string, v any) error {
	if e.Type != want {
		return fmt.Errorf("envelope type %q, want %q", e.Type, want)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", want, err)
	}
	return nil
}
