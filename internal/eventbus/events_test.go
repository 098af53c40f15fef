// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/cartwise/internal/recommend"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEnvelope_RoundTrip(t *testing.T) {
	t.Parallel()

	env, err := NewEnvelope(TypeEpoch, "run-1", testTime, recommend.EpochEvent{
		RunID: "run-1", Epoch: 3, Epochs: 10, Loss: 0.4, Accuracy: 0.8, Timestamp: testTime,
	})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}

	payload, err := MarshalEnvelope(env)
	if err != nil {
		t.Fatalf("MarshalEnvelope() error = %v", err)
	}
	if !strings.Contains(string(payload), `"type":"training_epoch"`) {
		t.Errorf("payload missing type: %s", payload)
	}

	decoded, err := UnmarshalEnvelope(payload)
	if err != nil {
		t.Fatalf("UnmarshalEnvelope() error = %v", err)
	}
	ev, err := decoded.Epoch()
	if err != nil {
		t.Fatalf("Epoch() error = %v", err)
	}
	if ev.Epoch != 3 || ev.Epochs != 10 || ev.Loss != 0.4 || ev.Accuracy != 0.8 {
		t.Errorf("Epoch() = %+v", ev)
	}
	if decoded.RunID != "run-1" || !decoded.Timestamp.Equal(testTime) {
		t.Errorf("envelope header = %q %v", decoded.RunID, decoded.Timestamp)
	}
}

func TestEnvelope_Completion(t *testing.T) {
	t.Parallel()

	env, err := NewEnvelope(TypeComplete, "run-2", testTime, recommend.CompletionEvent{
		RunID:        "run-2",
		Status:       recommend.StatusFailed,
		Stage:        recommend.StageFetch,
		Error:        "catalog fetch failed",
		ModelVersion: 1,
		Timestamp:    testTime,
	})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}

	ev, err := env.Completion()
	if err != nil {
		t.Fatalf("Completion() error = %v", err)
	}
	if ev.Status != recommend.StatusFailed || ev.Stage != recommend.StageFetch || ev.Result != nil {
		t.Errorf("Completion() = %+v", ev)
	}
}

func TestEnvelope_WrongType(t *testing.T) {
	t.Parallel()

	env, err := NewEnvelope(TypeProgress, "run-1", testTime, recommend.ProgressEvent{RunID: "run-1", Progress: 50})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}

	if _, err := env.Epoch(); err == nil {
		t.Error("Epoch() on a progress envelope should fail")
	}
	ev, err := env.Progress()
	if err != nil || ev.Progress != 50 {
		t.Errorf("Progress() = %+v, %v", ev, err)
	}
}

func TestEnvelope_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     Envelope
		wantErr error
	}{
		{"valid", Envelope{Type: TypeProgress, RunID: "r", Data: []byte(`{}`)}, nil},
		{"unknown type", Envelope{Type: "training_started", RunID: "r", Data: []byte(`{}`)}, ErrUnknownEventType},
		{"missing run id", Envelope{Type: TypeEpoch, Data: []byte(`{}`)}, nil},
		{"missing data", Envelope{Type: TypeComplete, RunID: "r"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.env.Validate()
			switch {
			case tt.name == "valid":
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
			case err == nil:
				t.Error("Validate() expected error")
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnmarshalEnvelope_Invalid(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`not json`, `{"type":"other","run_id":"r","data":{}}`, `{"type":"training_epoch"}`} {
		if _, err := UnmarshalEnvelope([]byte(payload)); err == nil {
			t.Errorf("UnmarshalEnvelope(%s) expected error", payload)
		}
	}
}
