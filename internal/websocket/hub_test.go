// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// setupHub creates and starts a new hub for testing
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()
	return hub
}

// createTestClient creates a client without a connection
func createTestClient(hub *Hub) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan []byte, broadcastBuffer)}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receiveFrame(t *testing.T, client *Client) []byte {
	t.Helper()
	select {
	case frame := <-client.send:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestNewHub(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())

	if hub.clients == nil || hub.Register == nil || hub.Unregister == nil {
		t.Fatal("hub channels and client map must be initialized")
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("broadcast capacity = %d, want %d", cap(hub.broadcast), broadcastBuffer)
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d, want 0", hub.GetClientCount())
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	client := createTestClient(hub)

	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.Unregister <- client
	waitForClients(t, hub, 0)

	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}

	// Unregistering an unknown client is a no-op.
	hub.Unregister <- createTestClient(hub)
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastRawForwardsUnchanged(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	a, b := createTestClient(hub), createTestClient(hub)
	hub.Register <- a
	hub.Register <- b
	waitForClients(t, hub, 2)

	payload := []byte(`{"type":"training_epoch","run_id":"run-1","data":{"epoch":1}}`)
	hub.BroadcastRaw(payload)

	for _, c := range []*Client{a, b} {
		if got := receiveFrame(t, c); string(got) != string(payload) {
			t.Errorf("frame = %s, want %s", got, payload)
		}
	}
}

func TestHub_BroadcastRawRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	hub.BroadcastRaw([]byte(`{"type":`))

	if len(hub.broadcast) != 0 {
		t.Errorf("queued %d frames for invalid JSON, want 0", len(hub.broadcast))
	}
}

func TestHub_BroadcastJSON(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	client := createTestClient(hub)
	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.BroadcastJSON("model_status", map[string]int{"model_version": 3})

	var msg struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(receiveFrame(t, client), &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if msg.Type != "model_status" || msg.Data["model_version"] != 3 {
		t.Errorf("message = %+v", msg)
	}
}

func TestHub_BroadcastPreservesOrder(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	client := createTestClient(hub)
	hub.Register <- client
	waitForClients(t, hub, 1)

	for i := 0; i < 10; i++ {
		hub.BroadcastJSON("training_epoch", map[string]int{"epoch": i})
	}

	for i := 0; i < 10; i++ {
		var msg struct {
			Data map[string]int `json:"data"`
		}
		if err := json.Unmarshal(receiveFrame(t, client), &msg); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if msg.Data["epoch"] != i {
			t.Fatalf("frame %d carried epoch %d", i, msg.Data["epoch"])
		}
	}
}

func TestHub_ChannelFullDropsMessage(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop()) // not running, nothing drains the queue

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.BroadcastRaw([]byte(`{}`))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastRaw blocked on a full queue")
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("queued = %d, want %d", len(hub.broadcast), broadcastBuffer)
	}
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan []byte, 1)}
	fast := createTestClient(hub)
	hub.clients[slow] = true
	hub.clients[fast] = true

	hub.broadcastToClients([]byte(`{"n":1}`))
	hub.broadcastToClients([]byte(`{"n":2}`))

	if hub.GetClientCount() != 1 {
		t.Fatalf("GetClientCount() = %d, want 1", hub.GetClientCount())
	}
	if _, ok := hub.clients[fast]; !ok {
		t.Error("fast client was removed")
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client queued %d frames, want 2", len(fast.send))
	}
}

func TestHub_RunWithContext(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	client := createTestClient(hub)
	hub.Register <- client
	waitForClients(t, hub, 1)

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithContext did not return after cancel")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("clients remaining after shutdown = %d", hub.GetClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("client channel should be closed on shutdown")
	}
}

func TestHub_ConcurrentBroadcasts(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	client := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan []byte, 1000)}
	hub.Register <- client
	waitForClients(t, hub, 1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				hub.BroadcastRaw([]byte(`{"type":"training_progress"}`))
				_ = hub.GetClientCount()
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		receiveFrame(t, client)
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("getShutdownReason(canceled) = %s", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("getShutdownReason(expired) = %s", got)
	}
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()

	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatalf("MarshalMessage() error = %v", err)
	}
	if string(data) != `{"type":"pong","data":null}` {
		t.Errorf("MarshalMessage() = %s", data)
	}
}
