// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package websocket streams training events to browser clients.

It uses gorilla/websocket with a hub-client architecture: the Hub owns the
set of connections and fans frames out to them; each Client runs a
readPump (pings, connection liveness) and a writePump (frames, keepalive
pings).

	eventbus.WebSocketHandler --BroadcastRaw--> Hub --frame--> Client1..N

Frames are pre-encoded JSON. Training events come from the event bus as
envelopes and are forwarded unchanged:

	{"type":"training_epoch","run_id":"...","timestamp":"...","data":{"epoch":3,"loss":0.41,...}}

Clients may send {"type":"ping"} and receive {"type":"pong","data":null}.

# Backpressure

Both the hub queue and every client queue hold 256 frames. A frame that
does not fit the hub queue is dropped; a client whose queue is full is
disconnected so one slow browser cannot hold back the others.

# Lifecycle

RunWithContext is the suture-compatible run loop. On cancellation it
closes every client and returns ctx.Err().

	hub := websocket.NewHub(logger)
	go hub.RunWithContext(ctx)

	client := websocket.NewClient(hub, conn)
	hub.Register <- client
	client.Start()
*/
package websocket
