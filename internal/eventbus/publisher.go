// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package eventbus

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cartwise/internal/metrics"
	"github.com/tomtom215/cartwise/internal/recommend"
)

// Ensure Publisher implements recommend.Listener
var _ recommend.Listener = (*Publisher)(nil)

const dropLogInterval = 5 * time.Second

// outgoing is a message waiting in the publisher queue.
type outgoing struct {
	eventType string
	msg       *message.Message
}

// Publisher turns engine callbacks into messages on the training topic.
//
// Callbacks never block: each event is queued, or dropped when the queue
// is full. Run drains the queue in order.
type Publisher struct {
	publisher message.Publisher
	topic     string
	queue     chan outgoing
	logger    zerolog.Logger

	// dropLog throttles the queue-full warning to one line per interval.
	dropLog *rate.Sometimes

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewPublisher creates a publisher with a queue of bufferSize events.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(pub message.Publisher, topic string, bufferSize int, logger zerolog.Logger) *Publisher {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Publisher{
		publisher: pub,
		topic:     topic,
		queue:     make(chan outgoing, bufferSize),
		logger:    logger.With().Str("component", "event-publisher").Logger(),
		dropLog:   &rate.Sometimes{First: 1, Interval: dropLogInterval},
	}
}

// OnProgress implements recommend.Listener.
func (p *Publisher) OnProgress(ev recommend.ProgressEvent) {
	p.enqueue(TypeProgress, ev.RunID, ev.Timestamp, ev)
}

// OnEpoch implements recommend.Listener.
func (p *Publisher) OnEpoch(ev recommend.EpochEvent) {
	p.enqueue(TypeEpoch, ev.RunID, ev.Timestamp, ev)
}

// OnComplete implements recommend.Listener.
//
//nolint:gocritic // hugeParam: events are passed by value
func (p *Publisher) OnComplete(ev recommend.CompletionEvent) {
	p.enqueue(TypeComplete, ev.RunID, ev.Timestamp, ev)
}

func (p *Publisher) enqueue(eventType, runID string, ts time.Time, event any) {
	env, err := NewEnvelope(eventType, runID, ts, event)
	if err != nil {
		p.reject(eventType, err)
		return
	}
	payload, err := MarshalEnvelope(env)
	if err != nil {
		p.reject(eventType, err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", eventType)
	msg.Metadata.Set("run_id", runID)

	select {
	case p.queue <- outgoing{eventType: eventType, msg: msg}:
	default:
		p.dropped.Add(1)
		metrics.RecordEventPublished(eventType, ErrBufferFull)
		p.dropLog.Do(func() {
			p.logger.Warn().
				Str("type", eventType).
				Str("run_id", runID).
				Int64("dropped_total", p.dropped.Load()).
				Msg("Event queue full, dropping training events")
		})
	}
}

func (p *Publisher) reject(eventType string, err error) {
	p.failed.Add(1)
	metrics.RecordEventPublished(eventType, err)
	p.logger.Error().Err(err).Str("type", eventType).Msg("Failed to encode training event")
}

// Run publishes queued events until ctx is canceled.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out := <-p.queue:
			p.publish(out)
		}
	}
}

func (p *Publisher) publish(out outgoing) {
	err := p.publisher.Publish(p.topic, out.msg)
	metrics.RecordEventPublished(out.eventType, err)
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn().Err(err).Str("type", out.eventType).Msg("Failed to publish training event")
		return
	}
	p.published.Add(1)
}

// Stats returns current publisher statistics.
func (p *Publisher) Stats() PublisherStats {
	return PublisherStats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
		Queued:    len(p.queue),
	}
}

// PublisherStats holds runtime statistics.
type PublisherStats struct {
	Published int64
	Dropped   int64
	Failed    int64
	Queued    int
}
