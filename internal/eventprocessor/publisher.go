// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/metrics"
)

// Publisher publishes domain events. It is the interface injected into the
// aggregator and the catalog services.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventPublisher encodes events and publishes them on a Watermill
// publisher, optionally behind a circuit breaker.
type EventPublisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[any]
	events         *logging.EventLogger
	mu             sync.RWMutex
	closed         bool
}

// NewEventPublisher wraps pub.
func NewEventPublisher(pub message.Publisher) *EventPublisher {
	return &EventPublisher{
		publisher: pub,
		events:    logging.NewEventLogger(),
	}
}

// SetCircuitBreaker configures the circuit breaker for publish operations.
func (p *EventPublisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[any]) {
	p.circuitBreaker = cb
}

// Publish validates, encodes and publishes event. With a synchronous
// transport it returns after every subscriber acknowledged the message.
func (p *EventPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := NewMessage(ctx, event)
	if err != nil {
		metrics.RecordEventPublish(event.Topic(), "invalid")
		return err
	}
	// Nats-Msg-Id lets JetStream drop duplicates within its window.
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (any, error) {
			return nil, p.publisher.Publish(event.Topic(), msg)
		})
	} else {
		err = p.publisher.Publish(event.Topic(), msg)
	}

	if err != nil {
		metrics.RecordEventPublish(event.Topic(), "error")
		p.events.LogPublishFailed(ctx, event.ID(), event.Topic(), err)
		return fmt.Errorf("publish %s: %w", event.Topic(), err)
	}

	metrics.RecordEventPublish(event.Topic(), "ok")
	p.events.LogPublished(ctx, event.ID(), event.Topic(), gameIDOf(event))
	return nil
}

// Close stops accepting events. The underlying publisher is owned by the
// transport and closed there.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func gameIDOf(event Event) string {
	switch e := event.(type) {
	case *ReviewCommitted:
		return e.GameID
	case *GameStatsChanged:
		return e.GameID
	}
	return ""
}

// NopPublisher discards every event. Used when the bus is disabled and in
// tests that do not care about events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(_ context.Context, event Event) error {
	return event.Validate()
}

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Event
	// Err, when set, is returned by Publish instead of recording.
	Err error
}

// Publish implements Publisher.
func (r *RecordingPublisher) Publish(_ context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (r *RecordingPublisher) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset drops the recorded events.
func (r *RecordingPublisher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
