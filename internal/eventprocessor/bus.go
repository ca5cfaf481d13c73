// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/logging"
)

// Bus bundles a transport, the router that consumes from it and the
// publisher that writes to it.
type Bus struct {
	transport Transport
	router    *Router
	publisher *EventPublisher
	breaker   *gobreaker.CircuitBreaker[any]
	events    *logging.EventLogger
}

// NewBus creates the transport selected by cfg and a router over it.
// Handlers must be registered with Subscribe before Run.
func NewBus(ctx context.Context, cfg *config.EventsConfig) (*Bus, error) {
	if err := validateEventsConfig(cfg); err != nil {
		return nil, err
	}

	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	var transport Transport
	switch cfg.Transport {
	case config.TransportNATS:
		t, err := NewNATSTransport(ctx, cfg.NATSURL, cfg.QueueGroup, logger)
		if err != nil {
			return nil, err
		}
		transport = t
	default:
		transport = NewGoChannelTransport(logger)
	}

	return newBus(cfg, transport, logger)
}

// NewBusWithTransport builds a bus over an existing transport.
func NewBusWithTransport(cfg *config.EventsConfig, transport Transport) (*Bus, error) {
	return newBus(cfg, transport, watermill.NewSlogLogger(logging.NewSlogLogger()))
}

func newBus(cfg *config.EventsConfig, transport Transport, logger watermill.LoggerAdapter) (*Bus, error) {
	routerCfg := RouterConfigFrom(cfg)
	// A nacked gochannel message is redelivered forever, so the in-process
	// transport always ends failed messages in the poison queue.
	if transport.Synchronous() && routerCfg.PoisonQueueTopic == "" {
		routerCfg.PoisonQueueTopic = DefaultPoisonTopic
	}

	router, err := NewRouter(&routerCfg, transport.Publisher(), logger)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	b := &Bus{
		transport: transport,
		router:    router,
		publisher: NewEventPublisher(transport.Publisher()),
		events:    logging.NewEventLogger(),
	}

	if cfg.CircuitBreakerEnabled {
		cbCfg := DefaultCircuitBreakerConfig("event-publisher")
		cbCfg.FailureThreshold = cfg.CircuitBreakerMaxFailures
		cbCfg.Timeout = cfg.CircuitBreakerTimeout
		b.breaker = NewCircuitBreaker(cbCfg)
		b.publisher.SetCircuitBreaker(b.breaker)
	}

	if routerCfg.PoisonQueueTopic != "" {
		if err := b.Subscribe("poison-logger", routerCfg.PoisonQueueTopic, true, poisonLogger); err != nil {
			_ = transport.Close()
			return nil, err
		}
	}

	return b, nil
}

// Publisher returns the event publisher.
func (b *Bus) Publisher() Publisher {
	return b.publisher
}

// Transport returns the transport name.
func (b *Bus) Transport() string {
	return b.transport.Name()
}

// Synchronous reports whether Publish waits for subscribers.
func (b *Bus) Synchronous() bool {
	return b.transport.Synchronous()
}

// Subscribe registers handler under name for topic.
func (b *Bus) Subscribe(name, topic string, fanout bool, handler message.NoPublishHandlerFunc) error {
	sub, err := b.transport.Subscriber(name, fanout)
	if err != nil {
		return err
	}
	b.router.AddConsumerHandler(name, topic, sub, handler)
	b.events.LogSubscriptionStarted(topic, name)
	return nil
}

// Run runs the router until ctx is canceled.
func (b *Bus) Run(ctx context.Context) error {
	b.events.LogRouterStarted(b.transport.Name())
	defer b.events.LogRouterStopped()
	if err := b.router.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event router: %w", err)
	}
	return nil
}

// Running returns a channel that closes once every handler is subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// IsRunning returns whether the router is processing messages.
func (b *Bus) IsRunning() bool {
	return b.router.IsRunning()
}

// Close stops the router and releases the transport.
func (b *Bus) Close() error {
	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.router.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.transport.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
