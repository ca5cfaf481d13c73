// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/gamecatalog/internal/config"
)

// Transport owns the Watermill publisher and hands out subscribers, one
// per handler.
type Transport interface {
	Name() string
	// Synchronous reports whether Publish returns only after subscribers
	// have processed the message.
	Synchronous() bool
	Publisher() message.Publisher
	// Subscriber returns the subscriber for a handler. Fan-out subscribers
	// see every message on every instance.
	Subscriber(handler string, fanout bool) (message.Subscriber, error)
	Close() error
}

// GoChannelTransport is the in-process transport.
type GoChannelTransport struct {
	pubSub *gochannel.GoChannel
}

// NewGoChannelTransport creates an in-process transport whose publishers
// block until every subscriber acknowledged the message.
func NewGoChannelTransport(logger watermill.LoggerAdapter) *GoChannelTransport {
	return &GoChannelTransport{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, logger),
	}
}

// Name implements Transport.
func (t *GoChannelTransport) Name() string { return config.TransportGoChannel }

// Synchronous implements Transport.
func (t *GoChannelTransport) Synchronous() bool { return true }

// Publisher implements Transport.
func (t *GoChannelTransport) Publisher() message.Publisher { return t.pubSub }

// Subscriber implements Transport. Every gochannel subscription receives
// its own copy of each message, so one pub/sub serves all handlers.
func (t *GoChannelTransport) Subscriber(string, bool) (message.Subscriber, error) {
	return t.pubSub, nil
}

// Close implements Transport.
func (t *GoChannelTransport) Close() error { return t.pubSub.Close() }

// NATSTransport publishes to a JetStream stream.
type NATSTransport struct {
	url        string
	queueGroup string
	logger     watermill.LoggerAdapter
	publisher  message.Publisher

	mu          sync.Mutex
	subscribers []message.Subscriber
}

// NewNATSTransport ensures the catalog stream exists on the server at url
// and creates the publisher.
func NewNATSTransport(ctx context.Context, url, queueGroup string, logger watermill.LoggerAdapter) (*NATSTransport, error) {
	if err := ensureStream(ctx, url); err != nil {
		return nil, err
	}

	pub, err := NewNATSPublisher(DefaultPublisherConfig(url), logger)
	if err != nil {
		return nil, err
	}

	return &NATSTransport{
		url:        url,
		queueGroup: queueGroup,
		logger:     logger,
		publisher:  pub,
	}, nil
}

func ensureStream(ctx context.Context, url string) error {
	nc, err := natsgo.Connect(url, natsgo.Name("gamecatalog-stream-init"))
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := DefaultStreamConfig()
	initializer, err := NewStreamInitializer(js, &streamCfg)
	if err != nil {
		return err
	}
	if _, err := initializer.EnsureStream(ctx); err != nil {
		return err
	}
	return nil
}

// Name implements Transport.
func (t *NATSTransport) Name() string { return config.TransportNATS }

// Synchronous implements Transport.
func (t *NATSTransport) Synchronous() bool { return false }

// Publisher implements Transport.
func (t *NATSTransport) Publisher() message.Publisher { return t.publisher }

// Subscriber implements Transport. Competing handlers share a durable
// consumer named after the queue group and the handler.
func (t *NATSTransport) Subscriber(handler string, fanout bool) (message.Subscriber, error) {
	cfg := DefaultSubscriberConfig(t.url)
	if !fanout {
		cfg.QueueGroup = t.queueGroup + "-" + handler
		cfg.DurableName = cfg.QueueGroup
	}

	sub, err := NewNATSSubscriber(&cfg, t.logger)
	if err != nil {
		return nil, fmt.Errorf("subscriber for %s: %w", handler, err)
	}

	t.mu.Lock()
	t.subscribers = append(t.subscribers, sub)
	t.mu.Unlock()
	return sub, nil
}

// Close implements Transport.
func (t *NATSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for _, sub := range t.subscribers {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.subscribers = nil
	if err := t.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
