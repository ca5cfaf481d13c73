// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/tomtom215/gamecatalog/internal/config"
)

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic is empty when the poison queue is disabled.
	PoisonQueueTopic string

	DeduplicationEnabled bool
	DeduplicationTTL     time.Duration
}

// DefaultRouterConfig returns defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         15 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 50 * time.Millisecond,
		RetryMaxInterval:     2 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     DefaultPoisonTopic,
		DeduplicationEnabled: false,
		DeduplicationTTL:     5 * time.Minute,
	}
}

// RouterConfigFrom derives the router settings from the events section.
func RouterConfigFrom(cfg *config.EventsConfig) RouterConfig {
	rc := DefaultRouterConfig()
	rc.CloseTimeout = cfg.RouterCloseTimeout
	rc.RetryMaxRetries = cfg.RouterRetryCount
	rc.RetryInitialInterval = cfg.RouterRetryInitialInterval
	rc.RetryMaxInterval = cfg.RouterRetryMaxInterval
	rc.PoisonQueueTopic = ""
	if cfg.RouterPoisonQueueEnabled {
		rc.PoisonQueueTopic = cfg.RouterPoisonQueueTopic
	}
	rc.DeduplicationEnabled = cfg.RouterDeduplicationEnabled
	rc.DeduplicationTTL = cfg.RouterDeduplicationTTL
	return rc
}

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns defaults for the embedded NATS server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/gamecatalog/nats",
		JetStreamMaxMem:   256 << 20, // 256MB
		JetStreamMaxStore: 1 << 30,   // 1GB
	}
}

// PublisherConfig holds NATS publisher configuration.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool // nolint:revive // ID is correct per Go conventions
}

// DefaultPublisherConfig returns defaults for the NATS publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1, // Unlimited
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024, // 8MB
		EnableTrackMsgID: true,
	}
}

// SubscriberConfig holds NATS subscriber configuration.
type SubscriberConfig struct {
	URL string

	// QueueGroup and DurableName are empty for fan-out subscribers, which
	// receive every message on every instance.
	QueueGroup       string
	DurableName      string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxAckPending    int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration

	// StreamName binds the subscriber to a pre-created JetStream stream.
	StreamName string
}

// DefaultSubscriberConfig returns defaults for a NATS subscriber.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    256,
		CloseTimeout:     15 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		StreamName:       DefaultStreamName,
	}
}

// StreamConfig defines the catalog event stream.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamName is the JetStream stream holding catalog events.
const DefaultStreamName = "CATALOG_EVENTS"

// DefaultStreamConfig returns the catalog stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            DefaultStreamName,
		Subjects:        []string{SubjectWildcard},
		MaxAge:          24 * time.Hour,
		MaxBytes:        512 << 20, // 512MB
		MaxMsgs:         -1,        // Unlimited
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Failures before opening
}

// DefaultCircuitBreakerConfig returns defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// validateEventsConfig checks the settings the bus depends on.
func validateEventsConfig(cfg *config.EventsConfig) error {
	switch cfg.Transport {
	case config.TransportGoChannel:
	case config.TransportNATS:
		if cfg.NATSURL == "" && !cfg.EmbeddedServer {
			return fmt.Errorf("%w: nats transport requires a URL or the embedded server", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
	if cfg.RouterRetryCount < 0 {
		return fmt.Errorf("%w: negative retry count", ErrInvalidConfig)
	}
	return nil
}
