// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/metrics"
)

func testEventsConfig() config.EventsConfig {
	return config.EventsConfig{
		Transport:                  config.TransportGoChannel,
		RouterRetryCount:           2,
		RouterRetryInitialInterval: time.Millisecond,
		RouterRetryMaxInterval:     5 * time.Millisecond,
		RouterPoisonQueueEnabled:   true,
		RouterPoisonQueueTopic:     DefaultPoisonTopic,
		RouterCloseTimeout:         time.Second,
	}
}

func newTestBus(t *testing.T, cfg config.EventsConfig) *Bus {
	t.Helper()
	bus, err := NewBusWithTransport(&cfg, NewGoChannelTransport(watermill.NopLogger{}))
	if err != nil {
		t.Fatalf("NewBusWithTransport() = %v", err)
	}
	return bus
}

// startBus runs the router until the test ends.
func startBus(t *testing.T, bus *Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bus.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
		<-done
	})

	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
}

func TestBusSynchronousChain(t *testing.T) {
	bus := newTestBus(t, testEventsConfig())

	var mu sync.Mutex
	var seen []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	}

	err := bus.Subscribe("recompute", TopicReviewCommitted, false, HandleReviewCommitted("recompute",
		func(ctx context.Context, e *ReviewCommitted) error {
			record("review:" + e.GameID)
			stats := &GameStatsChanged{
				SchemaVersion: SchemaVersion,
				EventID:       "stats-" + e.EventID,
				GameID:        e.GameID,
				CategoryID:    "c1",
				Reason:        ReasonRating,
			}
			return bus.Publisher().Publish(ctx, stats)
		}))
	if err != nil {
		t.Fatal(err)
	}
	err = bus.Subscribe("rollup", TopicGameStatsChanged, false, HandleGameStatsChanged("rollup",
		func(_ context.Context, e *GameStatsChanged) error {
			record("stats:" + e.CategoryID)
			return nil
		}))
	if err != nil {
		t.Fatal(err)
	}

	startBus(t, bus)

	if !bus.Synchronous() || bus.Transport() != config.TransportGoChannel {
		t.Fatalf("unexpected transport %s", bus.Transport())
	}

	if err := bus.Publisher().Publish(context.Background(), NewReviewCommitted("r1", "g1", "u1", ReviewCreated)); err != nil {
		t.Fatalf("Publish() = %v", err)
	}

	// Publish returns only after the whole chain ran.
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "review:g1" || seen[1] != "stats:c1" {
		t.Errorf("seen = %v", seen)
	}
}

func TestBusRetriesHandlerErrors(t *testing.T) {
	bus := newTestBus(t, testEventsConfig())

	var attempts atomic.Int32
	err := bus.Subscribe("flaky", TopicReviewCommitted, false, HandleReviewCommitted("flaky",
		func(context.Context, *ReviewCommitted) error {
			if attempts.Add(1) < 3 {
				return errors.New("write conflict")
			}
			return nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	startBus(t, bus)

	if err := bus.Publisher().Publish(context.Background(), NewReviewCommitted("r1", "g1", "u1", ReviewCreated)); err != nil {
		t.Fatalf("Publish() = %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestBusPoisonsAfterRetries(t *testing.T) {
	cfg := testEventsConfig()
	cfg.RouterRetryCount = 1
	bus := newTestBus(t, cfg)

	var attempts atomic.Int32
	err := bus.Subscribe("broken", TopicGameStatsChanged, false, HandleGameStatsChanged("broken",
		func(context.Context, *GameStatsChanged) error {
			attempts.Add(1)
			return errors.New("always fails")
		}))
	if err != nil {
		t.Fatal(err)
	}
	startBus(t, bus)

	poisoned := metrics.EventsPublished.WithLabelValues(TopicGameStatsChanged, "poisoned")
	before := testutil.ToFloat64(poisoned)

	event := &GameStatsChanged{SchemaVersion: SchemaVersion, EventID: "e-poison", GameID: "g1", Reason: ReasonPlay}
	if err := bus.Publisher().Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() = %v", err)
	}

	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
	if got := testutil.ToFloat64(poisoned); got != before+1 {
		t.Errorf("poisoned counter = %v, want %v", got, before+1)
	}
}

func TestBusDropsUndecodableMessages(t *testing.T) {
	bus := newTestBus(t, testEventsConfig())

	var calls atomic.Int32
	err := bus.Subscribe("strict", TopicReviewCommitted, false, HandleReviewCommitted("strict",
		func(context.Context, *ReviewCommitted) error {
			calls.Add(1)
			return nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	startBus(t, bus)

	if err := bus.transport.Publisher().Publish(TopicReviewCommitted, message.NewMessage("raw", []byte("garbage"))); err != nil {
		t.Fatalf("raw publish = %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("handler called %d times for garbage", got)
	}
}

func TestBusHealthCheck(t *testing.T) {
	cfg := testEventsConfig()
	cfg.CircuitBreakerEnabled = true
	cfg.CircuitBreakerMaxFailures = 3
	cfg.CircuitBreakerTimeout = time.Second
	bus := newTestBus(t, cfg)

	if h := bus.HealthCheck(context.Background()); h.Healthy {
		t.Error("expected unhealthy before Run")
	}

	startBus(t, bus)

	h := bus.HealthCheck(context.Background())
	if !h.Healthy {
		t.Errorf("expected healthy, got %+v", h)
	}
	if h.Details["circuit_breaker"] != "closed" {
		t.Errorf("circuit_breaker = %v", h.Details["circuit_breaker"])
	}
}
