// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/gamecatalog/internal/config"
)

func startEmbeddedNATS(t *testing.T) *EmbeddedServer {
	t.Helper()
	srv, err := NewEmbeddedServer(&ServerConfig{
		Host:              "127.0.0.1",
		Port:              server.RANDOM_PORT,
		StoreDir:          t.TempDir(),
		JetStreamMaxMem:   64 << 20,
		JetStreamMaxStore: 256 << 20,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func natsEventsConfig(url string) config.EventsConfig {
	cfg := testEventsConfig()
	cfg.Transport = config.TransportNATS
	cfg.NATSURL = url
	cfg.QueueGroup = "gamecatalog-test"
	return cfg
}

// assertNATSDelivery runs a bus against url and checks that a published
// event reaches a competing handler exactly once and every fanout handler.
func assertNATSDelivery(t *testing.T, url string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := natsEventsConfig(url)
	bus, err := NewBus(ctx, &cfg)
	require.NoError(t, err)
	assert.False(t, bus.Synchronous())
	assert.Equal(t, config.TransportNATS, bus.Transport())

	competing := make(chan *ReviewCommitted, 4)
	fanout := make(chan *ReviewCommitted, 4)
	require.NoError(t, bus.Subscribe("recompute", TopicReviewCommitted, false, HandleReviewCommitted("recompute",
		func(_ context.Context, e *ReviewCommitted) error {
			competing <- e
			return nil
		})))
	require.NoError(t, bus.Subscribe("feed", TopicReviewCommitted, true, HandleReviewCommitted("feed",
		func(_ context.Context, e *ReviewCommitted) error {
			fanout <- e
			return nil
		})))

	startBus(t, bus)

	event := NewReviewCommitted("r1", "g1", "u1", ReviewCreated)
	require.NoError(t, bus.Publisher().Publish(ctx, event))

	for name, ch := range map[string]chan *ReviewCommitted{"competing": competing, "fanout": fanout} {
		select {
		case got := <-ch:
			assert.Equal(t, event.EventID, got.EventID, name)
			assert.Equal(t, "g1", got.GameID, name)
		case <-ctx.Done():
			t.Fatalf("%s handler never received the event", name)
		}
	}

	select {
	case dup := <-competing:
		t.Fatalf("competing handler received a duplicate: %s", dup.EventID)
	case <-time.After(200 * time.Millisecond):
	}

	health := bus.HealthCheck(ctx)
	assert.True(t, health.Healthy)
}

func TestEmbeddedServer(t *testing.T) {
	srv := startEmbeddedNATS(t)
	assert.True(t, srv.IsRunning())
	assert.True(t, srv.JetStreamEnabled())
	assert.Contains(t, srv.ClientURL(), "nats://127.0.0.1:")
}

func TestNATSBusDelivery(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an embedded NATS server")
	}
	srv := startEmbeddedNATS(t)
	assertNATSDelivery(t, srv.ClientURL())
}

func TestNewBusRejectsUnreachableNATS(t *testing.T) {
	cfg := natsEventsConfig("nats://127.0.0.1:1")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewBus(ctx, &cfg)
	assert.Error(t, err)
}
