// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

func startTestBus(t *testing.T, autoRollup bool) (*eventprocessor.Bus, *Aggregator, *store.DocumentStore) {
	t.Helper()
	cfg := config.EventsConfig{
		Transport:                  config.TransportGoChannel,
		AutoRollup:                 autoRollup,
		RouterRetryCount:           1,
		RouterRetryInitialInterval: time.Millisecond,
		RouterRetryMaxInterval:     time.Millisecond,
		RouterPoisonQueueEnabled:   true,
		RouterPoisonQueueTopic:     eventprocessor.DefaultPoisonTopic,
		RouterCloseTimeout:         time.Second,
	}
	bus, err := eventprocessor.NewBusWithTransport(&cfg, eventprocessor.NewGoChannelTransport(watermill.NopLogger{}))
	require.NoError(t, err)

	s := newTestStore(t)
	agg, err := New(s, bus.Publisher(), Config{})
	require.NoError(t, err)
	require.NoError(t, agg.Subscribe(bus, autoRollup))

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
	return bus, agg, s
}

func TestReviewCommittedDrivesRollup(t *testing.T) {
	ctx := context.Background()
	bus, _, s := startTestBus(t, true)
	seedCategory(t, s, "c1")
	seedGame(t, s, "g1", "c1")
	seedGame(t, s, "g2", "c1")

	r1 := insertReview(t, s, "g1", "u1", 4)
	r2 := insertReview(t, s, "g2", "u1", 2)
	for _, r := range []*models.Review{r1, r2} {
		event := eventprocessor.NewReviewCommitted(r.ID, r.GameID, r.UserID, eventprocessor.ReviewCreated)
		require.NoError(t, bus.Publisher().Publish(ctx, event))
	}

	// The in-process transport acknowledges only after every handler in the
	// chain has run.
	assert.Equal(t, 1, loadGame(t, s, "g1").Rating.Count)
	assert.Equal(t, 1, loadGame(t, s, "g2").Rating.Count)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		c, err := tx.GetCategory("c1")
		require.NoError(t, err)
		assert.Equal(t, 2, c.Stats.GameCount)
		assert.InDelta(t, 3.0, c.Stats.AverageRating, 1e-9)
		return nil
	}))
}

func TestReviewCommittedForDeletedGameIsDropped(t *testing.T) {
	bus, _, _ := startTestBus(t, false)

	event := eventprocessor.NewReviewCommitted("r1", "gone", "u1", eventprocessor.ReviewDeleted)
	require.NoError(t, bus.Publisher().Publish(context.Background(), event))
}

func TestRollupDisabled(t *testing.T) {
	ctx := context.Background()
	bus, _, s := startTestBus(t, false)
	seedCategory(t, s, "c1")
	seedGame(t, s, "g1", "c1")
	r := insertReview(t, s, "g1", "u1", 5)

	require.NoError(t, bus.Publisher().Publish(ctx,
		eventprocessor.NewReviewCommitted(r.ID, "g1", "u1", eventprocessor.ReviewCreated)))

	assert.Equal(t, 1, loadGame(t, s, "g1").Rating.Count)
	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		c, err := tx.GetCategory("c1")
		require.NoError(t, err)
		assert.Zero(t, c.Stats.GameCount)
		assert.Nil(t, c.Stats.UpdatedAt)
		return nil
	}))
}
