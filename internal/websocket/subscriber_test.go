// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/models"
)

func startBus(t *testing.T, hub *Hub) *eventprocessor.Bus {
	t.Helper()
	cfg := config.EventsConfig{
		Transport:                  config.TransportGoChannel,
		RouterRetryCount:           1,
		RouterRetryInitialInterval: time.Millisecond,
		RouterRetryMaxInterval:     time.Millisecond,
		RouterCloseTimeout:         time.Second,
	}
	bus, err := eventprocessor.NewBusWithTransport(&cfg, eventprocessor.NewGoChannelTransport(watermill.NopLogger{}))
	if err != nil {
		t.Fatalf("NewBusWithTransport() error = %v", err)
	}
	if err := hub.Subscribe(bus); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

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
	return bus
}

func TestSubscribe_ForwardsStatsEvents(t *testing.T) {
	hub := startHub(t)
	bus := startBus(t, hub)
	c := createTestClient(hub, 4)
	hub.Register <- c
	waitForClients(t, hub, 1)

	game := &models.Game{ID: "g1", CategoryID: "c1"}
	_ = game.Rating.Record(4)
	ctx := context.Background()
	if err := bus.Publisher().Publish(ctx, eventprocessor.NewGameStatsChanged(game, eventprocessor.ReasonRating)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	msg := receive(t, c)
	gs, ok := msg.Data.(GameStatsMessage)
	if msg.Type != MessageTypeGameStats || !ok || gs.GameID != "g1" || gs.CategoryID != "c1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if gs.Stats == nil {
		t.Error("expected stats snapshot")
	}

	stats := models.CategoryStats{AverageRating: 4, GameCount: 1}
	if err := bus.Publisher().Publish(ctx, eventprocessor.NewCategoryStatsChanged("c1", stats)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	msg = receive(t, c)
	cs, ok := msg.Data.(CategoryStatsMessage)
	if msg.Type != MessageTypeCategoryStats || !ok || cs.CategoryID != "c1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
