// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/gamecatalog/internal/aggregator"
	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/database"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// testEnv wires a service to an in-memory store and a running in-process
// bus, so review writes return with ratings and rollups already current.
type testEnv struct {
	svc   *Service
	store *store.DocumentStore
	bus   *eventprocessor.Bus
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	backend, err := database.OpenBadger(&config.StoreConfig{Backend: config.StoreBackendBadger, InMemory: true})
	require.NoError(t, err)
	s := store.New(backend)

	eventsCfg := config.EventsConfig{
		Transport:                  config.TransportGoChannel,
		AutoRollup:                 true,
		RouterRetryCount:           1,
		RouterRetryInitialInterval: time.Millisecond,
		RouterRetryMaxInterval:     time.Millisecond,
		RouterPoisonQueueEnabled:   true,
		RouterPoisonQueueTopic:     eventprocessor.DefaultPoisonTopic,
		RouterCloseTimeout:         time.Second,
	}
	bus, err := eventprocessor.NewBusWithTransport(&eventsCfg, eventprocessor.NewGoChannelTransport(watermill.NopLogger{}))
	require.NoError(t, err)

	agg, err := aggregator.New(s, bus.Publisher(), aggregator.Config{})
	require.NoError(t, err)
	require.NoError(t, agg.Subscribe(bus, true))

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
		_ = s.Close()
	})
	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	return &testEnv{
		svc:   NewService(s, agg, bus.Publisher(), cfg),
		store: s,
		bus:   bus,
	}
}

func (e *testEnv) user(t *testing.T, name, role string) Actor {
	t.Helper()
	u, err := e.svc.Register(context.Background(), RegisterInput{
		Username: name, Email: name + "@example.com", PasswordHash: "hash", Role: role,
	})
	require.NoError(t, err)
	return Actor{UserID: u.ID, Role: u.Role}
}

func (e *testEnv) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := e.svc.CreateCategory(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) game(t *testing.T, creator Actor, title, categoryID string) *models.Game {
	t.Helper()
	g, err := e.svc.CreateGame(context.Background(), creator, GameInput{Title: title, CategoryID: categoryID})
	require.NoError(t, err)
	return g
}

func (e *testEnv) reload(t *testing.T, gameID string) *models.Game {
	t.Helper()
	g, err := e.svc.GetGame(context.Background(), gameID, true)
	require.NoError(t, err)
	return g
}

func (e *testEnv) reloadCategory(t *testing.T, id string) *models.Category {
	t.Helper()
	c, err := e.svc.GetCategory(context.Background(), id)
	require.NoError(t, err)
	return c
}
