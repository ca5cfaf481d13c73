// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/gamecatalog/internal/websocket"
)

var _ suture.Service = (*WebSocketHubService)(nil)

type failingHub struct{ err error }

func (f failingHub) RunWithContext(context.Context) error { return f.err }

func TestWebSocketHubService_Serve(t *testing.T) {
	t.Run("runs the hub until canceled", func(t *testing.T) {
		hub := websocket.NewHub()
		svc := NewWebSocketHubService(hub)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		hub.Broadcast(websocket.MessageTypePing, nil)
		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after cancellation")
		}
		if hub.GetClientCount() != 0 {
			t.Errorf("expected no clients after shutdown, got %d", hub.GetClientCount())
		}
	})

	t.Run("propagates hub errors", func(t *testing.T) {
		hubErr := errors.New("hub failed")
		err := NewWebSocketHubService(failingHub{err: hubErr}).Serve(context.Background())
		if !errors.Is(err, hubErr) {
			t.Errorf("expected %v, got %v", hubErr, err)
		}
	})

	if got := NewWebSocketHubService(websocket.NewHub()).String(); got != "websocket-hub" {
		t.Errorf("expected name websocket-hub, got %q", got)
	}
}
