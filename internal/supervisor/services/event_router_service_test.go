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
)

type fakeRouter struct {
	stopEarly error
	early     bool
}

func (f *fakeRouter) Run(ctx context.Context) error {
	if f.early {
		return f.stopEarly
	}
	<-ctx.Done()
	return nil
}

var _ suture.Service = (*EventRouterService)(nil)

func TestEventRouterService(t *testing.T) {
	t.Run("stops with the context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := NewEventRouterService(&fakeRouter{}).Serve(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})

	t.Run("early stop terminates the tree", func(t *testing.T) {
		for _, routerErr := range []error{nil, errors.New("subscriber closed")} {
			svc := NewEventRouterService(&fakeRouter{early: true, stopEarly: routerErr})
			if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrTerminateSupervisorTree) {
				t.Errorf("router error %v: expected ErrTerminateSupervisorTree, got %v", routerErr, err)
			}
		}
	})

	if got := NewEventRouterService(&fakeRouter{}).String(); got != "event-router" {
		t.Errorf("expected name event-router, got %q", got)
	}
}
