// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/gamecatalog/internal/logging"
)

// EventRouter is satisfied by *eventprocessor.Bus.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventRouterService runs the event bus router under supervision.
//
// A Watermill router cannot be started twice, so a router that stops on
// its own terminates the tree instead of being restarted. Handler failures
// never reach this point; the router retries them and moves poison
// messages aside.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService creates the service.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{
		router: router,
		name:   "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	ev := logging.Error().Str("service", s.name)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("Event router stopped unexpectedly; derived statistics would go stale")
	return suture.ErrTerminateSupervisorTree
}

// String names the service in supervisor logs.
func (s *EventRouterService) String() string {
	return s.name
}
