// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventLogger logs domain event traffic with consistent field names.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates an event logger on the global logger.
func NewEventLogger() *EventLogger {
	return &EventLogger{logger: WithComponent("events")}
}

// NewEventLoggerWithLogger creates an event logger on a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger.With().Str("component", "events").Logger()}
}

func (e *EventLogger) withContext(ctx context.Context) zerolog.Logger {
	lc := e.logger.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	return lc.Logger()
}

// LogPublished records a successful publish.
func (e *EventLogger) LogPublished(ctx context.Context, eventID, topic, gameID string) {
	l := e.withContext(ctx)
	l.Debug().Str("event_id", eventID).Str("topic", topic).Str("game_id", gameID).Msg("Event published")
}

// LogPublishFailed records a publish that returned an error.
func (e *EventLogger) LogPublishFailed(ctx context.Context, eventID, topic string, err error) {
	l := e.withContext(ctx)
	l.Error().Err(err).Str("event_id", eventID).Str("topic", topic).Msg("Event publish failed")
}

// LogHandled records a handler finishing an event.
func (e *EventLogger) LogHandled(ctx context.Context, handler, eventID string, d time.Duration) {
	l := e.withContext(ctx)
	l.Debug().Str("handler", handler).Str("event_id", eventID).Dur("duration", d).Msg("Event handled")
}

// LogHandlerFailed records a handler error. The router may redeliver.
func (e *EventLogger) LogHandlerFailed(ctx context.Context, handler, eventID string, err error) {
	l := e.withContext(ctx)
	l.Warn().Err(err).Str("handler", handler).Str("event_id", eventID).Msg("Event handler failed")
}

// LogSubscriptionStarted records a subscription.
func (e *EventLogger) LogSubscriptionStarted(topic, handler string) {
	e.logger.Info().Str("topic", topic).Str("handler", handler).Msg("Subscribed")
}

// LogRouterStarted records the router running.
func (e *EventLogger) LogRouterStarted(transport string) {
	e.logger.Info().Str("transport", transport).Msg("Event router started")
}

// LogRouterStopped records the router stopping.
func (e *EventLogger) LogRouterStopped() {
	e.logger.Info().Msg("Event router stopped")
}
