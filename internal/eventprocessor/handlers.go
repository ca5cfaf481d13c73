// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/metrics"
)

// ReviewCommittedHandler processes ReviewCommitted events.
type ReviewCommittedHandler func(ctx context.Context, e *ReviewCommitted) error

// GameStatsChangedHandler processes GameStatsChanged events.
type GameStatsChangedHandler func(ctx context.Context, e *GameStatsChanged) error

// CategoryStatsChangedHandler processes CategoryStatsChanged events.
type CategoryStatsChangedHandler func(ctx context.Context, e *CategoryStatsChanged) error

// typedHandler decodes the message into a fresh event from newEvent, runs
// fn and records metrics. Undecodable messages are dropped, since retrying
// them cannot succeed.
func typedHandler[E Event](name string, newEvent func() E, fn func(context.Context, E) error) message.NoPublishHandlerFunc {
	events := logging.NewEventLogger()
	return func(msg *message.Message) error {
		ctx := messageContext(msg)
		event := newEvent()
		if err := Decode(msg, event); err != nil {
			events.LogHandlerFailed(ctx, name, msg.UUID, err)
			metrics.RecordEventHandled(name, 0, err)
			return nil
		}

		start := time.Now()
		err := fn(ctx, event)
		elapsed := time.Since(start)
		metrics.RecordEventHandled(name, elapsed, err)
		if err != nil {
			events.LogHandlerFailed(ctx, name, event.ID(), err)
			return err
		}
		events.LogHandled(ctx, name, event.ID(), elapsed)
		return nil
	}
}

// HandleReviewCommitted adapts fn to a Watermill handler.
func HandleReviewCommitted(name string, fn ReviewCommittedHandler) message.NoPublishHandlerFunc {
	return typedHandler[*ReviewCommitted](name, func() *ReviewCommitted { return &ReviewCommitted{} }, fn)
}

// HandleGameStatsChanged adapts fn to a Watermill handler.
func HandleGameStatsChanged(name string, fn GameStatsChangedHandler) message.NoPublishHandlerFunc {
	return typedHandler[*GameStatsChanged](name, func() *GameStatsChanged { return &GameStatsChanged{} }, fn)
}

// HandleCategoryStatsChanged adapts fn to a Watermill handler.
func HandleCategoryStatsChanged(name string, fn CategoryStatsChangedHandler) message.NoPublishHandlerFunc {
	return typedHandler[*CategoryStatsChanged](name, func() *CategoryStatsChanged { return &CategoryStatsChanged{} }, fn)
}

// poisonLogger records messages that were moved to the poison topic. The
// reconcile job repairs whatever derived state they left stale.
func poisonLogger(msg *message.Message) error {
	logging.Error().
		Str("message_uuid", msg.UUID).
		Str("event_type", msg.Metadata.Get(MetadataEventType)).
		Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
		Str("handler", msg.Metadata.Get(middleware.PoisonedHandlerKey)).
		Msg("Event poisoned after retries")
	metrics.RecordEventPublish(msg.Metadata.Get(MetadataEventType), "poisoned")
	return nil
}
