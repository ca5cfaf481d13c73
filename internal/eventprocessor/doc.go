// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

// Package eventprocessor carries the catalog's domain events over Watermill.
//
// Three events exist:
//
//   - ReviewCommitted: a review was created, edited, deleted or moderated.
//     The rating aggregator consumes it and rescans the game's reviews.
//   - GameStatsChanged: a game's rating or statistics changed, or the game
//     moved between categories. The rollup subscriber recomputes the
//     category and the websocket hub broadcasts the new numbers.
//   - CategoryStatsChanged: a category rollup was rewritten.
//
// # Transports
//
// The gochannel transport runs in process. Publishers block until every
// subscriber has acknowledged the message, so an HTTP write returns only
// after the derived state it triggers has been committed:
//
//	ReviewCommitted -> RecomputeFromScratch -> GameStatsChanged
//	    -> RecomputeCategoryStats -> CategoryStatsChanged -> websocket
//
// The nats transport publishes to a JetStream stream (embedded server or
// external). Delivery is asynchronous and derived state is eventually
// consistent. Each handler gets its own queue group so several instances
// share the work, except fan-out handlers (the websocket bridge) which
// receive every message on every instance.
//
// # Router
//
// Handlers are registered on a Router with this middleware stack:
//
//  1. PoisonQueue: messages that still fail go to the poison topic
//  2. Deduplicator: optional, keyed by event ID
//  3. Recoverer: panics become errors
//  4. Retry: exponential backoff, RouterRetryCount attempts
//
// The aggregator never retries itself; the router is the caller that owns
// the retry policy for event-driven recomputes.
//
// # Publishing
//
//	bus, err := eventprocessor.NewBus(ctx, &cfg.Events)
//	...
//	err = bus.Publisher().Publish(ctx, eventprocessor.NewReviewCommitted(
//	    review.ID, review.GameID, review.UserID, eventprocessor.ReviewCreated))
//
// Publishing goes through a gobreaker circuit breaker when enabled so a
// dead broker fails fast instead of stalling every write.
package eventprocessor
