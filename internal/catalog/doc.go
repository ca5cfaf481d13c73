// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package catalog implements the use cases behind the HTTP API: categories,
games, reviews, users and favorites.

Writes that touch derived state never compute it here. Game documents are
only written through the aggregator (MutateGame, RemoveGame,
IncrementPlayStats, AddFavorite, RemoveFavorite). Review writes run under
the aggregator's game and user locks and publish ReviewCommitted once the
transaction committed; the aggregator rebuilds the rating from that event.

Callers pass an Actor describing the authenticated user. Role checks for
whole routes live in internal/authz; ownership checks (review author, own
profile, game creator replying) live here and fail with ErrForbidden.
*/
package catalog
