// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package models defines the documents stored by Gamecatalog and the derived
values computed from them.

Documents:

  - Game: catalog entry with its Rating (average, count, distribution) and
    GameStats (plays, play time, favorites)
  - Category: taxonomy node with an optional parent and cached CategoryStats
  - Review: one user's 1-5 star review of one game, with moderation state
  - User: account, role and activity counters
  - Favorite: the game-to-user favorite relation

Derived values:

  - Rating.Record folds one star value into a rating; a full rescan is a fold
    of Record over every active review
  - Game.Popularity and RatingLevel are computed at read time and never stored

Rating invariants:

	sum(Distribution) == Count
	Average == weighted mean of Distribution
	Count == 0  =>  Average == 0

Models carry no locks. Concurrent mutation of a stored document is serialized
by the aggregator and the store transaction that wraps it.

JSON:

Stored documents and API payloads use snake_case field names. Fields that must
never leave the server (password hashes, voter sets) are dropped by the View
and Profile helpers rather than by the storage encoding.
*/
package models
