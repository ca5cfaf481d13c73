// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package aggregator maintains the derived state of the catalog: each game's
rating and statistics, and each category's rollup.

# Game rating

One strategy covers review insert, edit and delete: RecomputeFromScratch
rebuilds the rating from zero by folding models.Rating.Record over every
active review of the game. The rescan runs inside a single store Update
transaction while holding a per-game lock, so two concurrent review writes
can never both read a stale distribution and write back a result that
misses one of them.

Every mutation of a game document goes through the same path
(MutateGame): rating rescans, play statistics, favorite counters and admin
edits. Storage engines also detect conflicting transactions and report
store.ErrConflict. The aggregator does not retry; HTTP handlers surface
the conflict and the event router owns the retry policy for
event-driven recomputes.

# Events

The aggregator consumes ReviewCommitted and publishes GameStatsChanged
whenever a game's stored numbers changed. The rollup subscriber consumes
GameStatsChanged and publishes CategoryStatsChanged:

	agg, err := aggregator.New(store, bus.Publisher(), aggregator.Config{
	    RollupPolicy: config.RollupPolicyUnweighted,
	})
	if err != nil {
	    return err
	}
	if err := agg.Subscribe(bus, cfg.Events.AutoRollup); err != nil {
	    return err
	}

# Category rollup

RecomputeCategoryStats scans the active games filed directly under a
category and stores gameCount, the sum of playCount and the average rating.
The default policy is the unweighted mean of game averages; play_weighted
weights each game by its play count.

# Favorites

The favorite relation is the single source of truth. AddFavorite and
RemoveFavorite change the relation and the game counter in one
transaction; ReconcileFavorites recounts the counter from the relation.
*/
package aggregator
