// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"time"

	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/metrics"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// AddFavorite records that userID favorited gameID and increments the
// game's counter in the same transaction. A repeated favorite fails with
// store.ErrDuplicate and changes nothing.
func (a *Aggregator) AddFavorite(ctx context.Context, gameID, userID string) (*models.Game, error) {
	return a.MutateGame(ctx, gameID, eventprocessor.ReasonFavorite, func(tx store.Tx, g *models.Game) (bool, error) {
		if _, err := tx.GetUser(userID); err != nil {
			return false, err
		}
		err := tx.InsertFavorite(&models.Favorite{
			GameID:    gameID,
			UserID:    userID,
			CreatedAt: a.now(),
		})
		if err != nil {
			return false, err
		}
		g.Stats.IncrementFavorites()
		return true, nil
	})
}

// RemoveFavorite deletes the relation and decrements the counter, which
// never drops below zero. A missing relation fails with store.ErrNotFound.
func (a *Aggregator) RemoveFavorite(ctx context.Context, gameID, userID string) (*models.Game, error) {
	return a.MutateGame(ctx, gameID, eventprocessor.ReasonFavorite, func(tx store.Tx, g *models.Game) (bool, error) {
		if err := tx.DeleteFavorite(gameID, userID); err != nil {
			return false, err
		}
		g.Stats.DecrementFavorites()
		return true, nil
	})
}

// ReconcileFavorites sets the game's favorite counter to the size of its
// favorite relation. It reports whether the counter had drifted.
func (a *Aggregator) ReconcileFavorites(ctx context.Context, gameID string) (bool, error) {
	start := time.Now()
	var repaired bool
	_, err := a.MutateGame(ctx, gameID, eventprocessor.ReasonFavorite, func(tx store.Tx, g *models.Game) (bool, error) {
		favs, err := tx.FavoritesForGame(gameID)
		if err != nil {
			return false, err
		}
		count := int64(len(favs))
		if g.Stats.FavoriteCount == count {
			return false, nil
		}
		g.Stats.FavoriteCount = count
		repaired = true
		return true, nil
	})
	metrics.RecordRecompute("favorites", time.Since(start), err)
	return repaired, err
}

// IsFavorite reports whether userID favorited gameID.
func (a *Aggregator) IsFavorite(ctx context.Context, gameID, userID string) (bool, error) {
	var found bool
	err := a.store.View(ctx, func(tx store.Tx) error {
		_, err := tx.GetFavorite(gameID, userID)
		if err == nil {
			found = true
			return nil
		}
		if isNotFound(err) {
			return nil
		}
		return err
	})
	return found, err
}
