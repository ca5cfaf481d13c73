// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package store

import (
	"fmt"

	"github.com/tomtom215/gamecatalog/internal/models"
)

// Favorites are keyed game/user; the by-user index is keyed user/game.

func (t *docTx) GetFavorite(gameID, userID string) (*models.Favorite, error) {
	var f models.Favorite
	if err := t.getDoc(colFavorites, compositeKey(gameID, userID), &f); err != nil {
		return nil, fmt.Errorf("favorite %s/%s: %w", gameID, userID, err)
	}
	return &f, nil
}

func (t *docTx) InsertFavorite(f *models.Favorite) error {
	key := compositeKey(f.GameID, f.UserID)
	taken, err := t.exists(colFavorites, key)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: favorite %s", ErrDuplicate, key)
	}
	if err := t.kv.Set(idxFavoritesUser, compositeKey(f.UserID, f.GameID), nil); err != nil {
		return err
	}
	return t.putDoc(colFavorites, key, f)
}

func (t *docTx) DeleteFavorite(gameID, userID string) error {
	if _, err := t.GetFavorite(gameID, userID); err != nil {
		return err
	}
	if err := t.kv.Delete(idxFavoritesUser, compositeKey(userID, gameID)); err != nil {
		return err
	}
	return t.kv.Delete(colFavorites, compositeKey(gameID, userID))
}

func (t *docTx) FavoritesForGame(gameID string) ([]*models.Favorite, error) {
	return scanDocs[models.Favorite](t.kv, colFavorites, gameID+keySep, nil)
}

func (t *docTx) FavoritesForUser(userID string) ([]*models.Favorite, error) {
	gameIDs, err := scanKeys(t.kv, idxFavoritesUser, userID+keySep)
	if err != nil {
		return nil, err
	}
	favs := make([]*models.Favorite, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		f, err := t.GetFavorite(gameID, userID)
		if err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, nil
}
