// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package store

import (
	"errors"
	"fmt"

	"github.com/tomtom215/gamecatalog/internal/models"
)

func (t *docTx) GetGame(id string) (*models.Game, error) {
	var g models.Game
	if err := t.getDoc(colGames, id, &g); err != nil {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}
	return &g, nil
}

func (t *docTx) GetGameBySlug(slug string) (*models.Game, error) {
	id, err := t.lookup(idxGameSlug, normalizeKey(slug))
	if err != nil {
		return nil, fmt.Errorf("game slug %s: %w", slug, err)
	}
	return t.GetGame(id)
}

func (t *docTx) InsertGame(g *models.Game) error {
	taken, err := t.exists(colGames, g.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: game %s exists", ErrDuplicate, g.ID)
	}
	if err := t.claim(idxGameSlug, normalizeKey(g.Slug), g.ID); err != nil {
		return err
	}
	return t.putDoc(colGames, g.ID, g)
}

func (t *docTx) SaveGame(g *models.Game) error {
	old, err := t.GetGame(g.ID)
	if err != nil {
		return err
	}
	if normalizeKey(old.Slug) != normalizeKey(g.Slug) {
		if err := t.claim(idxGameSlug, normalizeKey(g.Slug), g.ID); err != nil {
			return err
		}
		if err := t.kv.Delete(idxGameSlug, normalizeKey(old.Slug)); err != nil {
			return err
		}
	}
	return t.putDoc(colGames, g.ID, g)
}

func (t *docTx) DeleteGame(id string) error {
	g, err := t.GetGame(id)
	if err != nil {
		return err
	}
	if err := t.kv.Delete(idxGameSlug, normalizeKey(g.Slug)); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return t.kv.Delete(colGames, id)
}

func (t *docTx) FindGames(match func(*models.Game) bool) ([]*models.Game, error) {
	return scanDocs(t.kv, colGames, "", match)
}
