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

func (t *docTx) GetCategory(id string) (*models.Category, error) {
	var c models.Category
	if err := t.getDoc(colCategories, id, &c); err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}
	return &c, nil
}

func (t *docTx) GetCategoryBySlug(slug string) (*models.Category, error) {
	id, err := t.lookup(idxCategorySlug, normalizeKey(slug))
	if err != nil {
		return nil, fmt.Errorf("category slug %s: %w", slug, err)
	}
	return t.GetCategory(id)
}

func (t *docTx) InsertCategory(c *models.Category) error {
	taken, err := t.exists(colCategories, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: category %s exists", ErrDuplicate, c.ID)
	}
	if err := t.claim(idxCategorySlug, normalizeKey(c.Slug), c.ID); err != nil {
		return err
	}
	return t.putDoc(colCategories, c.ID, c)
}

func (t *docTx) SaveCategory(c *models.Category) error {
	old, err := t.GetCategory(c.ID)
	if err != nil {
		return err
	}
	if normalizeKey(old.Slug) != normalizeKey(c.Slug) {
		if err := t.claim(idxCategorySlug, normalizeKey(c.Slug), c.ID); err != nil {
			return err
		}
		if err := t.kv.Delete(idxCategorySlug, normalizeKey(old.Slug)); err != nil {
			return err
		}
	}
	return t.putDoc(colCategories, c.ID, c)
}

func (t *docTx) DeleteCategory(id string) error {
	c, err := t.GetCategory(id)
	if err != nil {
		return err
	}
	if err := t.kv.Delete(idxCategorySlug, normalizeKey(c.Slug)); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return t.kv.Delete(colCategories, id)
}

func (t *docTx) FindCategories(match func(*models.Category) bool) ([]*models.Category, error) {
	return scanDocs(t.kv, colCategories, "", match)
}
