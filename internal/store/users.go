// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package store

import (
	"fmt"

	"github.com/tomtom215/gamecatalog/internal/models"
)

func (t *docTx) GetUser(id string) (*models.User, error) {
	var u models.User
	if err := t.getDoc(colUsers, id, &u); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return &u, nil
}

// GetUserByUsername looks a user up by case-insensitive username.
func (t *docTx) GetUserByUsername(username string) (*models.User, error) {
	id, err := t.lookup(idxUsername, normalizeKey(username))
	if err != nil {
		return nil, fmt.Errorf("username %s: %w", username, err)
	}
	return t.GetUser(id)
}

// GetUserByEmail looks a user up by case-insensitive email.
func (t *docTx) GetUserByEmail(email string) (*models.User, error) {
	id, err := t.lookup(idxEmail, normalizeKey(email))
	if err != nil {
		return nil, fmt.Errorf("email %s: %w", email, err)
	}
	return t.GetUser(id)
}

func (t *docTx) InsertUser(u *models.User) error {
	taken, err := t.exists(colUsers, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: user %s exists", ErrDuplicate, u.ID)
	}
	if err := t.claim(idxUsername, normalizeKey(u.Username), u.ID); err != nil {
		return err
	}
	if err := t.claim(idxEmail, normalizeKey(u.Email), u.ID); err != nil {
		return err
	}
	return t.putDoc(colUsers, u.ID, u)
}

func (t *docTx) SaveUser(u *models.User) error {
	old, err := t.GetUser(u.ID)
	if err != nil {
		return err
	}
	if normalizeKey(old.Username) != normalizeKey(u.Username) {
		if err := t.claim(idxUsername, normalizeKey(u.Username), u.ID); err != nil {
			return err
		}
		if err := t.kv.Delete(idxUsername, normalizeKey(old.Username)); err != nil {
			return err
		}
	}
	if normalizeKey(old.Email) != normalizeKey(u.Email) {
		if err := t.claim(idxEmail, normalizeKey(u.Email), u.ID); err != nil {
			return err
		}
		if err := t.kv.Delete(idxEmail, normalizeKey(old.Email)); err != nil {
			return err
		}
	}
	return t.putDoc(colUsers, u.ID, u)
}

func (t *docTx) FindUsers(match func(*models.User) bool) ([]*models.User, error) {
	return scanDocs(t.kv, colUsers, "", match)
}
