// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package store

import (
	"fmt"

	"github.com/tomtom215/gamecatalog/internal/models"
)

func (t *docTx) GetReview(id string) (*models.Review, error) {
	var r models.Review
	if err := t.getDoc(colReviews, id, &r); err != nil {
		return nil, fmt.Errorf("review %s: %w", id, err)
	}
	return &r, nil
}

func (t *docTx) GetReviewByUserAndGame(userID, gameID string) (*models.Review, error) {
	id, err := t.lookup(idxReviewUserGame, compositeKey(userID, gameID))
	if err != nil {
		return nil, fmt.Errorf("review by %s for %s: %w", userID, gameID, err)
	}
	return t.GetReview(id)
}

// InsertReview stores a new review. A user may hold one review per game.
func (t *docTx) InsertReview(r *models.Review) error {
	taken, err := t.exists(colReviews, r.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: review %s exists", ErrDuplicate, r.ID)
	}
	if err := t.claim(idxReviewUserGame, compositeKey(r.UserID, r.GameID), r.ID); err != nil {
		return err
	}
	if err := t.kv.Set(idxReviewsByGame, compositeKey(r.GameID, r.ID), nil); err != nil {
		return err
	}
	return t.putDoc(colReviews, r.ID, r)
}

// SaveReview updates an existing review. GameID and UserID are immutable.
func (t *docTx) SaveReview(r *models.Review) error {
	old, err := t.GetReview(r.ID)
	if err != nil {
		return err
	}
	if old.GameID != r.GameID || old.UserID != r.UserID {
		return fmt.Errorf("review %s: game and author cannot change", r.ID)
	}
	return t.putDoc(colReviews, r.ID, r)
}

// DeleteReview removes a review and its index entries.
func (t *docTx) DeleteReview(id string) error {
	r, err := t.GetReview(id)
	if err != nil {
		return err
	}
	if err := t.kv.Delete(idxReviewUserGame, compositeKey(r.UserID, r.GameID)); err != nil {
		return err
	}
	if err := t.kv.Delete(idxReviewsByGame, compositeKey(r.GameID, r.ID)); err != nil {
		return err
	}
	return t.kv.Delete(colReviews, id)
}

// ReviewsForGame returns every review of a game regardless of status,
// ordered by review id.
func (t *docTx) ReviewsForGame(gameID string) ([]*models.Review, error) {
	ids, err := scanKeys(t.kv, idxReviewsByGame, gameID+keySep)
	if err != nil {
		return nil, err
	}
	reviews := make([]*models.Review, 0, len(ids))
	for _, id := range ids {
		r, err := t.GetReview(id)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

func (t *docTx) FindReviews(match func(*models.Review) bool) ([]*models.Review, error) {
	return scanDocs(t.kv, colReviews, "", match)
}
