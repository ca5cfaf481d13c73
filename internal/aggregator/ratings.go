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

// RecomputeFromScratch rebuilds a game's rating from every active review.
// It is used for review inserts, edits and deletes alike. GameStatsChanged
// is published only when the stored rating changed.
func (a *Aggregator) RecomputeFromScratch(ctx context.Context, gameID string) (*models.Game, error) {
	start := time.Now()
	g, err := a.MutateGame(ctx, gameID, eventprocessor.ReasonRating, rescanRating)
	metrics.RecordRecompute("game_rating", time.Since(start), err)
	return g, err
}

// rescanRating folds Record over the active reviews of g.
func rescanRating(tx store.Tx, g *models.Game) (bool, error) {
	reviews, err := tx.ReviewsForGame(g.ID)
	if err != nil {
		return false, err
	}

	rating := models.NewRating()
	for _, r := range reviews {
		if !r.IsActive() {
			continue
		}
		if err := rating.Record(r.Rating); err != nil {
			return false, err
		}
	}

	if g.Rating.Equal(rating) {
		return false, nil
	}
	g.Rating = rating
	return true, nil
}
