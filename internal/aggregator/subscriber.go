// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"fmt"

	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
)

// Handler names registered by Subscribe.
const (
	HandlerRatingRecompute = "rating-recompute"
	HandlerCategoryRollup  = "category-rollup"
)

// Subscribe registers the aggregator's event handlers on bus. The rollup
// handler is registered only when autoRollup is set; otherwise rollups are
// refreshed by Reconcile and the admin endpoint.
func (a *Aggregator) Subscribe(bus *eventprocessor.Bus, autoRollup bool) error {
	err := bus.Subscribe(HandlerRatingRecompute, eventprocessor.TopicReviewCommitted, false,
		eventprocessor.HandleReviewCommitted(HandlerRatingRecompute, a.onReviewCommitted))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", HandlerRatingRecompute, err)
	}
	if !autoRollup {
		return nil
	}
	err = bus.Subscribe(HandlerCategoryRollup, eventprocessor.TopicGameStatsChanged, false,
		eventprocessor.HandleGameStatsChanged(HandlerCategoryRollup, a.onGameStatsChanged))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", HandlerCategoryRollup, err)
	}
	return nil
}

// onReviewCommitted rescans the game of the review. A game deleted in the
// meantime has nothing left to recompute.
func (a *Aggregator) onReviewCommitted(ctx context.Context, e *eventprocessor.ReviewCommitted) error {
	_, err := a.RecomputeFromScratch(ctx, e.GameID)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (a *Aggregator) onGameStatsChanged(ctx context.Context, e *eventprocessor.GameStatsChanged) error {
	for _, id := range e.AffectedCategories() {
		if _, err := a.RecomputeCategoryStats(ctx, id); err != nil && !isNotFound(err) {
			return err
		}
	}
	return nil
}
