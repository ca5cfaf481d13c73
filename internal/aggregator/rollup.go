// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/metrics"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// rollupConcurrency bounds RecomputeAllCategories.
const rollupConcurrency = 4

// RecomputeCategoryStats rebuilds the rollup of one category from the
// active games filed directly under it and publishes CategoryStatsChanged.
func (a *Aggregator) RecomputeCategoryStats(ctx context.Context, categoryID string) (*models.Category, error) {
	start := time.Now()
	c, err := a.recomputeCategory(ctx, categoryID)
	metrics.RecordRecompute("category_rollup", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	a.publish(ctx, eventprocessor.NewCategoryStatsChanged(c.ID, c.Stats))
	return c, nil
}

func (a *Aggregator) recomputeCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	unlock, err := a.locks.Lock(ctx, categoryKey(categoryID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The write transaction reads only the category. A game changed after
	// this View publishes its own GameStatsChanged and rolls up again.
	var games []*models.Game
	err = a.store.View(ctx, func(tx store.Tx) error {
		if _, err := tx.GetCategory(categoryID); err != nil {
			return err
		}
		games, err = tx.FindGames(func(g *models.Game) bool {
			return g.CategoryID == categoryID && g.IsActive()
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	stats := computeRollup(a.cfg.RollupPolicy, games)

	var out *models.Category
	err = a.store.Update(ctx, func(tx store.Tx) error {
		c, err := tx.GetCategory(categoryID)
		if err != nil {
			return err
		}
		now := a.now()
		c.Stats = stats
		c.Stats.UpdatedAt = &now
		out = c
		return tx.SaveCategory(c)
	})
	return out, err
}

// RecomputeAllCategories refreshes every category rollup and returns how
// many were written.
func (a *Aggregator) RecomputeAllCategories(ctx context.Context) (int, error) {
	var ids []string
	err := a.store.View(ctx, func(tx store.Tx) error {
		categories, err := tx.FindCategories(nil)
		if err != nil {
			return err
		}
		for _, c := range categories {
			ids = append(ids, c.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rollupConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			_, err := a.RecomputeCategoryStats(gctx, id)
			if isNotFound(err) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// computeRollup aggregates games under policy. Games without reviews count
// with an average of zero.
func computeRollup(policy string, games []*models.Game) models.CategoryStats {
	stats := models.CategoryStats{GameCount: len(games)}
	if len(games) == 0 {
		return stats
	}

	var sumAvg, weighted float64
	for _, g := range games {
		avg := g.Rating.Average
		if g.Rating.Count == 0 {
			avg = 0
		}
		sumAvg += avg
		weighted += avg * float64(g.Stats.PlayCount)
		stats.TotalPlayCount += g.Stats.PlayCount
	}

	if policy == config.RollupPolicyPlayWeighted && stats.TotalPlayCount > 0 {
		stats.AverageRating = weighted / float64(stats.TotalPlayCount)
		return stats
	}
	stats.AverageRating = sumAvg / float64(len(games))
	return stats
}
