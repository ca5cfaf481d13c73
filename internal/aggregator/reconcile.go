// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/gamecatalog/internal/metrics"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// ReconcileReport summarizes a Reconcile run.
type ReconcileReport struct {
	GamesScanned      int           `json:"games_scanned"`
	RatingsRepaired   int           `json:"ratings_repaired"`
	FavoritesRepaired int           `json:"favorites_repaired"`
	Categories        int           `json:"categories"`
	Duration          time.Duration `json:"duration"`
}

// Reconcile recomputes every game's rating and favorite counter from
// their sources of truth and then every category rollup. It repairs
// derived state left stale by lost events or a crash between commit and
// publish.
func (a *Aggregator) Reconcile(ctx context.Context) (ReconcileReport, error) {
	start := time.Now()
	var report ReconcileReport

	var ids []string
	err := a.store.View(ctx, func(tx store.Tx) error {
		games, err := tx.FindGames(nil)
		if err != nil {
			return err
		}
		for _, g := range games {
			ids = append(ids, g.ID)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.GamesScanned++

		repaired, err := a.reconcileRating(ctx, id)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return report, err
		}
		if repaired {
			report.RatingsRepaired++
		}

		repaired, err = a.ReconcileFavorites(ctx, id)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return report, err
		}
		if repaired {
			report.FavoritesRepaired++
		}
	}

	report.Categories, err = a.RecomputeAllCategories(ctx)
	if err != nil {
		return report, err
	}
	report.Duration = time.Since(start)

	metrics.RecordReconcile(map[string]int{
		"game_rating": report.RatingsRepaired,
		"favorites":   report.FavoritesRepaired,
	})
	a.logger.Info().
		Int("games", report.GamesScanned).
		Int("ratings_repaired", report.RatingsRepaired).
		Int("favorites_repaired", report.FavoritesRepaired).
		Int("categories", report.Categories).
		Dur("duration", report.Duration).
		Msg("Reconcile completed")
	return report, nil
}

// reconcileRating runs the rating rescan and reports whether the stored
// rating differed.
func (a *Aggregator) reconcileRating(ctx context.Context, gameID string) (bool, error) {
	before, err := a.getGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	after, err := a.RecomputeFromScratch(ctx, gameID)
	if err != nil {
		return false, err
	}
	return !before.Rating.Equal(after.Rating), nil
}

func (a *Aggregator) getGame(ctx context.Context, gameID string) (*models.Game, error) {
	var g *models.Game
	err := a.store.View(ctx, func(tx store.Tx) error {
		var err error
		g, err = tx.GetGame(gameID)
		return err
	})
	return g, err
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
