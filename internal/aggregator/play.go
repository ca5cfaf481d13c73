// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// IncrementPlayStats records one play session of playTime seconds: the
// game's playCount, totalPlayTime and averagePlayTime and, when userID is
// set, the player's gamesPlayed and totalPlayTime, all in one transaction.
func (a *Aggregator) IncrementPlayStats(ctx context.Context, gameID, userID string, playTime int64) (*models.Game, error) {
	if playTime < 0 {
		return nil, fmt.Errorf("%w: %d is negative", ErrInvalidPlayTime, playTime)
	}
	if limit := a.cfg.MaxPlayTime; limit > 0 && playTime > limit {
		return nil, fmt.Errorf("%w: %d exceeds %d seconds", ErrInvalidPlayTime, playTime, limit)
	}

	return a.mutateGameAs(ctx, gameID, userID, eventprocessor.ReasonPlay, func(tx store.Tx, g *models.Game) (bool, error) {
		if !g.IsActive() {
			return false, fmt.Errorf("%w: %s is %s", ErrGameUnavailable, g.ID, g.Status)
		}
		if !g.Stats.CanRecordPlay(playTime) {
			return false, fmt.Errorf("%w: %d overflows the totals of %s", ErrInvalidPlayTime, playTime, g.ID)
		}
		g.Stats.RecordPlay(playTime)

		if userID == "" {
			return true, nil
		}
		u, err := tx.GetUser(userID)
		if errors.Is(err, store.ErrNotFound) {
			// Accounts can be removed while a token is still valid.
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if u.Stats.TotalPlayTime > math.MaxInt64-playTime {
			return false, fmt.Errorf("%w: %d overflows the totals of user %s", ErrInvalidPlayTime, playTime, u.ID)
		}
		u.Stats.GamesPlayed++
		u.Stats.TotalPlayTime += playTime
		u.UpdatedAt = a.now()
		if err := tx.SaveUser(u); err != nil {
			return false, err
		}
		return true, nil
	})
}
