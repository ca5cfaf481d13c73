// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

func ratedGame(avg float64, count int, plays int64) *models.Game {
	return &models.Game{
		Status: models.GameStatusActive,
		Rating: models.Rating{Average: avg, Count: count},
		Stats:  models.GameStats{PlayCount: plays},
	}
}

func TestComputeRollup(t *testing.T) {
	tests := []struct {
		name   string
		policy string
		games  []*models.Game
		want   models.CategoryStats
	}{
		{
			name:   "empty category",
			policy: config.RollupPolicyUnweighted,
			want:   models.CategoryStats{},
		},
		{
			name:   "unweighted mean of averages",
			policy: config.RollupPolicyUnweighted,
			games:  []*models.Game{ratedGame(4.0, 10, 100), ratedGame(2.0, 1, 0)},
			want:   models.CategoryStats{GameCount: 2, TotalPlayCount: 100, AverageRating: 3.0},
		},
		{
			name:   "unrated games count as zero",
			policy: config.RollupPolicyUnweighted,
			games:  []*models.Game{ratedGame(4.0, 2, 0), ratedGame(0, 0, 0)},
			want:   models.CategoryStats{GameCount: 2, AverageRating: 2.0},
		},
		{
			name:   "play weighted",
			policy: config.RollupPolicyPlayWeighted,
			games:  []*models.Game{ratedGame(4.0, 10, 30), ratedGame(2.0, 1, 10)},
			want:   models.CategoryStats{GameCount: 2, TotalPlayCount: 40, AverageRating: 3.5},
		},
		{
			name:   "play weighted without plays falls back",
			policy: config.RollupPolicyPlayWeighted,
			games:  []*models.Game{ratedGame(4.0, 10, 0), ratedGame(2.0, 1, 0)},
			want:   models.CategoryStats{GameCount: 2, AverageRating: 3.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeRollup(tt.policy, tt.games)
			assert.Equal(t, tt.want.GameCount, got.GameCount)
			assert.Equal(t, tt.want.TotalPlayCount, got.TotalPlayCount)
			assert.InDelta(t, tt.want.AverageRating, got.AverageRating, 1e-9)
		})
	}
}

func TestRecomputeCategoryStats(t *testing.T) {
	ctx := context.Background()
	agg, s, pub := newTestAggregator(t, "")
	seedCategory(t, s, "c1")
	seedGame(t, s, "g1", "c1")
	seedGame(t, s, "g2", "c1")
	seedGame(t, s, "g3", "c1")
	seedGame(t, s, "other", "c2")

	insertReview(t, s, "g1", "u1", 4)
	insertReview(t, s, "g2", "u1", 2)
	insertReview(t, s, "g3", "u1", 5)
	for _, id := range []string{"g1", "g2", "g3"} {
		_, err := agg.RecomputeFromScratch(ctx, id)
		require.NoError(t, err)
	}
	_, err := agg.MutateGame(ctx, "g3", eventprocessor.ReasonEdit, func(_ store.Tx, g *models.Game) (bool, error) {
		g.Status = models.GameStatusInactive
		return true, nil
	})
	require.NoError(t, err)
	pub.Reset()

	c, err := agg.RecomputeCategoryStats(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Stats.GameCount)
	assert.InDelta(t, 3.0, c.Stats.AverageRating, 1e-9)
	require.NotNil(t, c.Stats.UpdatedAt)

	events := pub.Events()
	require.Len(t, events, 1)
	changed := events[0].(*eventprocessor.CategoryStatsChanged)
	assert.Equal(t, "c1", changed.CategoryID)
	assert.Equal(t, 2, changed.Stats.GameCount)

	_, err = agg.RecomputeCategoryStats(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecomputeAllCategories(t *testing.T) {
	ctx := context.Background()
	agg, s, _ := newTestAggregator(t, config.RollupPolicyPlayWeighted)
	for _, id := range []string{"c1", "c2", "c3"} {
		seedCategory(t, s, id)
	}
	seedGame(t, s, "g1", "c1")
	seedGame(t, s, "g2", "c2")
	_, err := agg.IncrementPlayStats(ctx, "g1", "", 10)
	require.NoError(t, err)

	n, err := agg.RecomputeAllCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		c1, err := tx.GetCategory("c1")
		require.NoError(t, err)
		assert.Equal(t, 1, c1.Stats.GameCount)
		assert.Equal(t, int64(1), c1.Stats.TotalPlayCount)

		c3, err := tx.GetCategory("c3")
		require.NoError(t, err)
		assert.Zero(t, c3.Stats.GameCount)
		assert.NotNil(t, c3.Stats.UpdatedAt)
		return nil
	}))
}

func TestRecomputeCategoryStatsDuringGameWrites(t *testing.T) {
	ctx := context.Background()
	agg, s, _ := newTestAggregator(t, "")
	seedCategory(t, s, "c1")
	const games, plays = 4, 25
	for i := 0; i < games; i++ {
		seedGame(t, s, fmt.Sprintf("g%d", i), "c1")
	}

	var eg errgroup.Group
	for i := 0; i < games; i++ {
		id := fmt.Sprintf("g%d", i)
		eg.Go(func() error {
			for j := 0; j < plays; j++ {
				if _, err := agg.IncrementPlayStats(ctx, id, "", 30); err != nil {
					return err
				}
			}
			return nil
		})
	}
	eg.Go(func() error {
		for j := 0; j < 50; j++ {
			if _, err := agg.RecomputeCategoryStats(ctx, "c1"); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, eg.Wait())

	c, err := agg.RecomputeCategoryStats(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, games, c.Stats.GameCount)
	assert.Equal(t, int64(games*plays), c.Stats.TotalPlayCount)
}
