// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/database"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

func newTestStore(t *testing.T) *store.DocumentStore {
	t.Helper()
	backend, err := database.OpenBadger(&config.StoreConfig{Backend: config.StoreBackendBadger, InMemory: true})
	require.NoError(t, err)
	s := store.New(backend)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestAggregator(t *testing.T, policy string) (*Aggregator, *store.DocumentStore, *eventprocessor.RecordingPublisher) {
	t.Helper()
	s := newTestStore(t)
	pub := &eventprocessor.RecordingPublisher{}
	agg, err := New(s, pub, Config{RollupPolicy: policy})
	require.NoError(t, err)
	return agg, s, pub
}

func seedCategory(t *testing.T, s store.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.InsertCategory(&models.Category{
			ID: id, Name: "Category " + id, Slug: id, IsActive: true,
			CreatedAt: now, UpdatedAt: now,
		})
	}))
}

func seedGame(t *testing.T, s store.Store, id, categoryID string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.InsertGame(&models.Game{
			ID: id, Title: "Game " + id, Slug: id, CategoryID: categoryID,
			Status: models.GameStatusActive, Rating: models.NewRating(),
			CreatedAt: now, UpdatedAt: now,
		})
	}))
}

func seedUser(t *testing.T, s store.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.InsertUser(&models.User{
			ID: id, Username: id, Email: id + "@example.com",
			Role: models.RoleUser, IsActive: true, CreatedAt: now, UpdatedAt: now,
		})
	}))
}

func insertReview(t *testing.T, s store.Store, gameID, userID string, stars int) *models.Review {
	t.Helper()
	now := time.Now().UTC()
	r := &models.Review{
		ID: fmt.Sprintf("r-%s-%s", gameID, userID), GameID: gameID, UserID: userID,
		Rating: stars, Content: "review", Status: models.ReviewStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.InsertReview(r)
	}))
	return r
}

func loadGame(t *testing.T, s store.Store, id string) *models.Game {
	t.Helper()
	var g *models.Game
	require.NoError(t, s.View(context.Background(), func(tx store.Tx) error {
		var err error
		g, err = tx.GetGame(id)
		return err
	}))
	return g
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New(newTestStore(t), nil, Config{RollupPolicy: "median"})
	require.ErrorIs(t, err, ErrUnknownPolicy)

	agg, err := New(newTestStore(t), nil, Config{})
	require.NoError(t, err)
	assert.Equal(t, config.RollupPolicyUnweighted, agg.cfg.RollupPolicy)
}

func TestRecomputeFromScratch(t *testing.T) {
	ctx := context.Background()
	agg, s, pub := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")

	for i, stars := range []int{5, 5, 5, 1} {
		insertReview(t, s, "g1", fmt.Sprintf("u%d", i), stars)
	}

	g, err := agg.RecomputeFromScratch(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 4, g.Rating.Count)
	assert.InDelta(t, 4.0, g.Rating.Average, 1e-9)
	assert.Equal(t, 3, g.Rating.Distribution[5])
	assert.Equal(t, 1, g.Rating.Distribution[1])
	assert.Equal(t, models.RatingLevelVeryGood, g.Rating.Level())
	assert.True(t, g.Rating.Consistent())

	stored := loadGame(t, s, "g1")
	assert.True(t, stored.Rating.Equal(g.Rating))

	events := pub.Events()
	require.Len(t, events, 1)
	changed, ok := events[0].(*eventprocessor.GameStatsChanged)
	require.True(t, ok)
	assert.Equal(t, "g1", changed.GameID)
	assert.Equal(t, "c1", changed.CategoryID)
	assert.Equal(t, eventprocessor.ReasonRating, changed.Reason)
	require.NotNil(t, changed.Snapshot)
	assert.Equal(t, 4, changed.Snapshot.Rating.Count)

	// A second rescan finds nothing to change and stays quiet.
	_, err = agg.RecomputeFromScratch(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, pub.Events(), 1)
}

func TestRecomputeIgnoresInactiveReviews(t *testing.T) {
	ctx := context.Background()
	agg, s, _ := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")
	insertReview(t, s, "g1", "u1", 4)
	hidden := insertReview(t, s, "g1", "u2", 1)

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		hidden.Status = models.ReviewStatusHidden
		return tx.SaveReview(hidden)
	}))

	g, err := agg.RecomputeFromScratch(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Rating.Count)
	assert.InDelta(t, 4.0, g.Rating.Average, 1e-9)
}

func TestRecomputeAfterDeletingAllReviews(t *testing.T) {
	ctx := context.Background()
	agg, s, _ := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")
	r1 := insertReview(t, s, "g1", "u1", 3)
	r2 := insertReview(t, s, "g1", "u2", 5)

	_, err := agg.RecomputeFromScratch(ctx, "g1")
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		if err := tx.DeleteReview(r1.ID); err != nil {
			return err
		}
		return tx.DeleteReview(r2.ID)
	}))

	g, err := agg.RecomputeFromScratch(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 0, g.Rating.Count)
	assert.Zero(t, g.Rating.Average)
	assert.Zero(t, g.Rating.Distribution.Total())
	assert.Equal(t, models.RatingLevelPoor, g.Rating.Level())
}

func TestRecomputeMissingGame(t *testing.T) {
	agg, _, pub := newTestAggregator(t, "")
	_, err := agg.RecomputeFromScratch(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, pub.Events())
}

// Concurrent review submissions must all be reflected once every writer's
// recompute has returned.
func TestConcurrentSubmissionsAreNotLost(t *testing.T) {
	ctx := context.Background()
	agg, s, _ := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")

	const writers = 40
	var eg errgroup.Group
	for i := 0; i < writers; i++ {
		stars := i%5 + 1
		user := fmt.Sprintf("u%02d", i)
		eg.Go(func() error {
			err := s.Update(ctx, func(tx store.Tx) error {
				return tx.InsertReview(&models.Review{
					ID: "r-" + user, GameID: "g1", UserID: user, Rating: stars,
					Content: "review", Status: models.ReviewStatusActive,
					CreatedAt: time.Now().UTC(),
				})
			})
			if err != nil {
				return err
			}
			_, err = agg.RecomputeFromScratch(ctx, "g1")
			return err
		})
	}
	require.NoError(t, eg.Wait())

	g := loadGame(t, s, "g1")
	assert.Equal(t, writers, g.Rating.Count)
	assert.Equal(t, g.Rating.Count, g.Rating.Distribution.Total())
	for stars := 1; stars <= 5; stars++ {
		assert.Equal(t, writers/5, g.Rating.Distribution[stars], "bucket %d", stars)
	}
	assert.InDelta(t, 3.0, g.Rating.Average, 1e-9)
	assert.Zero(t, agg.locks.size())
}

func TestIncrementPlayStats(t *testing.T) {
	ctx := context.Background()
	agg, s, pub := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")
	seedUser(t, s, "u1")

	_, err := agg.IncrementPlayStats(ctx, "g1", "u1", 120)
	require.NoError(t, err)
	g, err := agg.IncrementPlayStats(ctx, "g1", "u1", 60)
	require.NoError(t, err)

	assert.Equal(t, int64(2), g.Stats.PlayCount)
	assert.Equal(t, int64(180), g.Stats.TotalPlayTime)
	assert.InDelta(t, 90.0, g.Stats.AveragePlayTime, 1e-9)

	var u *models.User
	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		u, err = tx.GetUser("u1")
		return err
	}))
	assert.Equal(t, int64(2), u.Stats.GamesPlayed)
	assert.Equal(t, int64(180), u.Stats.TotalPlayTime)

	require.Len(t, pub.Events(), 2)
	assert.Equal(t, eventprocessor.ReasonPlay, pub.Events()[1].(*eventprocessor.GameStatsChanged).Reason)
}

func TestIncrementPlayStatsRejects(t *testing.T) {
	ctx := context.Background()
	agg, s, _ := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")

	_, err := agg.IncrementPlayStats(ctx, "g1", "", -1)
	require.ErrorIs(t, err, ErrInvalidPlayTime)

	_, err = agg.IncrementPlayStats(ctx, "missing", "", 10)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = agg.MutateGame(ctx, "g1", eventprocessor.ReasonEdit, func(_ store.Tx, g *models.Game) (bool, error) {
		g.Status = models.GameStatusMaintenance
		return true, nil
	})
	require.NoError(t, err)

	_, err = agg.IncrementPlayStats(ctx, "g1", "", 10)
	require.ErrorIs(t, err, ErrGameUnavailable)
	assert.Zero(t, loadGame(t, s, "g1").Stats.PlayCount)
}

func TestIncrementPlayStatsKeepsTotalsBounded(t *testing.T) {
	ctx := context.Background()
	agg, s, _ := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")
	seedUser(t, s, "u1")

	_, err := agg.IncrementPlayStats(ctx, "g1", "u1", math.MaxInt64)
	require.NoError(t, err)
	_, err = agg.IncrementPlayStats(ctx, "g1", "u1", 10)
	require.ErrorIs(t, err, ErrInvalidPlayTime)

	g := loadGame(t, s, "g1")
	assert.Equal(t, int64(1), g.Stats.PlayCount)
	assert.Equal(t, int64(math.MaxInt64), g.Stats.TotalPlayTime)
	assert.Positive(t, g.Stats.AveragePlayTime)

	var u *models.User
	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		u, err = tx.GetUser("u1")
		return err
	}))
	assert.Equal(t, int64(1), u.Stats.GamesPlayed)
	assert.Equal(t, int64(math.MaxInt64), u.Stats.TotalPlayTime)
}

func TestIncrementPlayStatsSessionLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	agg, err := New(s, &eventprocessor.RecordingPublisher{}, Config{MaxPlayTime: 3600})
	require.NoError(t, err)
	seedGame(t, s, "g1", "c1")

	_, err = agg.IncrementPlayStats(ctx, "g1", "", 3600)
	require.NoError(t, err)
	_, err = agg.IncrementPlayStats(ctx, "g1", "", 3601)
	require.ErrorIs(t, err, ErrInvalidPlayTime)
	assert.Equal(t, int64(1), loadGame(t, s, "g1").Stats.PlayCount)
}

func TestIncrementPlayStatsWithoutUser(t *testing.T) {
	agg, s, _ := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")

	g, err := agg.IncrementPlayStats(context.Background(), "g1", "gone", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.Stats.PlayCount)
}

func TestMutateGameCategoryMove(t *testing.T) {
	agg, s, pub := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")

	_, err := agg.MutateGame(context.Background(), "g1", eventprocessor.ReasonEdit, func(_ store.Tx, g *models.Game) (bool, error) {
		g.CategoryID = "c2"
		return true, nil
	})
	require.NoError(t, err)

	events := pub.Events()
	require.Len(t, events, 1)
	changed := events[0].(*eventprocessor.GameStatsChanged)
	assert.Equal(t, []string{"c2", "c1"}, changed.AffectedCategories())
}

func TestMutateGameNoChangeSkipsWrite(t *testing.T) {
	agg, s, pub := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")
	before := loadGame(t, s, "g1")

	_, err := agg.MutateGame(context.Background(), "g1", eventprocessor.ReasonEdit, func(store.Tx, *models.Game) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Empty(t, pub.Events())
	assert.True(t, before.UpdatedAt.Equal(loadGame(t, s, "g1").UpdatedAt))
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	agg, s, pub := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")
	pub.Err = eventprocessor.ErrPublisherClosed

	g, err := agg.IncrementPlayStats(context.Background(), "g1", "", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.Stats.PlayCount)
	assert.Equal(t, int64(1), loadGame(t, s, "g1").Stats.PlayCount)
}

func TestRemoveGame(t *testing.T) {
	ctx := context.Background()
	agg, s, pub := newTestAggregator(t, "")
	seedGame(t, s, "g1", "c1")
	r := insertReview(t, s, "g1", "u1", 4)

	removed, err := agg.RemoveGame(ctx, "g1", func(tx store.Tx, g *models.Game) error {
		return tx.DeleteReview(r.ID)
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", removed.ID)

	err = s.View(ctx, func(tx store.Tx) error {
		_, err := tx.GetGame("g1")
		return err
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, eventprocessor.ReasonRemoved, events[0].(*eventprocessor.GameStatsChanged).Reason)
}
