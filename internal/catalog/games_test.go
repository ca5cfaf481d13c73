// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/gamecatalog/internal/aggregator"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

func TestListGamesFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{DefaultPageSize: 10, MaxPageSize: 50})
	admin := env.user(t, "admin", models.RoleAdmin)
	player := env.user(t, "player", models.RoleUser)
	indie := env.category(t, "Indie")
	other := env.category(t, "Other")

	celeste, err := env.svc.CreateGame(ctx, admin, GameInput{
		Title: "Celeste", CategoryID: indie.ID, Description: "Climb a mountain",
		Tags: []string{"Platformer"}, Platforms: []string{"PC", "Switch"},
	})
	require.NoError(t, err)
	hades, err := env.svc.CreateGame(ctx, admin, GameInput{
		Title: "Hades", CategoryID: indie.ID, Tags: []string{"Roguelike"}, Platforms: []string{"PC"},
	})
	require.NoError(t, err)
	hidden, err := env.svc.CreateGame(ctx, admin, GameInput{
		Title: "Unreleased", CategoryID: other.ID, Status: models.GameStatusInactive,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = env.svc.RecordPlay(ctx, player, hades.ID, 60)
		require.NoError(t, err)
	}

	games, info, err := env.svc.ListGames(ctx, GameQuery{Sort: SortPlays})
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, hades.ID, games[0].ID)
	assert.Equal(t, 2, info.Total)

	games, _, err = env.svc.ListGames(ctx, GameQuery{Q: "MOUNTAIN"})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, celeste.ID, games[0].ID)

	games, _, err = env.svc.ListGames(ctx, GameQuery{Tag: "roguelike"})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, hades.ID, games[0].ID)

	games, _, err = env.svc.ListGames(ctx, GameQuery{Platform: "switch", Category: indie.Slug})
	require.NoError(t, err)
	require.Len(t, games, 1)

	games, _, err = env.svc.ListGames(ctx, GameQuery{Sort: SortTitle, Page: PageRequest{Page: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, celeste.ID, games[0].ID)

	games, _, err = env.svc.ListGames(ctx, GameQuery{IncludeInactive: true, Status: models.GameStatusInactive})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, hidden.ID, games[0].ID)

	games, _, err = env.svc.ListGames(ctx, GameQuery{Category: "no-such-category"})
	require.NoError(t, err)
	assert.Empty(t, games)

	_, err = env.svc.GetGame(ctx, hidden.Slug, false)
	require.ErrorIs(t, err, store.ErrNotFound)
	got, err := env.svc.GetGame(ctx, hidden.Slug, true)
	require.NoError(t, err)
	assert.Equal(t, hidden.ID, got.ID)

	popular, err := env.svc.PopularGames(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, hades.ID, popular[0].ID)
}

func TestListGamesHugePage(t *testing.T) {
	env := newTestEnv(t, Config{DefaultPageSize: 10, MaxPageSize: 50})
	admin := env.user(t, "admin", models.RoleAdmin)
	env.game(t, admin, "Celeste", env.category(t, "Indie").ID)

	games, info, err := env.svc.ListGames(context.Background(), GameQuery{
		Page: PageRequest{Page: math.MaxInt64/20 + 2, Limit: 20},
	})
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.Equal(t, 1, info.Total)
	assert.Equal(t, math.MaxInt/20, info.Page)
}

func TestCreateGameRequiresCategory(t *testing.T) {
	env := newTestEnv(t, Config{})
	admin := env.user(t, "admin", models.RoleAdmin)

	_, err := env.svc.CreateGame(context.Background(), admin, GameInput{Title: "Lost", CategoryID: "missing"})
	require.ErrorIs(t, err, ErrInvalidCategory)

	c := env.category(t, "Cat")
	_, err = env.svc.CreateGame(context.Background(), admin, GameInput{Title: "Bad", CategoryID: c.ID, Status: "retired"})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestMoveGameUpdatesBothRollups(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	admin := env.user(t, "admin", models.RoleAdmin)
	from := env.category(t, "From")
	to := env.category(t, "To")
	g := env.game(t, admin, "Nomad", from.ID)

	require.Equal(t, 1, env.reloadCategory(t, from.ID).Stats.GameCount)

	_, err := env.svc.UpdateGame(ctx, g.ID, GamePatch{CategoryID: &to.ID})
	require.NoError(t, err)

	assert.Zero(t, env.reloadCategory(t, from.ID).Stats.GameCount)
	assert.Equal(t, 1, env.reloadCategory(t, to.ID).Stats.GameCount)
}

func TestGameStatusAndPlay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	admin := env.user(t, "admin", models.RoleAdmin)
	player := env.user(t, "player", models.RoleUser)
	c := env.category(t, "Arcade")
	g := env.game(t, admin, "Pac-Man", c.ID)
	assert.Equal(t, "pac-man", g.Slug)

	_, err := env.svc.SetGameStatus(ctx, g.ID, "broken")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.svc.SetGameStatus(ctx, g.ID, models.GameStatusMaintenance)
	require.NoError(t, err)
	assert.Zero(t, env.reloadCategory(t, c.ID).Stats.GameCount)

	_, err = env.svc.RecordPlay(ctx, player, g.ID, 30)
	require.ErrorIs(t, err, aggregator.ErrGameUnavailable)

	_, err = env.svc.SetGameStatus(ctx, g.ID, models.GameStatusActive)
	require.NoError(t, err)
	played, err := env.svc.RecordPlay(ctx, player, g.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), played.Stats.PlayCount)

	stats, err := env.svc.GameStats(ctx, g.ID, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, stats.Popularity, 1e-9)

	u, err := env.svc.GetUser(ctx, player.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.Stats.GamesPlayed)
	assert.Equal(t, int64(30), u.Stats.TotalPlayTime)
	assert.Equal(t, int64(1), env.reloadCategory(t, c.ID).Stats.TotalPlayCount)
}

func TestFavoritesThroughService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	admin := env.user(t, "admin", models.RoleAdmin)
	fan := env.user(t, "fan", models.RoleUser)
	c := env.category(t, "Sim")
	g1 := env.game(t, admin, "Stardew Valley", c.ID)
	g2 := env.game(t, admin, "Factorio", c.ID)

	_, err := env.svc.AddFavorite(ctx, fan, g1.ID)
	require.NoError(t, err)
	_, err = env.svc.AddFavorite(ctx, fan, g2.ID)
	require.NoError(t, err)
	_, err = env.svc.AddFavorite(ctx, fan, g2.ID)
	require.ErrorIs(t, err, store.ErrDuplicate)

	favs, info, err := env.svc.UserFavorites(ctx, fan.UserID, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, info.Total)
	assert.Len(t, favs, 2)

	_, err = env.svc.RemoveFavorite(ctx, fan, g1.ID)
	require.NoError(t, err)
	assert.Zero(t, env.reload(t, g1.ID).Stats.FavoriteCount)
	assert.Equal(t, int64(1), env.reload(t, g2.ID).Stats.FavoriteCount)
}

func TestDeleteGameRemovesDependents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	admin := env.user(t, "admin", models.RoleAdmin)
	fan := env.user(t, "fan", models.RoleUser)
	c := env.category(t, "Racing")
	g := env.game(t, admin, "Mario Kart", c.ID)

	r, err := env.svc.CreateReview(ctx, fan, g.ID, ReviewInput{Rating: 5, Content: "fast"})
	require.NoError(t, err)
	_, err = env.svc.AddFavorite(ctx, fan, g.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.reloadCategory(t, c.ID).Stats.GameCount)

	require.NoError(t, env.svc.DeleteGame(ctx, g.ID))

	_, err = env.svc.GetReview(ctx, fan, r.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	favs, _, err := env.svc.UserFavorites(ctx, fan.UserID, PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, favs)
	assert.Zero(t, env.reloadCategory(t, c.ID).Stats.GameCount)

	require.ErrorIs(t, env.svc.DeleteGame(ctx, g.ID), store.ErrNotFound)
}
