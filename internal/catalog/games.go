// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// Game listing orders.
const (
	SortNewest     = "newest"
	SortRating     = "rating"
	SortPopularity = "popularity"
	SortPlays      = "plays"
	SortTitle      = "title"
)

// GameSorts lists the accepted game orders.
var GameSorts = []string{SortNewest, SortRating, SortPopularity, SortPlays, SortTitle}

// GameQuery filters and orders ListGames.
type GameQuery struct {
	// Q matches title, description and tags, case-insensitively.
	Q        string
	Category string // ID or slug
	Platform string
	Tag      string
	// Status filters by status. Only honored with IncludeInactive; public
	// listings always show active games.
	Status          string
	IncludeInactive bool
	Sort            string
	Page            PageRequest
}

// GameInput creates a game. An empty Slug is derived from Title.
type GameInput struct {
	Title       string
	Slug        string
	Description string
	CategoryID  string
	Developer   string
	Publisher   string
	ReleaseDate *time.Time
	Tags        []string
	Platforms   []string
	Status      string
}

// GamePatch edits the descriptive fields of a game. Nil fields are left
// unchanged.
type GamePatch struct {
	Title       *string
	Slug        *string
	Description *string
	CategoryID  *string
	Developer   *string
	Publisher   *string
	ReleaseDate *time.Time
	Tags        *[]string
	Platforms   *[]string
}

// ListGames returns one page of games matching q.
func (s *Service) ListGames(ctx context.Context, q GameQuery) ([]*models.Game, models.PaginationInfo, error) {
	page := s.normalizePage(q.Page)
	var games []*models.Game
	err := s.store.View(ctx, func(tx store.Tx) error {
		categoryID := ""
		if q.Category != "" {
			c, err := resolveCategory(tx, q.Category)
			if isNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			categoryID = c.ID
		}

		needle := strings.ToLower(strings.TrimSpace(q.Q))
		var err error
		games, err = tx.FindGames(func(g *models.Game) bool {
			if !q.IncludeInactive && !g.IsActive() {
				return false
			}
			if q.IncludeInactive && q.Status != "" && g.Status != q.Status {
				return false
			}
			if categoryID != "" && g.CategoryID != categoryID {
				return false
			}
			if q.Platform != "" && !containsFold(g.Platforms, q.Platform) {
				return false
			}
			if q.Tag != "" && !containsFold(g.Tags, q.Tag) {
				return false
			}
			return needle == "" || matchesSearch(g, needle)
		})
		return err
	})
	if err != nil {
		return nil, models.PaginationInfo{}, err
	}

	sortGames(games, q.Sort)
	out, info := paginate(games, page)
	return out, info, nil
}

func matchesSearch(g *models.Game, needle string) bool {
	if strings.Contains(strings.ToLower(g.Title), needle) ||
		strings.Contains(strings.ToLower(g.Description), needle) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// sortGames orders games in place. Ties fall back to newest first, then ID,
// so pages are stable.
func sortGames(games []*models.Game, order string) {
	newer := func(a, b *models.Game) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		switch order {
		case SortRating:
			if a.Rating.Average != b.Rating.Average {
				return a.Rating.Average > b.Rating.Average
			}
			if a.Rating.Count != b.Rating.Count {
				return a.Rating.Count > b.Rating.Count
			}
		case SortPopularity:
			if pa, pb := a.Popularity(), b.Popularity(); pa != pb {
				return pa > pb
			}
		case SortPlays:
			if a.Stats.PlayCount != b.Stats.PlayCount {
				return a.Stats.PlayCount > b.Stats.PlayCount
			}
		case SortTitle:
			if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
				return ta < tb
			}
		}
		return newer(a, b)
	})
}

// GetGame resolves a game by ID or slug. Inactive games are only returned
// with includeInactive.
func (s *Service) GetGame(ctx context.Context, idOrSlug string, includeInactive bool) (*models.Game, error) {
	var g *models.Game
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		g, err = resolveGame(tx, idOrSlug)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !includeInactive && !g.IsActive() {
		return nil, fmt.Errorf("game %s: %w", idOrSlug, store.ErrNotFound)
	}
	return g, nil
}

func resolveGame(tx store.Tx, idOrSlug string) (*models.Game, error) {
	g, err := tx.GetGame(idOrSlug)
	if isNotFound(err) {
		return tx.GetGameBySlug(idOrSlug)
	}
	return g, err
}

// GameStats returns the statistics view of a game.
func (s *Service) GameStats(ctx context.Context, idOrSlug string, includeInactive bool) (models.GameStatsView, error) {
	g, err := s.GetGame(ctx, idOrSlug, includeInactive)
	if err != nil {
		return models.GameStatsView{}, err
	}
	return g.StatsView(), nil
}

// PopularGames returns the limit most popular active games.
func (s *Service) PopularGames(ctx context.Context, limit int) ([]*models.Game, error) {
	games, _, err := s.ListGames(ctx, GameQuery{
		Sort: SortPopularity,
		Page: PageRequest{Page: 1, Limit: limit},
	})
	return games, err
}

// CreateGame stores a new game created by actor.
func (s *Service) CreateGame(ctx context.Context, actor Actor, in GameInput) (*models.Game, error) {
	now := s.now()
	g := &models.Game{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Developer:   in.Developer,
		Publisher:   in.Publisher,
		ReleaseDate: in.ReleaseDate,
		Tags:        in.Tags,
		Platforms:   in.Platforms,
		Status:      in.Status,
		Rating:      models.NewRating(),
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if g.Status == "" {
		g.Status = models.GameStatusActive
	}
	if !models.IsValidGameStatus(g.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, g.Status)
	}

	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := categoryExists(tx, g.CategoryID); err != nil {
			return err
		}
		slug := in.Slug
		if slug == "" {
			var err error
			slug, err = uniqueSlug(Slugify(in.Title), func(candidate string) (bool, error) {
				_, err := tx.GetGameBySlug(candidate)
				if isNotFound(err) {
					return false, nil
				}
				return err == nil, err
			})
			if err != nil {
				return err
			}
		}
		g.Slug = slug
		return tx.InsertGame(g)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventprocessor.NewGameStatsChanged(g, eventprocessor.ReasonEdit))
	return g, nil
}

// UpdateGame applies p through the aggregator, so edits never overwrite
// concurrently written statistics.
func (s *Service) UpdateGame(ctx context.Context, id string, p GamePatch) (*models.Game, error) {
	return s.agg.MutateGame(ctx, id, eventprocessor.ReasonEdit, func(tx store.Tx, g *models.Game) (bool, error) {
		if p.CategoryID != nil && *p.CategoryID != g.CategoryID {
			if err := categoryExists(tx, *p.CategoryID); err != nil {
				return false, err
			}
			g.CategoryID = *p.CategoryID
		}
		if p.Title != nil {
			g.Title = *p.Title
		}
		if p.Slug != nil && *p.Slug != "" {
			g.Slug = *p.Slug
		}
		if p.Description != nil {
			g.Description = *p.Description
		}
		if p.Developer != nil {
			g.Developer = *p.Developer
		}
		if p.Publisher != nil {
			g.Publisher = *p.Publisher
		}
		if p.ReleaseDate != nil {
			g.ReleaseDate = p.ReleaseDate
		}
		if p.Tags != nil {
			g.Tags = *p.Tags
		}
		if p.Platforms != nil {
			g.Platforms = *p.Platforms
		}
		return true, nil
	})
}

// SetGameStatus changes a game's status. Leaving or entering active
// changes the category rollup, which follows through GameStatsChanged.
func (s *Service) SetGameStatus(ctx context.Context, id, status string) (*models.Game, error) {
	if !models.IsValidGameStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.agg.MutateGame(ctx, id, eventprocessor.ReasonEdit, func(_ store.Tx, g *models.Game) (bool, error) {
		if g.Status == status {
			return false, nil
		}
		g.Status = status
		return true, nil
	})
}

// DeleteGame removes a game with its reviews and favorites.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	_, err := s.agg.RemoveGame(ctx, id, func(tx store.Tx, g *models.Game) error {
		reviews, err := tx.ReviewsForGame(g.ID)
		if err != nil {
			return err
		}
		for _, r := range reviews {
			if err := tx.DeleteReview(r.ID); err != nil {
				return err
			}
		}
		favs, err := tx.FavoritesForGame(g.ID)
		if err != nil {
			return err
		}
		for _, f := range favs {
			if err := tx.DeleteFavorite(f.GameID, f.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// RecomputeGameRating rescans a game's reviews on demand.
func (s *Service) RecomputeGameRating(ctx context.Context, id string) (*models.Game, error) {
	return s.agg.RecomputeFromScratch(ctx, id)
}

// RecordPlay counts one play session of the actor.
func (s *Service) RecordPlay(ctx context.Context, actor Actor, gameID string, playTime int64) (*models.Game, error) {
	return s.agg.IncrementPlayStats(ctx, gameID, actor.UserID, playTime)
}

// AddFavorite marks a game as the actor's favorite.
func (s *Service) AddFavorite(ctx context.Context, actor Actor, gameID string) (*models.Game, error) {
	return s.agg.AddFavorite(ctx, gameID, actor.UserID)
}

// RemoveFavorite removes a game from the actor's favorites.
func (s *Service) RemoveFavorite(ctx context.Context, actor Actor, gameID string) (*models.Game, error) {
	return s.agg.RemoveFavorite(ctx, gameID, actor.UserID)
}

// UserFavorites lists the games a user favorited, newest favorite first.
// Inactive games are skipped.
func (s *Service) UserFavorites(ctx context.Context, userID string, page PageRequest) ([]*models.Game, models.PaginationInfo, error) {
	var games []*models.Game
	err := s.store.View(ctx, func(tx store.Tx) error {
		favs, err := tx.FavoritesForUser(userID)
		if err != nil {
			return err
		}
		sort.SliceStable(favs, func(i, j int) bool { return favs[i].CreatedAt.After(favs[j].CreatedAt) })
		for _, f := range favs {
			g, err := tx.GetGame(f.GameID)
			if isNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			if g.IsActive() {
				games = append(games, g)
			}
		}
		return nil
	})
	if err != nil {
		return nil, models.PaginationInfo{}, err
	}
	out, info := paginate(games, s.normalizePage(page))
	return out, info, nil
}
