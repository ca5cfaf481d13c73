// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package models

import (
	"math"
	"time"
)

// Game status values.
const (
	GameStatusActive      = "active"
	GameStatusInactive    = "inactive"
	GameStatusMaintenance = "maintenance"
)

// ValidGameStatuses lists the accepted game statuses.
var ValidGameStatuses = []string{GameStatusActive, GameStatusInactive, GameStatusMaintenance}

// IsValidGameStatus checks if a status is one of ValidGameStatuses.
func IsValidGameStatus(status string) bool {
	for _, s := range ValidGameStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Popularity weights.
const (
	popularityPlayWeight     = 0.4
	popularityRatingWeight   = 0.3
	popularityFavoriteWeight = 0.3
)

// GameStats holds the play and favorite counters of a game.
type GameStats struct {
	PlayCount       int64   `json:"play_count"`
	TotalPlayTime   int64   `json:"total_play_time"`
	AveragePlayTime float64 `json:"average_play_time"`
	FavoriteCount   int64   `json:"favorite_count"`
}

// CanRecordPlay reports whether a session of playTime seconds fits the
// running totals.
func (s *GameStats) CanRecordPlay(playTime int64) bool {
	return playTime >= 0 && s.PlayCount < math.MaxInt64 && s.TotalPlayTime <= math.MaxInt64-playTime
}

// RecordPlay counts one play session lasting playTime seconds. Callers
// check CanRecordPlay first.
func (s *GameStats) RecordPlay(playTime int64) {
	s.PlayCount++
	s.TotalPlayTime += playTime
	s.AveragePlayTime = float64(s.TotalPlayTime) / float64(s.PlayCount)
}

// IncrementFavorites adds one favorite.
func (s *GameStats) IncrementFavorites() {
	s.FavoriteCount++
}

// DecrementFavorites removes one favorite. It is a no-op at zero.
func (s *GameStats) DecrementFavorites() {
	if s.FavoriteCount > 0 {
		s.FavoriteCount--
	}
}

// Game is a catalog entry.
type Game struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	CategoryID  string     `json:"category_id"`
	Developer   string     `json:"developer,omitempty"`
	Publisher   string     `json:"publisher,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Platforms   []string   `json:"platforms,omitempty"`
	Status      string     `json:"status"`
	Rating      Rating     `json:"rating"`
	Stats       GameStats  `json:"stats"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsActive reports whether the game is listed publicly.
func (g *Game) IsActive() bool {
	return g.Status == GameStatusActive
}

// Popularity is a read-time score; it is never persisted.
// A game without reviews contributes zero from its rating term.
func (g *Game) Popularity() float64 {
	ratingTerm := 0.0
	if g.Rating.Count > 0 {
		ratingTerm = g.Rating.Average * float64(g.Rating.Count)
	}
	return float64(g.Stats.PlayCount)*popularityPlayWeight +
		ratingTerm*popularityRatingWeight +
		float64(g.Stats.FavoriteCount)*popularityFavoriteWeight
}

// GameView is the API representation of a game with its derived fields.
type GameView struct {
	*Game
	Popularity  float64 `json:"popularity"`
	RatingLevel string  `json:"rating_level"`
}

// View computes the derived fields from the current document.
func (g *Game) View() GameView {
	return GameView{
		Game:        g,
		Popularity:  g.Popularity(),
		RatingLevel: g.Rating.Level(),
	}
}

// GameStatsView is returned by the game statistics endpoint.
type GameStatsView struct {
	GameID      string    `json:"game_id"`
	Rating      Rating    `json:"rating"`
	Stats       GameStats `json:"stats"`
	Popularity  float64   `json:"popularity"`
	RatingLevel string    `json:"rating_level"`
}

// StatsView returns the statistics view of the game.
func (g *Game) StatsView() GameStatsView {
	return GameStatsView{
		GameID:      g.ID,
		Rating:      g.Rating,
		Stats:       g.Stats,
		Popularity:  g.Popularity(),
		RatingLevel: g.Rating.Level(),
	}
}
