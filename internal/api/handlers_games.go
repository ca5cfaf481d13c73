// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/models"
)

var gameStatuses = []string{models.GameStatusActive, models.GameStatusInactive, models.GameStatusMaintenance}

// Popular games limits.
const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

// ListGames godoc
// @Summary List games
// @Description Public listings only show active games; admins may filter by status.
// @Tags games
// @Produce json
// @Param q query string false "Search in title, description and tags"
// @Param category query string false "Category ID or slug"
// @Param platform query string false "Platform"
// @Param tag query string false "Tag"
// @Param status query string false "Status (admin)" Enums(active, inactive, maintenance)
// @Param sort query string false "Order" Enums(newest, rating, popularity, plays, title)
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.GameView}
// @Failure 400 {object} models.APIResponse
// @Router /games [get]
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := catalog.GameQuery{
		Q:        query.Get("q"),
		Category: query.Get("category"),
		Platform: query.Get("platform"),
		Tag:      query.Get("tag"),
		Sort:     query.Get("sort"),
		Page:     pageFrom(r),
	}
	if !oneOf(q.Sort, catalog.GameSorts) {
		invalidParam(w, r, "sort", catalog.GameSorts)
		return
	}
	if actorFrom(r).IsAdmin() {
		q.IncludeInactive = true
		q.Status = query.Get("status")
		if !oneOf(q.Status, gameStatuses) {
			invalidParam(w, r, "status", gameStatuses)
			return
		}
	}

	games, page, err := h.catalog.ListGames(r.Context(), q)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondPage(w, r, gameViews(games), page)
}

// GetGame godoc
// @Summary Get a game
// @Description Includes the derived popularity score and rating level.
// @Tags games
// @Produce json
// @Param id path string true "Game ID or slug"
// @Success 200 {object} models.APIResponse{data=models.GameView}
// @Failure 404 {object} models.APIResponse
// @Router /games/{id} [get]
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.catalog.GetGame(r.Context(), chi.URLParam(r, "id"), actorFrom(r).IsAdmin())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, g.View())
}

// GameStats godoc
// @Summary Game statistics
// @Tags games
// @Produce json
// @Param id path string true "Game ID or slug"
// @Success 200 {object} models.APIResponse{data=models.GameStatsView}
// @Router /games/{id}/stats [get]
func (h *Handler) GameStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.GameStats(r.Context(), chi.URLParam(r, "id"), actorFrom(r).IsAdmin())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}

// PopularGames godoc
// @Summary Most popular games
// @Tags games
// @Produce json
// @Param limit query int false "Number of games" default(10)
// @Success 200 {object} models.APIResponse{data=[]models.GameView}
// @Router /games/popular [get]
func (h *Handler) PopularGames(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", defaultPopularLimit)
	if limit < 1 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}
	games, err := h.catalog.PopularGames(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, gameViews(games))
}

// CreateGame godoc
// @Summary Create a game
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GameRequest true "Game"
// @Success 201 {object} models.APIResponse{data=models.GameView}
// @Failure 400 {object} models.APIResponse
// @Router /games [post]
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if !bindJSON(w, r, &req) {
		return
	}
	g, err := h.catalog.CreateGame(r.Context(), actorFrom(r), req.input())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, g.View())
}

// UpdateGame godoc
// @Summary Edit a game
// @Description Moving a game to another category refreshes both rollups.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Param request body GamePatchRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.GameView}
// @Router /games/{id} [patch]
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	var req GamePatchRequest
	if !bindJSON(w, r, &req) {
		return
	}
	g, err := h.catalog.UpdateGame(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, g.View())
}

// SetGameStatus godoc
// @Summary Change a game's status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Param request body GameStatusRequest true "Status"
// @Success 200 {object} models.APIResponse{data=models.GameView}
// @Router /games/{id}/status [patch]
func (h *Handler) SetGameStatus(w http.ResponseWriter, r *http.Request) {
	var req GameStatusRequest
	if !bindJSON(w, r, &req) {
		return
	}
	g, err := h.catalog.SetGameStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, g.View())
}

// DeleteGame godoc
// @Summary Delete a game
// @Description Also removes its reviews and favorites.
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 204
// @Router /games/{id} [delete]
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecomputeGameRating godoc
// @Summary Rebuild a game's rating from its reviews
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} models.APIResponse{data=models.GameView}
// @Router /games/{id}/rating/recompute [post]
func (h *Handler) RecomputeGameRating(w http.ResponseWriter, r *http.Request) {
	g, err := h.catalog.RecomputeGameRating(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, g.View())
}

// RecordPlay godoc
// @Summary Record a play session
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Param request body PlayRequest true "Play time in seconds"
// @Success 200 {object} models.APIResponse{data=models.GameStatsView}
// @Failure 409 {object} models.APIResponse "Game is not active"
// @Router /games/{id}/play [post]
func (h *Handler) RecordPlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !bindJSON(w, r, &req) {
		return
	}
	g, err := h.catalog.RecordPlay(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.PlayTime)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, g.StatsView())
}

// AddFavorite godoc
// @Summary Mark a game as favorite
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} models.APIResponse{data=models.GameStatsView}
// @Failure 409 {object} models.APIResponse "Already a favorite"
// @Router /games/{id}/favorite [post]
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	g, err := h.catalog.AddFavorite(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, g.StatsView())
}

// RemoveFavorite godoc
// @Summary Remove a game from favorites
// @Tags games
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID"
// @Success 200 {object} models.APIResponse{data=models.GameStatsView}
// @Failure 404 {object} models.APIResponse "Not a favorite"
// @Router /games/{id}/favorite [delete]
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	g, err := h.catalog.RemoveFavorite(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, g.StatsView())
}
