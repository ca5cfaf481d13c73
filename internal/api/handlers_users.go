// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamecatalog/internal/auth"
	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/models"
)

func pageFrom(r *http.Request) catalog.PageRequest {
	return catalog.PageRequest{
		Page:  getIntParam(r, "page", 1),
		Limit: getIntParam(r, "limit", 0),
	}
}

func gameViews(games []*models.Game) []models.GameView {
	out := make([]models.GameView, len(games))
	for i, g := range games {
		out[i] = g.View()
	}
	return out
}

func reviewViews(reviews []*models.Review, actor catalog.Actor) []models.ReviewView {
	out := make([]models.ReviewView, len(reviews))
	for i, rv := range reviews {
		out[i] = rv.View(actor.UserID, actor.IsModerator())
	}
	return out
}

// GetUser godoc
// @Summary Public profile
// @Description Email and last login are included for the account owner and admins.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.APIResponse{data=models.UserProfile}
// @Failure 404 {object} models.APIResponse
// @Router /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := chi.URLParam(r, "id")
	u, err := h.catalog.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, u.Profile(actor.UserID == u.ID || actor.IsAdmin()))
}

// UpdateMe godoc
// @Summary Edit own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest true "Profile fields"
// @Success 200 {object} models.APIResponse{data=models.UserProfile}
// @Router /users/me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !bindJSON(w, r, &req) {
		return
	}
	u, err := h.catalog.UpdateProfile(r.Context(), actorFrom(r).UserID, catalog.ProfilePatch{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, u.Profile(true))
}

// ChangePassword godoc
// @Summary Change own password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PasswordChangeRequest true "Passwords"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /users/me/password [put]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordChangeRequest
	if !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	u, err := h.catalog.GetUser(r.Context(), actor.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Current password is incorrect", nil)
			return
		}
		respondServiceError(w, r, err)
		return
	}
	if err := h.passwords.Check(req.NewPassword); err != nil {
		respondServiceError(w, r, err)
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.catalog.SetPasswordHash(r.Context(), u.ID, hash); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"message": "password changed"})
}

// MyFavorites godoc
// @Summary Own favorite games
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.GameView}
// @Router /users/me/favorites [get]
func (h *Handler) MyFavorites(w http.ResponseWriter, r *http.Request) {
	games, page, err := h.catalog.UserFavorites(r.Context(), actorFrom(r).UserID, pageFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondPage(w, r, gameViews(games), page)
}

// UserReviews godoc
// @Summary Reviews written by a user
// @Description Only active reviews unless the caller is the author or a moderator.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.ReviewView}
// @Router /users/{id}/reviews [get]
func (h *Handler) UserReviews(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	reviews, page, err := h.catalog.UserReviews(r.Context(), actor, chi.URLParam(r, "id"), pageFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondPage(w, r, reviewViews(reviews, actor), page)
}

// ListUsers godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.UserProfile}
// @Router /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, page, err := h.catalog.ListUsers(r.Context(), pageFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]models.UserProfile, len(users))
	for i, u := range users {
		out[i] = u.Profile(true)
	}
	respondPage(w, r, out, page)
}

// SetUserRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body RoleRequest true "Role"
// @Success 200 {object} models.APIResponse{data=models.UserProfile}
// @Failure 403 {object} models.APIResponse
// @Router /users/{id}/role [patch]
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	id := chi.URLParam(r, "id")
	before, err := h.catalog.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	u, err := h.catalog.SetUserRole(r.Context(), actor, id, req.Role)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.audit.LogRoleChange(actor.UserID, u.ID, before.Role, u.Role)
	respondJSON(w, r, http.StatusOK, u.Profile(true))
}

// SetUserStatus godoc
// @Summary Enable or disable an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UserStatusRequest true "Status"
// @Success 200 {object} models.APIResponse{data=models.UserProfile}
// @Router /users/{id}/status [patch]
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	var req UserStatusRequest
	if !bindJSON(w, r, &req) {
		return
	}
	u, err := h.catalog.SetUserActive(r.Context(), actorFrom(r), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, u.Profile(true))
}
