// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/models"
)

// ListGameReviews godoc
// @Summary Reviews of a game
// @Description Active reviews only.
// @Tags reviews
// @Produce json
// @Param id path string true "Game ID or slug"
// @Param sort query string false "Order" Enums(newest, helpful, rating_high, rating_low)
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.ReviewView}
// @Router /games/{id}/reviews [get]
func (h *Handler) ListGameReviews(w http.ResponseWriter, r *http.Request) {
	order := r.URL.Query().Get("sort")
	if !oneOf(order, catalog.ReviewSorts) {
		invalidParam(w, r, "sort", catalog.ReviewSorts)
		return
	}
	actor := actorFrom(r)
	reviews, page, err := h.catalog.ListGameReviews(r.Context(), chi.URLParam(r, "id"), order, pageFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondPage(w, r, reviewViews(reviews, actor), page)
}

// CreateReview godoc
// @Summary Review a game
// @Description One review per user and game. The game's rating is updated before the response on the in-process transport.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game ID or slug"
// @Param request body ReviewRequest true "Review"
// @Success 201 {object} models.APIResponse{data=models.ReviewView}
// @Failure 409 {object} models.APIResponse "Already reviewed or game not active"
// @Router /games/{id}/reviews [post]
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	rv, err := h.catalog.CreateReview(r.Context(), actor, chi.URLParam(r, "id"), catalog.ReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, rv.View(actor.UserID, actor.IsModerator()))
}

// GetReview godoc
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} models.APIResponse{data=models.ReviewView}
// @Failure 404 {object} models.APIResponse
// @Router /reviews/{id} [get]
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	rv, err := h.catalog.GetReview(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rv.View(actor.UserID, actor.IsModerator()))
}

// UpdateReview godoc
// @Summary Edit own review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body ReviewPatchRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.ReviewView}
// @Failure 403 {object} models.APIResponse
// @Router /reviews/{id} [patch]
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewPatchRequest
	if !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	rv, err := h.catalog.UpdateReview(r.Context(), actor, chi.URLParam(r, "id"), catalog.ReviewPatch{
		Rating:  req.Rating,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rv.View(actor.UserID, actor.IsModerator()))
}

// DeleteReview godoc
// @Summary Delete a review
// @Description Soft delete by the author, a moderator or an admin.
// @Tags reviews
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 204
// @Failure 403 {object} models.APIResponse
// @Router /reviews/{id} [delete]
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := chi.URLParam(r, "id")
	if err := h.catalog.DeleteReview(r.Context(), actor, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if actor.IsModerator() {
		h.audit.LogModeration(actor.UserID, id, models.ReviewStatusDeleted, "")
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleHelpful godoc
// @Summary Toggle the caller's helpful vote
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} models.APIResponse{data=HelpfulResponse}
// @Failure 409 {object} models.APIResponse "Own review"
// @Router /reviews/{id}/helpful [post]
func (h *Handler) ToggleHelpful(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	rv, voted, err := h.catalog.ToggleHelpful(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, HelpfulResponse{
		Review: rv.View(actor.UserID, actor.IsModerator()),
		Voted:  voted,
	})
}

// ReportReview godoc
// @Summary Report a review
// @Description One report per user. Enough reports hide the review automatically.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body ReportRequest true "Reason"
// @Success 200 {object} models.APIResponse{data=models.ReviewView}
// @Failure 409 {object} models.APIResponse "Already reported or own review"
// @Router /reviews/{id}/report [post]
func (h *Handler) ReportReview(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	rv, err := h.catalog.ReportReview(r.Context(), actor, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if rv.Status == models.ReviewStatusHidden {
		logging.Ctx(r.Context()).Info().Str("review_id", rv.ID).Int("reports", len(rv.Reports)).Msg("Review hidden after reports")
	}
	respondJSON(w, r, http.StatusOK, rv.View(actor.UserID, actor.IsModerator()))
}

// ReplyToReview godoc
// @Summary Set the official reply
// @Description Moderators, admins and the game's creator may reply.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body ReplyRequest true "Reply"
// @Success 200 {object} models.APIResponse{data=models.ReviewView}
// @Failure 403 {object} models.APIResponse
// @Router /reviews/{id}/reply [put]
func (h *Handler) ReplyToReview(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	rv, err := h.catalog.ReplyToReview(r.Context(), actor, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rv.View(actor.UserID, actor.IsModerator()))
}

// SetReviewStatus godoc
// @Summary Hide or restore a review
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body ReviewStatusRequest true "Status"
// @Success 200 {object} models.APIResponse{data=models.ReviewView}
// @Router /reviews/{id}/status [patch]
func (h *Handler) SetReviewStatus(w http.ResponseWriter, r *http.Request) {
	var req ReviewStatusRequest
	if !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	rv, err := h.catalog.SetReviewStatus(r.Context(), actor, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.audit.LogModeration(actor.UserID, rv.ID, rv.Status, "")
	respondJSON(w, r, http.StatusOK, rv.View(actor.UserID, true))
}

// ReportedReviews godoc
// @Summary Reviews with open reports
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.ReviewView}
// @Router /moderation/reviews/reported [get]
func (h *Handler) ReportedReviews(w http.ResponseWriter, r *http.Request) {
	reviews, page, err := h.catalog.ReportedReviews(r.Context(), pageFrom(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondPage(w, r, reviewViews(reviews, actorFrom(r)), page)
}
