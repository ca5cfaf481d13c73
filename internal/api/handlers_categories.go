// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamecatalog/internal/catalog"
)

// parentRoot lists top-level categories in ?parent=.
const parentRoot = "root"

// ListCategories godoc
// @Summary List categories
// @Description Flat list ordered by order, then name. parent=root lists the top level; any other value lists the children of that category (ID or slug).
// @Tags categories
// @Produce json
// @Param parent query string false "Parent ID, slug or root"
// @Param include_inactive query bool false "Include inactive categories (admin)"
// @Success 200 {object} models.APIResponse{data=[]models.Category}
// @Router /categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	f := catalog.CategoryFilter{
		IncludeInactive: getBoolParam(r, "include_inactive") && actorFrom(r).IsAdmin(),
	}
	switch parent := r.URL.Query().Get("parent"); parent {
	case "":
	case parentRoot:
		f.RootsOnly = true
	default:
		c, err := h.catalog.GetCategory(r.Context(), parent)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		f.ParentID = c.ID
	}

	categories, err := h.catalog.ListCategories(r.Context(), f)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, categories)
}

// CategoryTree godoc
// @Summary Category tree
// @Tags categories
// @Produce json
// @Param include_inactive query bool false "Include inactive categories (admin)"
// @Success 200 {object} models.APIResponse{data=[]models.CategoryNode}
// @Router /categories/tree [get]
func (h *Handler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.CategoryTree(r.Context(), getBoolParam(r, "include_inactive") && actorFrom(r).IsAdmin())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, tree)
}

// GetCategory godoc
// @Summary Get a category
// @Description Stats are the cached rollup over the category's active games.
// @Tags categories
// @Produce json
// @Param id path string true "Category ID or slug"
// @Success 200 {object} models.APIResponse{data=models.Category}
// @Failure 404 {object} models.APIResponse
// @Router /categories/{id} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, c)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} models.APIResponse{data=models.Category}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !bindJSON(w, r, &req) {
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), req.input())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, c)
}

// UpdateCategory godoc
// @Summary Edit a category
// @Description Moving a category under itself or one of its descendants is rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body CategoryPatchRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.Category}
// @Router /categories/{id} [patch]
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryPatchRequest
	if !bindJSON(w, r, &req) {
		return
	}
	c, err := h.catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, c)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Rejected with 409 while the category has subcategories or games.
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 204
// @Failure 409 {object} models.APIResponse
// @Router /categories/{id} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecomputeCategoryStats godoc
// @Summary Recompute a category rollup
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID or slug"
// @Success 200 {object} models.APIResponse{data=models.Category}
// @Router /categories/{id}/stats/recompute [post]
func (h *Handler) RecomputeCategoryStats(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.RecomputeCategoryStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, c)
}

// RecomputeAllCategories godoc
// @Summary Recompute every category rollup
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=RecomputeResponse}
// @Router /categories/stats/recompute [post]
func (h *Handler) RecomputeAllCategories(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.RecomputeAllCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, RecomputeResponse{Recomputed: n})
}
