// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for catalog input rules.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Custom validators: slug, username, rating
//   - Field names reported by their json tag
//   - Errors translated to the API's VALIDATION_ERROR format
//
// Example usage:
//
//	type createReviewRequest struct {
//	    Rating  int    `json:"rating" validate:"rating"`
//	    Content string `json:"content" validate:"required,max=5000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondAPIError(w, r, http.StatusBadRequest, verr.ToAPIError())
//	    return
//	}
package validation
