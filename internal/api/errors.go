// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/gamecatalog/internal/aggregator"
	"github.com/tomtom215/gamecatalog/internal/auth"
	"github.com/tomtom215/gamecatalog/internal/backup"
	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/store"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order with errors.Is.
var errorMappings = []errorMapping{
	{store.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{store.ErrDuplicate, http.StatusConflict, ErrCodeDuplicate},
	{store.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{store.ErrClosed, http.StatusServiceUnavailable, ErrCodeUnavailable},

	{catalog.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{catalog.ErrAccountDisabled, http.StatusForbidden, ErrCodeForbidden},

	{catalog.ErrInvalidParent, http.StatusBadRequest, ErrCodeValidation},
	{catalog.ErrInvalidCategory, http.StatusBadRequest, ErrCodeValidation},
	{catalog.ErrInvalidStatus, http.StatusBadRequest, ErrCodeValidation},
	{catalog.ErrInvalidRating, http.StatusBadRequest, ErrCodeValidation},
	{catalog.ErrContentTooLong, http.StatusBadRequest, ErrCodeValidation},
	{aggregator.ErrInvalidPlayTime, http.StatusBadRequest, ErrCodeValidation},
	{auth.ErrWeakPassword, http.StatusBadRequest, ErrCodeValidation},

	{catalog.ErrCategoryInUse, http.StatusConflict, ErrCodeInvalidState},
	{catalog.ErrOwnReview, http.StatusConflict, ErrCodeInvalidState},
	{catalog.ErrAlreadyReported, http.StatusConflict, ErrCodeInvalidState},
	{catalog.ErrReviewNotEditable, http.StatusConflict, ErrCodeInvalidState},
	{aggregator.ErrGameUnavailable, http.StatusConflict, ErrCodeInvalidState},

	{backup.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{backup.ErrInProgress, http.StatusConflict, ErrCodeInvalidState},
	{backup.ErrChecksumMismatch, http.StatusUnprocessableEntity, ErrCodeInvalidArchive},
	{backup.ErrInvalidArchive, http.StatusUnprocessableEntity, ErrCodeInvalidArchive},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeUnavailable},
}

// respondServiceError maps a service error to a status and code. Unknown
// errors are logged and reported as 500 without their message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status == http.StatusConflict && m.code == ErrCodeConflict {
				w.Header().Set("Retry-After", "1")
			}
			respondError(w, r, m.status, m.code, err.Error(), nil)
			return
		}
	}
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody reads the response.
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
}
