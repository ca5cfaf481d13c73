// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package models

import "time"

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    Metadata    `json:"meta"`
}

// Metadata carries response metadata.
type Metadata struct {
	Timestamp  time.Time       `json:"timestamp"`
	RequestID  string          `json:"request_id,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// APIError is the structured error body.
//
// Common error codes:
//   - VALIDATION_ERROR: invalid input
//   - UNAUTHORIZED / FORBIDDEN: missing or insufficient credentials
//   - NOT_FOUND: unknown identity
//   - CONFLICT: concurrent write, retry the request
//   - DUPLICATE: unique slug, username, email or review per user
//   - INVALID_STATE: the operation does not apply to the current state
//   - RATE_LIMITED
//   - SERVICE_UNAVAILABLE: store closed or deadline exceeded
//   - INTERNAL_ERROR
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes a page of a listing.
type PaginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// HasNext reports whether another page follows.
func (p PaginationInfo) HasNext() bool {
	return p.Page < p.TotalPages
}
