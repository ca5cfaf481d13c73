// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"math"

	"github.com/tomtom215/gamecatalog/internal/models"
)

// PageRequest selects a page of a listing. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

func (s *Service) normalizePage(p PageRequest) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = s.cfg.DefaultPageSize
	}
	if p.Limit > s.cfg.MaxPageSize {
		p.Limit = s.cfg.MaxPageSize
	}
	// Keeps (Page-1)*Limit inside int.
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// paginate slices items for p, which must be normalized.
func paginate[T any](items []T, p PageRequest) ([]T, models.PaginationInfo) {
	total := len(items)
	info := models.PaginationInfo{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: (total + p.Limit - 1) / p.Limit,
	}
	if p.Page < 1 || p.Page > info.TotalPages {
		return []T{}, info
	}
	start := (p.Page - 1) * p.Limit
	end := min(start+p.Limit, total)
	return items[start:end], info
}
