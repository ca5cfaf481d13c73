// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// CategoryFilter narrows ListCategories.
type CategoryFilter struct {
	// ParentID lists the children of one category. RootsOnly lists the
	// top level. Both empty lists every category.
	ParentID        string
	RootsOnly       bool
	IncludeInactive bool
}

// CategoryInput creates a category. An empty Slug is derived from Name.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	Icon        string
	ParentID    string
	Order       int
	IsActive    *bool
}

// CategoryPatch updates a category. Nil fields are left unchanged; an empty
// ParentID moves the category to the top level.
type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	Icon        *string
	ParentID    *string
	Order       *int
	IsActive    *bool
}

// ListCategories returns categories ordered by Order, then Name.
func (s *Service) ListCategories(ctx context.Context, f CategoryFilter) ([]*models.Category, error) {
	var out []*models.Category
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.FindCategories(func(c *models.Category) bool {
			if !f.IncludeInactive && !c.IsActive {
				return false
			}
			switch {
			case f.ParentID != "":
				return c.ParentID == f.ParentID
			case f.RootsOnly:
				return c.ParentID == ""
			}
			return true
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	sortCategories(out)
	return out, nil
}

// CategoryTree returns the categories arranged as a forest.
func (s *Service) CategoryTree(ctx context.Context, includeInactive bool) ([]*models.CategoryNode, error) {
	all, err := s.ListCategories(ctx, CategoryFilter{IncludeInactive: includeInactive})
	if err != nil {
		return nil, err
	}
	return models.BuildCategoryTree(all), nil
}

// GetCategory resolves a category by ID or slug.
func (s *Service) GetCategory(ctx context.Context, idOrSlug string) (*models.Category, error) {
	var c *models.Category
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		c, err = resolveCategory(tx, idOrSlug)
		return err
	})
	return c, err
}

func resolveCategory(tx store.Tx, idOrSlug string) (*models.Category, error) {
	c, err := tx.GetCategory(idOrSlug)
	if isNotFound(err) {
		return tx.GetCategoryBySlug(idOrSlug)
	}
	return c, err
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	now := s.now()
	c := &models.Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		ParentID:    in.ParentID,
		Order:       in.Order,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	err := s.store.Update(ctx, func(tx store.Tx) error {
		if c.ParentID != "" {
			if _, err := tx.GetCategory(c.ParentID); err != nil {
				if isNotFound(err) {
					return fmt.Errorf("%w: parent %s does not exist", ErrInvalidParent, c.ParentID)
				}
				return err
			}
		}
		slug, err := s.categorySlug(tx, in.Slug, in.Name)
		if err != nil {
			return err
		}
		c.Slug = slug
		return tx.InsertCategory(c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// categorySlug keeps an explicit slug as given, so a taken one fails with
// store.ErrDuplicate, and derives a free one from name otherwise.
func (s *Service) categorySlug(tx store.Tx, explicit, name string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return uniqueSlug(Slugify(name), func(candidate string) (bool, error) {
		_, err := tx.GetCategoryBySlug(candidate)
		if isNotFound(err) {
			return false, nil
		}
		return err == nil, err
	})
}

// UpdateCategory applies p. Moving a category under itself or one of its
// descendants fails with ErrInvalidParent.
func (s *Service) UpdateCategory(ctx context.Context, id string, p CategoryPatch) (*models.Category, error) {
	var out *models.Category
	err := s.agg.WithCategoryLock(ctx, id, func() error {
		return s.store.Update(ctx, func(tx store.Tx) error {
			c, err := tx.GetCategory(id)
			if err != nil {
				return err
			}
			if p.ParentID != nil && *p.ParentID != c.ParentID {
				if err := checkParent(tx, c.ID, *p.ParentID); err != nil {
					return err
				}
				c.ParentID = *p.ParentID
			}
			if p.Name != nil {
				c.Name = *p.Name
			}
			if p.Slug != nil && *p.Slug != "" {
				c.Slug = *p.Slug
			}
			if p.Description != nil {
				c.Description = *p.Description
			}
			if p.Icon != nil {
				c.Icon = *p.Icon
			}
			if p.Order != nil {
				c.Order = *p.Order
			}
			if p.IsActive != nil {
				c.IsActive = *p.IsActive
			}
			c.UpdatedAt = s.now()
			out = c
			return tx.SaveCategory(c)
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkParent walks up from parentID and rejects a chain that reaches id.
func checkParent(tx store.Tx, id, parentID string) error {
	seen := map[string]bool{}
	for current := parentID; current != ""; {
		if current == id {
			return fmt.Errorf("%w: %s would become its own ancestor", ErrInvalidParent, id)
		}
		if seen[current] {
			return fmt.Errorf("%w: cycle above %s", ErrInvalidParent, parentID)
		}
		seen[current] = true

		c, err := tx.GetCategory(current)
		if isNotFound(err) {
			return fmt.Errorf("%w: parent %s does not exist", ErrInvalidParent, current)
		}
		if err != nil {
			return err
		}
		current = c.ParentID
	}
	return nil
}

// DeleteCategory removes a category without children or games.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.agg.WithCategoryLock(ctx, id, func() error {
		return s.store.Update(ctx, func(tx store.Tx) error {
			if _, err := tx.GetCategory(id); err != nil {
				return err
			}
			children, err := tx.FindCategories(func(c *models.Category) bool { return c.ParentID == id })
			if err != nil {
				return err
			}
			games, err := tx.FindGames(func(g *models.Game) bool { return g.CategoryID == id })
			if err != nil {
				return err
			}
			if len(children) > 0 || len(games) > 0 {
				return fmt.Errorf("%w: %d subcategories, %d games", ErrCategoryInUse, len(children), len(games))
			}
			return tx.DeleteCategory(id)
		})
	})
}

// RecomputeCategoryStats refreshes one rollup on demand.
func (s *Service) RecomputeCategoryStats(ctx context.Context, idOrSlug string) (*models.Category, error) {
	c, err := s.GetCategory(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	return s.agg.RecomputeCategoryStats(ctx, c.ID)
}

// RecomputeAllCategories refreshes every rollup.
func (s *Service) RecomputeAllCategories(ctx context.Context) (int, error) {
	return s.agg.RecomputeAllCategories(ctx)
}

func sortCategories(cs []*models.Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Order != cs[j].Order {
			return cs[i].Order < cs[j].Order
		}
		return cs[i].Name < cs[j].Name
	})
}

// categoryExists reports ErrInvalidCategory for an unknown category.
func categoryExists(tx store.Tx, id string) error {
	_, err := tx.GetCategory(id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, id)
	}
	return err
}
