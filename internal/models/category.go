// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package models

import (
	"sort"
	"time"
)

// CategoryStats is the cached rollup over the active games of a category.
type CategoryStats struct {
	GameCount      int        `json:"game_count"`
	TotalPlayCount int64      `json:"total_play_count"`
	AverageRating  float64    `json:"average_rating"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Category is a node of the taxonomy tree.
type Category struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	ParentID    string        `json:"parent_id,omitempty"`
	Order       int           `json:"order"`
	IsActive    bool          `json:"is_active"`
	Stats       CategoryStats `json:"stats"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CategoryNode is a category with its children, used for the tree endpoint.
type CategoryNode struct {
	*Category
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree arranges categories into trees rooted at categories
// without a parent. Categories whose parent is missing are treated as roots.
// Siblings are ordered by Order, then Name.
func BuildCategoryTree(categories []*Category) []*CategoryNode {
	nodes := make(map[string]*CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryNode{Category: c, Children: []*CategoryNode{}}
	}

	roots := make([]*CategoryNode, 0)
	for _, c := range categories {
		node := nodes[c.ID]
		parent, ok := nodes[c.ParentID]
		if c.ParentID == "" || !ok || c.ParentID == c.ID {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortCategoryNodes(roots)
	return roots
}

func sortCategoryNodes(nodes []*CategoryNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortCategoryNodes(n.Children)
	}
}
