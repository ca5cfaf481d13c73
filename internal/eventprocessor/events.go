// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/gamecatalog/internal/models"
)

// SchemaVersion is the current event schema version.
const SchemaVersion = 1

// Topics.
const (
	TopicReviewCommitted      = "catalog.review.committed"
	TopicGameStatsChanged     = "catalog.game.stats_changed"
	TopicCategoryStatsChanged = "catalog.category.stats_changed"

	// DefaultPoisonTopic receives messages that exhausted their retries.
	DefaultPoisonTopic = "catalog.poison"

	// SubjectWildcard matches every catalog topic in the JetStream stream.
	SubjectWildcard = "catalog.>"
)

// Review change kinds.
const (
	ReviewCreated   = "created"
	ReviewUpdated   = "updated"
	ReviewDeleted   = "deleted"
	ReviewModerated = "moderated"
)

// Game stats change reasons.
const (
	ReasonRating   = "rating"
	ReasonPlay     = "play"
	ReasonFavorite = "favorite"
	ReasonEdit     = "edit"
	ReasonRemoved  = "removed"
)

// Event is implemented by every domain event.
type Event interface {
	Topic() string
	ID() string
	Validate() error
}

// ReviewCommitted is published after a review write transaction commits.
type ReviewCommitted struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	ReviewID      string    `json:"review_id"`
	GameID        string    `json:"game_id"`
	UserID        string    `json:"user_id"`
	Kind          string    `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewReviewCommitted creates a ReviewCommitted event with a fresh ID.
func NewReviewCommitted(reviewID, gameID, userID, kind string) *ReviewCommitted {
	return &ReviewCommitted{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		ReviewID:      reviewID,
		GameID:        gameID,
		UserID:        userID,
		Kind:          kind,
		Timestamp:     time.Now().UTC(),
	}
}

// Topic implements Event.
func (e *ReviewCommitted) Topic() string { return TopicReviewCommitted }

// ID implements Event.
func (e *ReviewCommitted) ID() string { return e.EventID }

// Validate checks required fields.
func (e *ReviewCommitted) Validate() error {
	if e.EventID == "" || e.ReviewID == "" || e.GameID == "" {
		return fmt.Errorf("%w: review committed requires event_id, review_id and game_id", ErrInvalidEvent)
	}
	switch e.Kind {
	case ReviewCreated, ReviewUpdated, ReviewDeleted, ReviewModerated:
		return nil
	}
	return fmt.Errorf("%w: unknown review kind %q", ErrInvalidEvent, e.Kind)
}

// GameStatsChanged is published after a game's rating or statistics were
// rewritten, or after the game was edited or removed. PreviousCategoryID is
// set when the game left a category, so both rollups can be refreshed.
type GameStatsChanged struct {
	SchemaVersion      int                   `json:"schema_version"`
	EventID            string                `json:"event_id"`
	GameID             string                `json:"game_id"`
	CategoryID         string                `json:"category_id,omitempty"`
	PreviousCategoryID string                `json:"previous_category_id,omitempty"`
	Reason             string                `json:"reason"`
	Snapshot           *models.GameStatsView `json:"snapshot,omitempty"`
	Timestamp          time.Time             `json:"timestamp"`
}

// NewGameStatsChanged creates a GameStatsChanged event. The snapshot is
// taken from g when it is non-nil.
func NewGameStatsChanged(g *models.Game, reason string) *GameStatsChanged {
	e := &GameStatsChanged{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Reason:        reason,
		Timestamp:     time.Now().UTC(),
	}
	if g != nil {
		view := g.StatsView()
		e.GameID = g.ID
		e.CategoryID = g.CategoryID
		e.Snapshot = &view
	}
	return e
}

// Topic implements Event.
func (e *GameStatsChanged) Topic() string { return TopicGameStatsChanged }

// ID implements Event.
func (e *GameStatsChanged) ID() string { return e.EventID }

// Validate checks required fields.
func (e *GameStatsChanged) Validate() error {
	if e.EventID == "" || e.GameID == "" {
		return fmt.Errorf("%w: game stats changed requires event_id and game_id", ErrInvalidEvent)
	}
	switch e.Reason {
	case ReasonRating, ReasonPlay, ReasonFavorite, ReasonEdit, ReasonRemoved:
		return nil
	}
	return fmt.Errorf("%w: unknown stats reason %q", ErrInvalidEvent, e.Reason)
}

// AffectedCategories returns the categories whose rollup depends on this
// change, without duplicates or empty IDs.
func (e *GameStatsChanged) AffectedCategories() []string {
	ids := make([]string, 0, 2)
	if e.CategoryID != "" {
		ids = append(ids, e.CategoryID)
	}
	if e.PreviousCategoryID != "" && e.PreviousCategoryID != e.CategoryID {
		ids = append(ids, e.PreviousCategoryID)
	}
	return ids
}

// CategoryStatsChanged is published after a category rollup was written.
type CategoryStatsChanged struct {
	SchemaVersion int                  `json:"schema_version"`
	EventID       string               `json:"event_id"`
	CategoryID    string               `json:"category_id"`
	Stats         models.CategoryStats `json:"stats"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewCategoryStatsChanged creates a CategoryStatsChanged event.
func NewCategoryStatsChanged(categoryID string, stats models.CategoryStats) *CategoryStatsChanged {
	return &CategoryStatsChanged{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		CategoryID:    categoryID,
		Stats:         stats,
		Timestamp:     time.Now().UTC(),
	}
}

// Topic implements Event.
func (e *CategoryStatsChanged) Topic() string { return TopicCategoryStatsChanged }

// ID implements Event.
func (e *CategoryStatsChanged) ID() string { return e.EventID }

// Validate checks required fields.
func (e *CategoryStatsChanged) Validate() error {
	if e.EventID == "" || e.CategoryID == "" {
		return fmt.Errorf("%w: category stats changed requires event_id and category_id", ErrInvalidEvent)
	}
	return nil
}
