// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package store

import (
	"context"
	"errors"

	"github.com/tomtom215/gamecatalog/internal/models"
)

// Store errors. Backends wrap their native errors with these so callers can
// use errors.Is regardless of the engine in use.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a transaction lost a race with a
	// concurrent transaction. Nothing was written; the caller may retry.
	ErrConflict = errors.New("write conflict")

	// ErrDuplicate is returned when a write would break a uniqueness rule
	// (slug, username, email, one review per user and game).
	ErrDuplicate = errors.New("duplicate")

	// ErrClosed is returned after the backend was closed.
	ErrClosed = errors.New("store closed")
)

// KV is raw document access inside one backend transaction. Keys are scoped
// by collection. Get returns ErrNotFound for a missing key; Delete of a
// missing key is a no-op. Scan visits keys with the given prefix in ascending
// order and the value slice is only valid during the callback.
type KV interface {
	Get(collection, key string) ([]byte, error)
	Set(collection, key string, value []byte) error
	Delete(collection, key string) error
	Scan(collection, prefix string, fn func(key string, value []byte) error) error
}

// Backend is a transactional key-value engine. An Update transaction that
// collides with a concurrent committed transaction fails with ErrConflict
// and writes nothing. Badger detects read-write collisions; DuckDB detects
// write-write collisions.
type Backend interface {
	View(ctx context.Context, fn func(KV) error) error
	Update(ctx context.Context, fn func(KV) error) error
	Name() string
	Close() error
}

// Store is the persistence interface injected into the aggregator and the
// catalog services.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
}

// Tx is typed document access inside one transaction. Documents returned by
// a Tx are copies; changes are persisted with the matching Save method.
type Tx interface {
	GameTx
	CategoryTx
	ReviewTx
	UserTx
	FavoriteTx
}

// GameTx covers the games collection.
type GameTx interface {
	GetGame(id string) (*models.Game, error)
	GetGameBySlug(slug string) (*models.Game, error)
	InsertGame(g *models.Game) error
	SaveGame(g *models.Game) error
	DeleteGame(id string) error
	FindGames(match func(*models.Game) bool) ([]*models.Game, error)
}

// CategoryTx covers the categories collection.
type CategoryTx interface {
	GetCategory(id string) (*models.Category, error)
	GetCategoryBySlug(slug string) (*models.Category, error)
	InsertCategory(c *models.Category) error
	SaveCategory(c *models.Category) error
	DeleteCategory(id string) error
	FindCategories(match func(*models.Category) bool) ([]*models.Category, error)
}

// ReviewTx covers the reviews collection.
type ReviewTx interface {
	GetReview(id string) (*models.Review, error)
	GetReviewByUserAndGame(userID, gameID string) (*models.Review, error)
	InsertReview(r *models.Review) error
	SaveReview(r *models.Review) error
	DeleteReview(id string) error
	ReviewsForGame(gameID string) ([]*models.Review, error)
	FindReviews(match func(*models.Review) bool) ([]*models.Review, error)
}

// UserTx covers the users collection.
type UserTx interface {
	GetUser(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	InsertUser(u *models.User) error
	SaveUser(u *models.User) error
	FindUsers(match func(*models.User) bool) ([]*models.User, error)
}

// FavoriteTx covers the game-to-user favorite relation.
type FavoriteTx interface {
	GetFavorite(gameID, userID string) (*models.Favorite, error)
	InsertFavorite(f *models.Favorite) error
	DeleteFavorite(gameID, userID string) error
	FavoritesForGame(gameID string) ([]*models.Favorite, error)
	FavoritesForUser(userID string) ([]*models.Favorite, error)
}
