// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecatalog/internal/metrics"
)

// Collections and index collections.
const (
	colGames      = "games"
	colCategories = "categories"
	colReviews    = "reviews"
	colUsers      = "users"
	colFavorites  = "favorites"

	idxGameSlug       = "idx_game_slug"
	idxCategorySlug   = "idx_category_slug"
	idxReviewsByGame  = "idx_reviews_by_game"
	idxReviewUserGame = "idx_review_user_game"
	idxUsername       = "idx_username"
	idxEmail          = "idx_email"
	idxFavoritesUser  = "idx_favorites_by_user"
)

const keySep = "/"

// Collections lists every collection the document store writes, indexes
// included, in a stable order.
func Collections() []string {
	return []string{
		colGames, colCategories, colReviews, colUsers, colFavorites,
		idxGameSlug, idxCategorySlug, idxReviewsByGame, idxReviewUserGame,
		idxUsername, idxEmail, idxFavoritesUser,
	}
}

// DocumentStore implements Store on top of a Backend. Documents are encoded
// as JSON; secondary indexes live in their own collections and are written
// in the same transaction as the document.
type DocumentStore struct {
	backend Backend
}

// New creates a DocumentStore over backend.
func New(backend Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// Backend returns the underlying engine.
func (s *DocumentStore) Backend() Backend {
	return s.backend
}

// View runs fn in a read-only transaction.
func (s *DocumentStore) View(ctx context.Context, fn func(Tx) error) error {
	start := time.Now()
	err := s.backend.View(ctx, func(kv KV) error {
		return fn(&docTx{kv: kv})
	})
	metrics.RecordStoreTxn(s.backend.Name(), "view", time.Since(start), outcome(err))
	return err
}

// Update runs fn in a read-write transaction. Nothing is written when fn
// returns an error.
func (s *DocumentStore) Update(ctx context.Context, fn func(Tx) error) error {
	start := time.Now()
	err := s.backend.Update(ctx, func(kv KV) error {
		return fn(&docTx{kv: kv})
	})
	metrics.RecordStoreTxn(s.backend.Name(), "update", time.Since(start), outcome(err))
	return err
}

// Close closes the backend.
func (s *DocumentStore) Close() error {
	return s.backend.Close()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	default:
		return "error"
	}
}

// docTx implements Tx over a KV.
type docTx struct {
	kv KV
}

func compositeKey(parts ...string) string {
	return strings.Join(parts, keySep)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (t *docTx) getDoc(collection, key string, out any) error {
	data, err := t.kv.Get(collection, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return nil
}

func (t *docTx) putDoc(collection, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	return t.kv.Set(collection, key, data)
}

func (t *docTx) exists(collection, key string) (bool, error) {
	_, err := t.kv.Get(collection, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// claim reserves a unique index entry for id. Re-claiming an entry that
// already points at id is allowed.
func (t *docTx) claim(index, key, id string) error {
	data, err := t.kv.Get(index, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return t.kv.Set(index, key, []byte(id))
	case err != nil:
		return err
	case string(data) == id:
		return nil
	default:
		return fmt.Errorf("%w: %s %q already taken", ErrDuplicate, index, key)
	}
}

func (t *docTx) lookup(index, key string) (string, error) {
	data, err := t.kv.Get(index, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// scanDocs decodes every document of a collection with the given key prefix.
// Results are collected before any caller code runs so callers can write
// while holding them.
func scanDocs[T any](kv KV, collection, prefix string, match func(*T) bool) ([]*T, error) {
	out := make([]*T, 0)
	err := kv.Scan(collection, prefix, func(key string, value []byte) error {
		doc := new(T)
		if err := json.Unmarshal(value, doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, key, err)
		}
		if match == nil || match(doc) {
			out = append(out, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scanKeys returns the keys of a collection with the given prefix, with the
// prefix stripped.
func scanKeys(kv KV, collection, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := kv.Scan(collection, prefix, func(key string, _ []byte) error {
		keys = append(keys, strings.TrimPrefix(key, prefix))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
