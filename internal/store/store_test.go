// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/database"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

func newTestStore(t *testing.T) *store.DocumentStore {
	t.Helper()
	backend, err := database.OpenBadger(&config.StoreConfig{Backend: "badger", InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	s := store.New(backend)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newGame(id, slug string) *models.Game {
	now := time.Now().UTC()
	return &models.Game{
		ID:         id,
		Title:      "Game " + id,
		Slug:       slug,
		CategoryID: "cat-1",
		Status:     models.GameStatusActive,
		Rating:     models.NewRating(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestGameSlugIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Update(ctx, func(tx store.Tx) error {
		return tx.InsertGame(newGame("g1", "Celeste"))
	})
	if err != nil {
		t.Fatalf("InsertGame: %v", err)
	}

	err = s.Update(ctx, func(tx store.Tx) error {
		return tx.InsertGame(newGame("g2", "celeste"))
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for slug clash, got %v", err)
	}

	err = s.Update(ctx, func(tx store.Tx) error {
		g, err := tx.GetGameBySlug("CELESTE")
		if err != nil {
			return err
		}
		g.Slug = "celeste-2018"
		return tx.SaveGame(g)
	})
	if err != nil {
		t.Fatalf("rename slug: %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		if _, err := tx.GetGameBySlug("celeste"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("old slug should be released, got %v", err)
		}
		g, err := tx.GetGameBySlug("celeste-2018")
		if err != nil {
			return err
		}
		if g.ID != "g1" {
			t.Errorf("slug points at %s, want g1", g.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGameRoundTripKeepsRating(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := newGame("g1", "hades")
	for _, stars := range []int{5, 5, 5, 1} {
		if err := g.Rating.Record(stars); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Update(ctx, func(tx store.Tx) error { return tx.InsertGame(g) }); err != nil {
		t.Fatal(err)
	}

	var got *models.Game
	if err := s.View(ctx, func(tx store.Tx) error {
		var err error
		got, err = tx.GetGame("g1")
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if got.Rating.Average != 4.0 || got.Rating.Count != 4 {
		t.Errorf("rating = %+v", got.Rating)
	}
	if got.Rating.Distribution[5] != 3 || got.Rating.Distribution[1] != 1 {
		t.Errorf("distribution = %v", got.Rating.Distribution)
	}
	if !got.Rating.Consistent() {
		t.Error("stored rating should be consistent")
	}
}

func TestReviewIndexes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mk := func(id, user, game string, stars int) *models.Review {
		return &models.Review{ID: id, GameID: game, UserID: user, Rating: stars, Content: "x", Status: models.ReviewStatusActive}
	}

	err := s.Update(ctx, func(tx store.Tx) error {
		for _, r := range []*models.Review{mk("r1", "u1", "g1", 5), mk("r2", "u2", "g1", 3), mk("r3", "u1", "g2", 4)} {
			if err := tx.InsertReview(r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Update(ctx, func(tx store.Tx) error {
		return tx.InsertReview(mk("r4", "u1", "g1", 2))
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("second review by same user should be ErrDuplicate, got %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		reviews, err := tx.ReviewsForGame("g1")
		if err != nil {
			return err
		}
		if len(reviews) != 2 || reviews[0].ID != "r1" || reviews[1].ID != "r2" {
			t.Errorf("ReviewsForGame(g1) = %v", reviews)
		}
		r, err := tx.GetReviewByUserAndGame("u1", "g2")
		if err != nil {
			return err
		}
		if r.ID != "r3" {
			t.Errorf("by user and game = %s, want r3", r.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Delete and re-review in one transaction.
	err = s.Update(ctx, func(tx store.Tx) error {
		if err := tx.DeleteReview("r1"); err != nil {
			return err
		}
		return tx.InsertReview(mk("r5", "u1", "g1", 1))
	})
	if err != nil {
		t.Fatalf("re-review: %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		r, err := tx.GetReviewByUserAndGame("u1", "g1")
		if err != nil {
			return err
		}
		if r.ID != "r5" {
			t.Errorf("by user and game = %s, want r5", r.ID)
		}
		if _, err := tx.GetReview("r1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("deleted review should be gone, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSaveReviewImmutableOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := &models.Review{ID: "r1", GameID: "g1", UserID: "u1", Rating: 4, Status: models.ReviewStatusActive}
	if err := s.Update(ctx, func(tx store.Tx) error { return tx.InsertReview(r) }); err != nil {
		t.Fatal(err)
	}
	err := s.Update(ctx, func(tx store.Tx) error {
		moved := *r
		moved.GameID = "g2"
		return tx.SaveReview(&moved)
	})
	if err == nil {
		t.Fatal("changing a review's game should fail")
	}
}

func TestUserUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Update(ctx, func(tx store.Tx) error {
		return tx.InsertUser(&models.User{ID: "u1", Username: "Alice", Email: "alice@example.org", Role: models.RoleUser})
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		user *models.User
	}{
		{"same username different case", &models.User{ID: "u2", Username: "alice", Email: "other@example.org"}},
		{"same email", &models.User{ID: "u3", Username: "bob", Email: "ALICE@example.org"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Update(ctx, func(tx store.Tx) error { return tx.InsertUser(tt.user) })
			if !errors.Is(err, store.ErrDuplicate) {
				t.Errorf("expected ErrDuplicate, got %v", err)
			}
		})
	}

	err = s.View(ctx, func(tx store.Tx) error {
		u, err := tx.GetUserByEmail("alice@EXAMPLE.org")
		if err != nil {
			return err
		}
		if u.ID != "u1" {
			t.Errorf("GetUserByEmail = %s", u.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestFavoritesRelation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	err := s.Update(ctx, func(tx store.Tx) error {
		for _, f := range []*models.Favorite{
			{GameID: "g1", UserID: "u1", CreatedAt: now},
			{GameID: "g1", UserID: "u2", CreatedAt: now},
			{GameID: "g2", UserID: "u1", CreatedAt: now},
		} {
			if err := tx.InsertFavorite(f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Update(ctx, func(tx store.Tx) error {
		return tx.InsertFavorite(&models.Favorite{GameID: "g1", UserID: "u1"})
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	err = s.Update(ctx, func(tx store.Tx) error { return tx.DeleteFavorite("g1", "u1") })
	if err != nil {
		t.Fatal(err)
	}
	err = s.Update(ctx, func(tx store.Tx) error { return tx.DeleteFavorite("g1", "u1") })
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		byGame, err := tx.FavoritesForGame("g1")
		if err != nil {
			return err
		}
		if len(byGame) != 1 || byGame[0].UserID != "u2" {
			t.Errorf("FavoritesForGame(g1) = %v", byGame)
		}
		byUser, err := tx.FavoritesForUser("u1")
		if err != nil {
			return err
		}
		if len(byUser) != 1 || byUser[0].GameID != "g2" {
			t.Errorf("FavoritesForUser(u1) = %v", byUser)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCategoryFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.InsertCategory(&models.Category{ID: "c1", Name: "RPG", Slug: "rpg", IsActive: true}); err != nil {
			return err
		}
		return tx.InsertCategory(&models.Category{ID: "c2", Name: "JRPG", Slug: "jrpg", ParentID: "c1", IsActive: true})
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		children, err := tx.FindCategories(func(c *models.Category) bool { return c.ParentID == "c1" })
		if err != nil {
			return err
		}
		if len(children) != 1 || children[0].ID != "c2" {
			t.Errorf("children = %v", children)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
