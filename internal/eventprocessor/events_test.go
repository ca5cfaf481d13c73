// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"errors"
	"testing"

	"github.com/tomtom215/gamecatalog/internal/models"
)

func TestReviewCommittedValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   *ReviewCommitted
		wantErr bool
	}{
		{"valid", NewReviewCommitted("r1", "g1", "u1", ReviewCreated), false},
		{"moderated", NewReviewCommitted("r1", "g1", "u1", ReviewModerated), false},
		{"missing game", NewReviewCommitted("r1", "", "u1", ReviewCreated), true},
		{"missing review", NewReviewCommitted("", "g1", "u1", ReviewDeleted), true},
		{"unknown kind", NewReviewCommitted("r1", "g1", "u1", "archived"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestNewGameStatsChanged(t *testing.T) {
	g := &models.Game{ID: "g1", CategoryID: "c1", Rating: models.NewRating()}
	for _, stars := range []int{5, 5, 5, 1} {
		if err := g.Rating.Record(stars); err != nil {
			t.Fatal(err)
		}
	}
	g.Stats.PlayCount = 10

	e := NewGameStatsChanged(g, ReasonRating)
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if e.GameID != "g1" || e.CategoryID != "c1" {
		t.Errorf("ids = %s/%s", e.GameID, e.CategoryID)
	}
	if e.Snapshot == nil {
		t.Fatal("expected snapshot")
	}
	if e.Snapshot.RatingLevel != models.RatingLevelVeryGood {
		t.Errorf("RatingLevel = %s, want very-good", e.Snapshot.RatingLevel)
	}
	// 10*0.4 + 4.0*4*0.3
	if got, want := e.Snapshot.Popularity, 8.8; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Popularity = %v, want %v", got, want)
	}

	if err := NewGameStatsChanged(g, "bogus").Validate(); err == nil {
		t.Error("expected unknown reason to fail validation")
	}
	if err := NewGameStatsChanged(nil, ReasonEdit).Validate(); err == nil {
		t.Error("expected missing game to fail validation")
	}
}

func TestAffectedCategories(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     []string
	}{
		{"same category", "c1", "", []string{"c1"}},
		{"moved", "c2", "c1", []string{"c2", "c1"}},
		{"previous equals current", "c1", "c1", []string{"c1"}},
		{"removed", "", "c1", []string{"c1"}},
		{"none", "", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &GameStatsChanged{CategoryID: tt.current, PreviousCategoryID: tt.previous}
			got := e.AffectedCategories()
			if len(got) != len(tt.want) {
				t.Fatalf("AffectedCategories() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AffectedCategories()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}
