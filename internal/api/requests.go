// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"time"

	"github.com/tomtom215/gamecatalog/internal/aggregator"
	"github.com/tomtom215/gamecatalog/internal/backup"
	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/models"
)

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,username"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,max=1024"`
	DisplayName string `json:"display_name" validate:"omitempty,max=64"`
}

// LoginRequest authenticates with a username or email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// PasswordChangeRequest replaces the caller's password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=1024"`
	NewPassword     string `json:"new_password" validate:"required,max=1024"`
}

// ProfileRequest edits the caller's profile.
type ProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=64"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
}

// RoleRequest changes a user's role.
type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin"`
}

// UserStatusRequest enables or disables an account.
type UserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CategoryRequest creates a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,slug,max=120"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Icon        string `json:"icon" validate:"omitempty,max=100"`
	ParentID    string `json:"parent_id" validate:"omitempty,max=64"`
	Order       int    `json:"order" validate:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

func (c *CategoryRequest) input() catalog.CategoryInput {
	return catalog.CategoryInput{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
		ParentID:    c.ParentID,
		Order:       c.Order,
		IsActive:    c.IsActive,
	}
}

// CategoryPatchRequest edits a category. An empty parent_id moves it to the
// top level.
type CategoryPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,slug,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Icon        *string `json:"icon" validate:"omitempty,max=100"`
	ParentID    *string `json:"parent_id" validate:"omitempty,max=64"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

func (c *CategoryPatchRequest) patch() catalog.CategoryPatch {
	return catalog.CategoryPatch{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
		ParentID:    c.ParentID,
		Order:       c.Order,
		IsActive:    c.IsActive,
	}
}

// GameRequest creates a game.
type GameRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Slug        string     `json:"slug" validate:"omitempty,slug,max=220"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	CategoryID  string     `json:"category_id" validate:"required,max=64"`
	Developer   string     `json:"developer" validate:"omitempty,max=200"`
	Publisher   string     `json:"publisher" validate:"omitempty,max=200"`
	ReleaseDate *time.Time `json:"release_date"`
	Tags        []string   `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	Platforms   []string   `json:"platforms" validate:"omitempty,max=20,dive,required,max=50"`
	Status      string     `json:"status" validate:"omitempty,oneof=active inactive maintenance"`
}

func (g *GameRequest) input() catalog.GameInput {
	return catalog.GameInput{
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		CategoryID:  g.CategoryID,
		Developer:   g.Developer,
		Publisher:   g.Publisher,
		ReleaseDate: g.ReleaseDate,
		Tags:        g.Tags,
		Platforms:   g.Platforms,
		Status:      g.Status,
	}
}

// GamePatchRequest edits the descriptive fields of a game.
type GamePatchRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Slug        *string    `json:"slug" validate:"omitempty,slug,max=220"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	CategoryID  *string    `json:"category_id" validate:"omitempty,min=1,max=64"`
	Developer   *string    `json:"developer" validate:"omitempty,max=200"`
	Publisher   *string    `json:"publisher" validate:"omitempty,max=200"`
	ReleaseDate *time.Time `json:"release_date"`
	Tags        *[]string  `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	Platforms   *[]string  `json:"platforms" validate:"omitempty,max=20,dive,required,max=50"`
}

func (g *GamePatchRequest) patch() catalog.GamePatch {
	return catalog.GamePatch{
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		CategoryID:  g.CategoryID,
		Developer:   g.Developer,
		Publisher:   g.Publisher,
		ReleaseDate: g.ReleaseDate,
		Tags:        g.Tags,
		Platforms:   g.Platforms,
	}
}

// GameStatusRequest changes a game's status.
type GameStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive maintenance"`
}

// PlayRequest records one play session. PlayTime is in seconds; the
// configured session limit applies on top of the one year ceiling.
type PlayRequest struct {
	PlayTime int64 `json:"play_time" validate:"gte=0,lte=31536000"`
}

// ReviewRequest creates a review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,rating"`
	Title   string `json:"title" validate:"omitempty,max=200"`
	Content string `json:"content" validate:"required"`
}

// ReviewPatchRequest edits the caller's review.
type ReviewPatchRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,rating"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

// ReportRequest flags a review.
type ReportRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ReplyRequest sets the official reply to a review.
type ReplyRequest struct {
	Content string `json:"content" validate:"required"`
}

// ReviewStatusRequest hides or restores a review.
type ReviewStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active hidden"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      models.UserProfile `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// HelpfulResponse is returned by the helpful vote toggle.
type HelpfulResponse struct {
	Review models.ReviewView `json:"review"`
	Voted  bool              `json:"voted"`
}

// RecomputeResponse reports a bulk recompute.
type RecomputeResponse struct {
	Recomputed int `json:"recomputed"`
}

// BackupRequest takes a manual snapshot. The body is optional.
type BackupRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// RestoreRequest restores a snapshot. PreRestoreSnapshot defaults to true.
type RestoreRequest struct {
	SkipVerify         bool  `json:"skip_verify"`
	PreRestoreSnapshot *bool `json:"pre_restore_snapshot"`
}

// BackupListResponse lists snapshots with directory totals.
type BackupListResponse struct {
	Snapshots []*backup.Snapshot `json:"snapshots"`
	Stats     backup.Stats       `json:"stats"`
}

// RestoreResponse reports a restore and the reconcile that followed it.
type RestoreResponse struct {
	Restore   *backup.RestoreResult      `json:"restore"`
	Reconcile aggregator.ReconcileReport `json:"reconcile"`
}
