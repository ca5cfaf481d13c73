// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package models

import (
	"time"
)

// Role constants. They match the subjects in internal/authz/policy.csv.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleUser, RoleModerator, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsModeratorRole reports whether role may moderate reviews.
func IsModeratorRole(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}

// UserStats are activity counters of a user. They are independent of the
// rating aggregation.
type UserStats struct {
	GamesPlayed   int64 `json:"games_played"`
	TotalPlayTime int64 `json:"total_play_time"`
	ReviewsPosted int64 `json:"reviews_posted"`
}

// User is an account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Role         string     `json:"role"`
	DisplayName  string     `json:"display_name,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	IsActive     bool       `json:"is_active"`
	Stats        UserStats  `json:"stats"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserProfile is the API representation of a user. It never carries the
// password hash. Email is only filled for the account owner and admins.
type UserProfile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	DisplayName string     `json:"display_name,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	IsActive    bool       `json:"is_active"`
	Stats       UserStats  `json:"stats"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Profile returns the API representation. withPrivate includes the email.
func (u *User) Profile(withPrivate bool) UserProfile {
	p := UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		IsActive:    u.IsActive,
		Stats:       u.Stats,
		CreatedAt:   u.CreatedAt,
	}
	if withPrivate {
		p.Email = u.Email
		p.LastLoginAt = u.LastLoginAt
	}
	return p
}

// Favorite relates a user to a game they marked as favorite. It is the only
// source for both the game's favorite count and the user's favorite list.
type Favorite struct {
	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
