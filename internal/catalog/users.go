// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// RegisterInput creates an account. Passwords are hashed by the caller.
type RegisterInput struct {
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
}

// ProfilePatch edits the caller's own profile.
type ProfilePatch struct {
	DisplayName *string
	Bio         *string
}

// Register creates a user account. Usernames and emails are unique,
// case-insensitively.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidStatus, role)
	}

	now := s.now()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: in.PasswordHash,
		Role:         role,
		DisplayName:  in.DisplayName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}

	err := s.store.Update(ctx, func(tx store.Tx) error {
		return tx.InsertUser(u)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("User registered")
	return u, nil
}

// UserByLogin finds an account by username or email.
func (s *Service) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	var u *models.User
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		if strings.Contains(login, "@") {
			u, err = tx.GetUserByEmail(strings.ToLower(login))
			if !isNotFound(err) {
				return err
			}
		}
		u, err = tx.GetUserByUsername(login)
		return err
	})
	return u, err
}

// RecordLogin stamps the last login time.
func (s *Service) RecordLogin(ctx context.Context, id string) error {
	_, err := s.mutateUser(ctx, id, func(u *models.User) error {
		now := s.now()
		u.LastLoginAt = &now
		return nil
	})
	return err
}

// GetUser returns an account by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u *models.User
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		u, err = tx.GetUser(id)
		return err
	})
	return u, err
}

// ListUsers returns accounts ordered by username.
func (s *Service) ListUsers(ctx context.Context, page PageRequest) ([]*models.User, models.PaginationInfo, error) {
	var users []*models.User
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		users, err = tx.FindUsers(nil)
		return err
	})
	if err != nil {
		return nil, models.PaginationInfo{}, err
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
	})
	out, info := paginate(users, s.normalizePage(page))
	return out, info, nil
}

// UpdateProfile edits the display name and bio.
func (s *Service) UpdateProfile(ctx context.Context, id string, p ProfilePatch) (*models.User, error) {
	return s.mutateUser(ctx, id, func(u *models.User) error {
		if p.DisplayName != nil {
			u.DisplayName = *p.DisplayName
		}
		if p.Bio != nil {
			u.Bio = *p.Bio
		}
		return nil
	})
}

// SetPasswordHash replaces the stored password hash.
func (s *Service) SetPasswordHash(ctx context.Context, id, hash string) error {
	_, err := s.mutateUser(ctx, id, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	})
	return err
}

// SetUserRole changes a user's role. Admins cannot change their own role.
func (s *Service) SetUserRole(ctx context.Context, actor Actor, id, role string) (*models.User, error) {
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidStatus, role)
	}
	if actor.UserID == id {
		return nil, ErrForbidden
	}
	return s.mutateUser(ctx, id, func(u *models.User) error {
		u.Role = role
		return nil
	})
}

// SetUserActive enables or disables an account. Admins cannot disable
// themselves.
func (s *Service) SetUserActive(ctx context.Context, actor Actor, id string, active bool) (*models.User, error) {
	if actor.UserID == id && !active {
		return nil, ErrForbidden
	}
	return s.mutateUser(ctx, id, func(u *models.User) error {
		u.IsActive = active
		return nil
	})
}

// mutateUser runs fn and saves the user under the user's lock, serialized
// with play and review counters.
func (s *Service) mutateUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	var out *models.User
	err := s.agg.WithLocks(ctx, "", id, func() error {
		return s.store.Update(ctx, func(tx store.Tx) error {
			u, err := tx.GetUser(id)
			if err != nil {
				return err
			}
			if err := fn(u); err != nil {
				return err
			}
			u.UpdatedAt = s.now()
			out = u
			return tx.SaveUser(u)
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureAdmin creates an admin account named username unless a user with
// that name exists. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, passwordHash string) (bool, error) {
	_, err := s.UserByLogin(ctx, username)
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}
	if email == "" {
		email = username + "@localhost"
	}
	_, err = s.Register(ctx, RegisterInput{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	s.logger.Info().Str("username", username).Msg("Admin account created")
	return true, nil
}
