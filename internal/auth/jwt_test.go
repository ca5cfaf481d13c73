// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/models"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		AuthMode:       "jwt",
		JWTSecret:      "test-secret-key-that-is-at-least-32-characters-long",
		SessionTimeout: time.Hour,
	}
}

func testUser() *models.User {
	return &models.User{ID: "u-1", Username: "alice", Role: models.RoleUser}
}

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{"valid secret", testSecurityConfig(), false},
		{"empty secret in jwt mode", &config.SecurityConfig{AuthMode: "jwt"}, true},
		{"empty secret in none mode", &config.SecurityConfig{AuthMode: "none"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if manager.Timeout() <= 0 {
				t.Errorf("expected positive timeout, got %v", manager.Timeout())
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, expires, err := manager.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expected expiry in the future, got %v", expires)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID() != "u-1" || claims.Username != "alice" || claims.Role != models.RoleUser {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	other, err := NewJWTManager(&config.SecurityConfig{
		AuthMode:       "jwt",
		JWTSecret:      "another-secret-key-that-is-at-least-32-characters",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	foreign, _, err := other.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	expiredManager, _ := NewJWTManager(testSecurityConfig())
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredManager.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not.a.token", ErrInvalidCredentials},
		{"empty", "", ErrInvalidCredentials},
		{"wrong secret", foreign, ErrInvalidCredentials},
		{"expired", expired, ErrExpiredCredentials},
		{"alg none", "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1LTEiLCJyb2xlIjoiYWRtaW4ifQ.", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateToken(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateToken() error = %v, want %v", err, tt.want)
			}
		})
	}
}
