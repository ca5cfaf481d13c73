// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package authz

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupEnforcer creates an enforcer on the embedded policy and registers cleanup.
func setupEnforcer(t *testing.T, cfg *EnforcerConfig) *Enforcer {
	t.Helper()
	enforcer, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)
	return enforcer
}

func TestEnforce_EmbeddedPolicy(t *testing.T) {
	t.Parallel()
	e := setupEnforcer(t, nil)

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"", ObjectGames, ActionRead, true},
		{RoleAnonymous, ObjectReviews, ActionRead, true},
		{RoleAnonymous, ObjectReviews, ActionWrite, false},
		{RoleAnonymous, ObjectGames, ActionWrite, false},
		{"user", ObjectReviews, ActionWrite, true},
		{"user", ObjectReviews, ActionDelete, true},
		{"user", ObjectGames, ActionWrite, true},
		{"user", ObjectGames, ActionRead, true},
		{"user", ObjectReviews, ActionModerate, false},
		{"user", ObjectGames, ActionAdmin, false},
		{"user", ObjectUsers, ActionAdmin, false},
		{"moderator", ObjectReviews, ActionModerate, true},
		{"moderator", ObjectModeration, ActionModerate, true},
		{"moderator", ObjectReviews, ActionWrite, true},
		{"moderator", ObjectCategories, ActionAdmin, false},
		{"moderator", ObjectBackups, ActionAdmin, false},
		{"admin", ObjectCategories, ActionAdmin, true},
		{"admin", ObjectUsers, ActionAdmin, true},
		{"admin", ObjectModeration, ActionModerate, true},
		{"admin", ObjectBackups, ActionAdmin, true},
		{"stranger", ObjectGames, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			got, err := e.Enforce(tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%q, %q, %q) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforce_CachesDecisions(t *testing.T) {
	t.Parallel()
	e := setupEnforcer(t, &EnforcerConfig{CacheEnabled: true, CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		if ok, err := e.Enforce("user", ObjectReviews, ActionWrite); err != nil || !ok {
			t.Fatalf("Enforce() = %v, %v", ok, err)
		}
	}
	if n := e.cache.len(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}
}

func TestNewEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.csv")
	policy := "p, anonymous, games, read\np, user, reviews, write\ng, user, anonymous\n"
	if err := os.WriteFile(policyPath, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}

	e := setupEnforcer(t, &EnforcerConfig{PolicyPath: policyPath, CacheEnabled: true})

	if ok, _ := e.Enforce("user", ObjectGames, ActionRead); !ok {
		t.Error("user should inherit anonymous read from the file policy")
	}
	if ok, _ := e.Enforce("user", ObjectGames, ActionWrite); ok {
		t.Error("file policy does not grant games write")
	}

	policy += "p, user, games, write\n"
	if err := os.WriteFile(policyPath, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := e.LoadPolicy(); err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if ok, _ := e.Enforce("user", ObjectGames, ActionWrite); !ok {
		t.Error("reloaded policy should grant games write")
	}
}

func TestLoadEmbeddedPolicy_Malformed(t *testing.T) {
	t.Parallel()
	e := setupEnforcer(t, &EnforcerConfig{})
	if err := loadEmbeddedPolicy(e.enforcer, "p, only-two"); err == nil {
		t.Error("expected error for malformed line")
	}
}
