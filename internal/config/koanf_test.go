// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolateEnv points every file lookup at an empty temp dir so host files
// never leak into a test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldPaths, oldDotEnv := DefaultConfigPaths, DotEnvPath
	DefaultConfigPaths = []string{filepath.Join(dir, "config.yaml")}
	DotEnvPath = filepath.Join(dir, ".env")
	t.Cleanup(func() {
		DefaultConfigPaths, DotEnvPath = oldPaths, oldDotEnv
	})
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3857 {
		t.Errorf("Server.Port = %d, want 3857", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendBadger {
		t.Errorf("Store.Backend = %q, want badger", cfg.Store.Backend)
	}
	if cfg.Events.Transport != TransportGoChannel {
		t.Errorf("Events.Transport = %q, want gochannel", cfg.Events.Transport)
	}
	if !cfg.Events.AutoRollup {
		t.Error("Events.AutoRollup should be true by default")
	}
	if cfg.Rollup.Policy != RollupPolicyUnweighted {
		t.Errorf("Rollup.Policy = %q, want unweighted", cfg.Rollup.Policy)
	}
	if cfg.Rollup.ReconcileSchedule != "@every 15m" {
		t.Errorf("Rollup.ReconcileSchedule = %q, want @every 15m", cfg.Rollup.ReconcileSchedule)
	}
	if cfg.Reviews.AutoHideThreshold != 5 {
		t.Errorf("Reviews.AutoHideThreshold = %d, want 5", cfg.Reviews.AutoHideThreshold)
	}
	if cfg.Plays.MaxSessionSeconds != 86400 {
		t.Errorf("Plays.MaxSessionSeconds = %d, want 86400", cfg.Plays.MaxSessionSeconds)
	}
	if cfg.Security.SessionTimeout != 24*time.Hour {
		t.Errorf("Security.SessionTimeout = %v, want 24h", cfg.Security.SessionTimeout)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"STORE_BACKEND", "store.backend"},
		{"EVENTS_TRANSPORT", "events.transport"},
		{"ROLLUP_POLICY", "rollup.policy"},
		{"REVIEWS_AUTO_HIDE_THRESHOLD", "reviews.auto_hide_threshold"},
		{"PLAYS_MAX_SESSION_SECONDS", "plays.max_session_seconds"},
		{"casbin_model_path", "security.casbin.model_path"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORE_BACKEND", "duckdb")
	t.Setenv("ROLLUP_POLICY", "play_weighted")
	t.Setenv("CORS_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Store.Backend != StoreBackendDuckDB {
		t.Errorf("Store.Backend = %q, want duckdb", cfg.Store.Backend)
	}
	if cfg.Rollup.Policy != RollupPolicyPlayWeighted {
		t.Errorf("Rollup.Policy = %q, want play_weighted", cfg.Rollup.Policy)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.org" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := isolateEnv(t)

	configContent := `
server:
  port: 8888
security:
  auth_mode: "none"
events:
  auto_rollup: false
reviews:
  auto_hide_threshold: 2
`
	configPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Events.AutoRollup {
		t.Error("Events.AutoRollup should be false from file")
	}
	if cfg.Reviews.AutoHideThreshold != 2 {
		t.Errorf("Reviews.AutoHideThreshold = %d, want 2", cfg.Reviews.AutoHideThreshold)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	dir := isolateEnv(t)
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 8888\nsecurity:\n  auth_mode: none\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env wins)", cfg.Server.Port)
	}
}

func TestLoadWithKoanfDotEnv(t *testing.T) {
	dir := isolateEnv(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nAUTH_MODE=none\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load sets these via os.Setenv; restore them afterwards.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AUTH_MODE", "")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("AUTH_MODE")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug from .env", cfg.Logging.Level)
	}
}

// TestLoadWithKoanfValidation tests that validation errors are properly returned
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "jwt without secret",
			env:     map[string]string{"AUTH_MODE": "jwt"},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "short secret",
			env:     map[string]string{"JWT_SECRET": "short"},
			wantErr: "at least 32 characters",
		},
		{
			name:    "none in production",
			env:     map[string]string{"AUTH_MODE": "none", "ENVIRONMENT": "production"},
			wantErr: "not allowed",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"AUTH_MODE": "none", "STORE_BACKEND": "sqlite"},
			wantErr: "STORE_BACKEND",
		},
		{
			name:    "bad nats url",
			env:     map[string]string{"AUTH_MODE": "none", "EVENTS_TRANSPORT": "nats", "NATS_URL": "http://x"},
			wantErr: "NATS_URL",
		},
		{
			name:    "bad cron",
			env:     map[string]string{"AUTH_MODE": "none", "RECONCILE_SCHEDULE": "every now and then"},
			wantErr: "RECONCILE_SCHEDULE",
		},
		{
			name:    "bad rollup policy",
			env:     map[string]string{"AUTH_MODE": "none", "ROLLUP_POLICY": "weighted"},
			wantErr: "ROLLUP_POLICY",
		},
		{
			name:    "admin password placeholder",
			env:     map[string]string{"AUTH_MODE": "none", "ADMIN_USERNAME": "admin", "ADMIN_PASSWORD": "changeme-please"},
			wantErr: "placeholder",
		},
		{
			name:    "negative auto hide",
			env:     map[string]string{"AUTH_MODE": "none", "REVIEWS_AUTO_HIDE_THRESHOLD": "-1"},
			wantErr: "REVIEWS_AUTO_HIDE_THRESHOLD",
		},
		{
			name:    "zero play session bound",
			env:     map[string]string{"AUTH_MODE": "none", "PLAYS_MAX_SESSION_SECONDS": "0"},
			wantErr: "PLAYS_MAX_SESSION_SECONDS",
		},
		{
			name:    "bad backup schedule",
			env:     map[string]string{"AUTH_MODE": "none", "BACKUP_ENABLED": "true", "BACKUP_SCHEDULE": "nightly"},
			wantErr: "BACKUP_SCHEDULE",
		},
		{
			name: "backup min above max",
			env: map[string]string{
				"AUTH_MODE": "none", "BACKUP_ENABLED": "true",
				"BACKUP_RETENTION_MIN_COUNT": "10", "BACKUP_RETENTION_MAX_COUNT": "5",
			},
			wantErr: "BACKUP_RETENTION_MIN_COUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidNATSConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.AuthMode = "none"
	cfg.Events.Transport = TransportNATS
	cfg.Events.NATSURL = "nats://nats.internal:4222"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg.Events.NATSURL = ""
	cfg.Events.EmbeddedServer = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded server should not need NATS_URL: %v", err)
	}
}
