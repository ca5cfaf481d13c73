// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting (a .env file is
//     loaded into the environment first when present)
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	backend, err := database.Open(&cfg.Store)
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Events    EventsConfig    `koanf:"events"`
	Rollup    RollupConfig    `koanf:"rollup"`
	Reviews   ReviewsConfig   `koanf:"reviews"`
	Plays     PlaysConfig     `koanf:"plays"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Backup    BackupConfig    `koanf:"backup"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig holds pagination limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication, authorization and request limiting
// settings.
//
// Environment Variables:
//   - AUTH_MODE: jwt or none (default: jwt)
//   - JWT_SECRET: HMAC secret, 32+ characters (required for jwt)
//   - SESSION_TIMEOUT: token lifetime (default: 24h)
//   - ADMIN_USERNAME / ADMIN_PASSWORD / ADMIN_EMAIL: seed admin account
//   - PASSWORD_MIN_LENGTH: minimum password length for registration (default: 8)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW / DISABLE_RATE_LIMIT
//   - CORS_ORIGINS / TRUSTED_PROXIES: comma separated lists
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	AdminEmail        string        `koanf:"admin_email"`
	PasswordMinLength int           `koanf:"password_min_length"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
	Casbin            CasbinConfig  `koanf:"casbin"`
}

// CasbinConfig holds authorization policy settings. Empty paths use the
// embedded model and policy.
type CasbinConfig struct {
	ModelPath      string        `koanf:"model_path"`
	PolicyPath     string        `koanf:"policy_path"`
	AutoReload     bool          `koanf:"auto_reload"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	CacheEnabled   bool          `koanf:"cache_enabled"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig selects and tunes the document store engine.
//
// Environment Variables:
//   - STORE_BACKEND: badger or duckdb (default: badger)
//   - STORE_PATH: data directory (badger) or database file (duckdb)
//   - STORE_IN_MEMORY: keep everything in memory, nothing survives restart
//   - STORE_SYNC_WRITES: fsync every badger commit (default: true)
//   - STORE_GC_SCHEDULE: cron spec for space reclamation, empty disables
type StoreConfig struct {
	Backend         string `koanf:"backend"`
	Path            string `koanf:"path"`
	InMemory        bool   `koanf:"in_memory"`
	SyncWrites      bool   `koanf:"sync_writes"`
	Compression     bool   `koanf:"compression"`
	DuckDBMaxMemory string `koanf:"duckdb_max_memory"`
	DuckDBThreads   int    `koanf:"duckdb_threads"`
	GCSchedule      string `koanf:"gc_schedule"`
}

// Store backends.
const (
	StoreBackendBadger = "badger"
	StoreBackendDuckDB = "duckdb"
)

// EventsConfig configures the domain event bus.
//
// The gochannel transport delivers in process and makes publishers wait
// for subscriber acknowledgement, so writes return with derived state
// already updated. The nats transport is asynchronous; derived state is
// eventually consistent within the router retry window.
type EventsConfig struct {
	Transport      string `koanf:"transport"` // gochannel, nats
	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedHost   string `koanf:"embedded_host"`
	EmbeddedPort   int    `koanf:"embedded_port"`
	QueueGroup     string `koanf:"queue_group"`

	// EmbeddedStoreDir holds JetStream data for the embedded server.
	EmbeddedStoreDir string `koanf:"embedded_store_dir"`

	// AutoRollup subscribes the category rollup to GameStatsChanged.
	AutoRollup bool `koanf:"auto_rollup"`

	CircuitBreakerEnabled     bool          `koanf:"circuit_breaker_enabled"`
	CircuitBreakerMaxFailures uint32        `koanf:"circuit_breaker_max_failures"`
	CircuitBreakerTimeout     time.Duration `koanf:"circuit_breaker_timeout"`

	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterRetryMaxInterval     time.Duration `koanf:"router_retry_max_interval"`
	RouterPoisonQueueEnabled   bool          `koanf:"router_poison_queue_enabled"`
	RouterPoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	RouterDeduplicationEnabled bool          `koanf:"router_deduplication_enabled"`
	RouterDeduplicationTTL     time.Duration `koanf:"router_deduplication_ttl"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// Event transports.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// RollupConfig configures category rollups and the periodic reconcile job.
//
// Environment Variables:
//   - ROLLUP_POLICY: unweighted or play_weighted (default: unweighted)
//   - RECONCILE_SCHEDULE: cron spec, empty disables (default: @every 15m)
type RollupConfig struct {
	Policy            string `koanf:"policy"`
	ReconcileSchedule string `koanf:"reconcile_schedule"`
}

// Rollup policies.
const (
	RollupPolicyUnweighted   = "unweighted"
	RollupPolicyPlayWeighted = "play_weighted"
)

// ReviewsConfig holds review moderation settings.
type ReviewsConfig struct {
	// AutoHideThreshold hides a review once it collects this many reports.
	// Zero disables automatic hiding.
	AutoHideThreshold int `koanf:"auto_hide_threshold"`
	MaxContentLength  int `koanf:"max_content_length"`
}

// PlaysConfig bounds recorded play sessions.
//
// Environment Variables:
//   - PLAYS_MAX_SESSION_SECONDS: longest accepted session (default: 86400)
type PlaysConfig struct {
	MaxSessionSeconds int64 `koanf:"max_session_seconds"`
}

// WebSocketConfig controls the live stats feed.
type WebSocketConfig struct {
	Enabled bool `koanf:"enabled"`
}

// BackupConfig configures store snapshots.
//
// Environment Variables:
//   - BACKUP_ENABLED: enable snapshots and the admin backup endpoints
//   - BACKUP_DIR: snapshot directory (default: /data/gamecatalog/backups)
//   - BACKUP_SCHEDULE: cron spec, empty disables scheduled snapshots (default: @daily)
//   - BACKUP_COMPRESSION: gzip archives (default: true)
//   - BACKUP_RETENTION_MIN_COUNT / BACKUP_RETENTION_MAX_COUNT
//   - BACKUP_RETENTION_MAX_AGE_DAYS / BACKUP_RETENTION_KEEP_RECENT_HOURS
type BackupConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Dir         string `koanf:"dir"`
	Schedule    string `koanf:"schedule"`
	Compression bool   `koanf:"compression"`

	RetentionMinCount        int `koanf:"retention_min_count"`
	RetentionMaxCount        int `koanf:"retention_max_count"`
	RetentionMaxAgeDays      int `koanf:"retention_max_age_days"`
	RetentionKeepRecentHours int `koanf:"retention_keep_recent_hours"`
}

// Load loads configuration with Koanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
