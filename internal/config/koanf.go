// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gamecatalog/config.yaml",
	"/etc/gamecatalog/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPath is loaded into the process environment before env overrides
// are applied. Variables already set in the environment win.
var DotEnvPath = ".env"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			CookieSecure:      false,
			PasswordMinLength: 8,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
			Casbin: CasbinConfig{
				AutoReload:     false,
				ReloadInterval: 30 * time.Second,
				CacheEnabled:   true,
				CacheTTL:       5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Backend:         StoreBackendBadger,
			Path:            "/data/gamecatalog",
			InMemory:        false,
			SyncWrites:      true,
			Compression:     true,
			DuckDBMaxMemory: "1GB",
			DuckDBThreads:   0,
			GCSchedule:      "@every 10m",
		},
		Events: EventsConfig{
			Transport:                  TransportGoChannel,
			NATSURL:                    "nats://127.0.0.1:4222",
			EmbeddedServer:             false,
			EmbeddedHost:               "127.0.0.1",
			EmbeddedPort:               4222,
			EmbeddedStoreDir:           "/data/gamecatalog/nats",
			QueueGroup:                 "gamecatalog",
			AutoRollup:                 true,
			CircuitBreakerEnabled:      true,
			CircuitBreakerMaxFailures:  5,
			CircuitBreakerTimeout:      30 * time.Second,
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 50 * time.Millisecond,
			RouterRetryMaxInterval:     2 * time.Second,
			RouterPoisonQueueEnabled:   true,
			RouterPoisonQueueTopic:     "catalog.poison",
			RouterDeduplicationEnabled: false,
			RouterDeduplicationTTL:     5 * time.Minute,
			RouterCloseTimeout:         15 * time.Second,
		},
		Rollup: RollupConfig{
			Policy:            RollupPolicyUnweighted,
			ReconcileSchedule: "@every 15m",
		},
		Reviews: ReviewsConfig{
			AutoHideThreshold: 5,
			MaxContentLength:  5000,
		},
		Plays: PlaysConfig{
			MaxSessionSeconds: 86400,
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
		},
		Backup: BackupConfig{
			Enabled:                  false,
			Dir:                      "/data/gamecatalog/backups",
			Schedule:                 "@daily",
			Compression:              true,
			RetentionMinCount:        3,
			RetentionMaxCount:        30,
			RetentionMaxAgeDays:      30,
			RetentionKeepRecentHours: 24,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads DotEnvPath when it exists. godotenv.Load never overrides
// variables that are already set.
func loadDotEnv() error {
	if DotEnvPath == "" {
		return nil
	}
	if _, err := os.Stat(DotEnvPath); err != nil {
		return nil
	}
	if err := godotenv.Load(DotEnvPath); err != nil {
		return fmt.Errorf("failed to load %s: %w", DotEnvPath, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// API mappings
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	// Security mappings
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"cookie_secure":       "security.cookie_secure",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"admin_email":         "security.admin_email",
	"password_min_length": "security.password_min_length",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",

	// Casbin mappings
	"casbin_model_path":      "security.casbin.model_path",
	"casbin_policy_path":     "security.casbin.policy_path",
	"casbin_auto_reload":     "security.casbin.auto_reload",
	"casbin_reload_interval": "security.casbin.reload_interval",
	"casbin_cache_enabled":   "security.casbin.cache_enabled",
	"casbin_cache_ttl":       "security.casbin.cache_ttl",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Store mappings
	"store_backend":     "store.backend",
	"store_path":        "store.path",
	"store_in_memory":   "store.in_memory",
	"store_sync_writes": "store.sync_writes",
	"store_compression": "store.compression",
	"duckdb_max_memory": "store.duckdb_max_memory",
	"duckdb_threads":    "store.duckdb_threads",
	"store_gc_schedule": "store.gc_schedule",

	// Event mappings
	"events_transport":             "events.transport",
	"nats_url":                     "events.nats_url",
	"nats_embedded":                "events.embedded_server",
	"nats_embedded_host":           "events.embedded_host",
	"nats_embedded_port":           "events.embedded_port",
	"nats_store_dir":               "events.embedded_store_dir",
	"nats_queue_group":             "events.queue_group",
	"events_auto_rollup":           "events.auto_rollup",
	"events_breaker_enabled":       "events.circuit_breaker_enabled",
	"events_breaker_max_failures":  "events.circuit_breaker_max_failures",
	"events_breaker_timeout":       "events.circuit_breaker_timeout",
	"events_router_retry_count":    "events.router_retry_count",
	"events_router_retry_interval": "events.router_retry_initial_interval",
	"events_router_retry_max":      "events.router_retry_max_interval",
	"events_router_poison_enabled": "events.router_poison_queue_enabled",
	"events_router_poison_topic":   "events.router_poison_queue_topic",
	"events_router_dedup_enabled":  "events.router_deduplication_enabled",
	"events_router_dedup_ttl":      "events.router_deduplication_ttl",
	"events_router_close_timeout":  "events.router_close_timeout",

	// Rollup mappings
	"rollup_policy":      "rollup.policy",
	"reconcile_schedule": "rollup.reconcile_schedule",

	// Review mappings
	"reviews_auto_hide_threshold": "reviews.auto_hide_threshold",
	"reviews_max_content_length":  "reviews.max_content_length",

	// Play mappings
	"plays_max_session_seconds": "plays.max_session_seconds",

	// WebSocket mappings
	"websocket_enabled": "websocket.enabled",

	// Backup mappings
	"backup_enabled":                     "backup.enabled",
	"backup_dir":                         "backup.dir",
	"backup_schedule":                    "backup.schedule",
	"backup_compression":                 "backup.compression",
	"backup_retention_min_count":         "backup.retention_min_count",
	"backup_retention_max_count":         "backup.retention_max_count",
	"backup_retention_max_age_days":      "backup.retention_max_age_days",
	"backup_retention_keep_recent_hours": "backup.retention_keep_recent_hours",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - STORE_BACKEND -> store.backend
//   - EVENTS_TRANSPORT -> events.transport
//
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
