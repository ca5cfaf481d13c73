// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ScheduleParser parses job schedules: five field cron specs or
// descriptors such as "@every 15m" and "@daily".
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateAPI,
		c.validateSecurity,
		c.validateStore,
		c.validateEvents,
		c.validateRollup,
		c.validateReviews,
		c.validatePlays,
		c.validateLogging,
		c.validateBackup,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateAPI validates pagination limits
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE")
	}
	return nil
}

// validateSecurity validates authentication and request limiting
func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
	case "none":
		// AUTH_MODE=none is refused in production
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}

	if c.Security.PasswordMinLength < 8 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 8")
	}
	if err := c.validateAdminCredentials(); err != nil {
		return err
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateHTTPURL(origin, "CORS_ORIGINS"); err != nil {
			return err
		}
	}
	return nil
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateAdminCredentials validates the optional seed admin account.
// Username and password must be set together.
func (c *Config) validateAdminCredentials() error {
	user, pass := c.Security.AdminUsername, c.Security.AdminPassword
	if user == "" && pass == "" {
		return nil
	}
	if user == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when ADMIN_PASSWORD is set")
	}
	if pass == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_USERNAME is set")
	}
	if containsPlaceholder(pass) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	if len(pass) < c.Security.PasswordMinLength {
		return fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", c.Security.PasswordMinLength)
	}
	return nil
}

// validateStore validates the document store selection
func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreBackendBadger, StoreBackendDuckDB:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: badger, duckdb")
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Store.DuckDBThreads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if c.Store.GCSchedule != "" {
		if _, err := ScheduleParser.Parse(c.Store.GCSchedule); err != nil {
			return fmt.Errorf("STORE_GC_SCHEDULE is invalid: %w", err)
		}
	}
	return nil
}

// validateEvents validates the event bus configuration
func (c *Config) validateEvents() error {
	switch c.Events.Transport {
	case TransportGoChannel:
		return c.validateRouter()
	case TransportNATS:
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be one of: gochannel, nats")
	}

	if c.Events.EmbeddedServer {
		if c.Events.EmbeddedPort < 1 || c.Events.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
		}
	} else if err := validateNATSURL(c.Events.NATSURL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.Events.CircuitBreakerEnabled && c.Events.CircuitBreakerMaxFailures == 0 {
		return fmt.Errorf("EVENTS_BREAKER_MAX_FAILURES must be at least 1")
	}
	return c.validateRouter()
}

// validateRouter validates message router retry and poison settings
func (c *Config) validateRouter() error {
	if c.Events.RouterRetryCount < 0 || c.Events.RouterRetryCount > 20 {
		return fmt.Errorf("EVENTS_ROUTER_RETRY_COUNT must be between 0 and 20")
	}
	if c.Events.RouterRetryCount > 0 && c.Events.RouterRetryInitialInterval <= 0 {
		return fmt.Errorf("EVENTS_ROUTER_RETRY_INTERVAL must be positive")
	}
	if c.Events.RouterPoisonQueueEnabled && c.Events.RouterPoisonQueueTopic == "" {
		return fmt.Errorf("EVENTS_ROUTER_POISON_TOPIC is required when the poison queue is enabled")
	}
	return nil
}

// validateRollup validates the rollup policy and reconcile schedule
func (c *Config) validateRollup() error {
	switch c.Rollup.Policy {
	case RollupPolicyUnweighted, RollupPolicyPlayWeighted:
	default:
		return fmt.Errorf("ROLLUP_POLICY must be one of: unweighted, play_weighted")
	}
	if c.Rollup.ReconcileSchedule == "" {
		return nil
	}
	if _, err := ScheduleParser.Parse(c.Rollup.ReconcileSchedule); err != nil {
		return fmt.Errorf("RECONCILE_SCHEDULE is invalid: %w", err)
	}
	return nil
}

// validateBackup validates snapshot settings. Nothing is checked while
// backups are disabled.
func (c *Config) validateBackup() error {
	b := c.Backup
	if !b.Enabled {
		return nil
	}
	if b.Dir == "" {
		return fmt.Errorf("BACKUP_DIR is required when BACKUP_ENABLED=true")
	}
	if b.Schedule != "" {
		if _, err := ScheduleParser.Parse(b.Schedule); err != nil {
			return fmt.Errorf("BACKUP_SCHEDULE is invalid: %w", err)
		}
	}
	if b.RetentionMinCount < 0 || b.RetentionMaxCount < 0 || b.RetentionMaxAgeDays < 0 || b.RetentionKeepRecentHours < 0 {
		return fmt.Errorf("BACKUP_RETENTION_* values must not be negative")
	}
	if b.RetentionMaxCount > 0 && b.RetentionMinCount > b.RetentionMaxCount {
		return fmt.Errorf("BACKUP_RETENTION_MIN_COUNT (%d) must not exceed BACKUP_RETENTION_MAX_COUNT (%d)",
			b.RetentionMinCount, b.RetentionMaxCount)
	}
	return nil
}

// validateReviews validates review moderation settings
func (c *Config) validateReviews() error {
	if c.Reviews.AutoHideThreshold < 0 {
		return fmt.Errorf("REVIEWS_AUTO_HIDE_THRESHOLD must not be negative")
	}
	if c.Reviews.MaxContentLength < 1 {
		return fmt.Errorf("REVIEWS_MAX_CONTENT_LENGTH must be at least 1")
	}
	return nil
}

// validatePlays validates the play session bound
func (c *Config) validatePlays() error {
	if c.Plays.MaxSessionSeconds < 1 {
		return fmt.Errorf("PLAYS_MAX_SESSION_SECONDS must be at least 1")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ENVIRONMENT environment variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
