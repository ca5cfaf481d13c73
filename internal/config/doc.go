// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package config provides centralized configuration management for Gamecatalog.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (config.yaml, /etc/gamecatalog/config.yaml or CONFIG_PATH), then
environment variables. A .env file in the working directory is loaded into the
process environment first; variables that are already set are never replaced.

# Configuration Structure

  - ServerConfig: listen address, timeouts, environment name
  - APIConfig: pagination limits
  - SecurityConfig: JWT auth, seed admin, password length, rate limits, CORS, Casbin
  - LoggingConfig: zerolog level and format
  - StoreConfig: document store engine (badger or duckdb)
  - EventsConfig: event transport (gochannel or nats), router retry and poison queue
  - RollupConfig: category rollup policy and reconcile cron schedule
  - ReviewsConfig: auto-hide report threshold and content limit
  - WebSocketConfig: live stats feed
  - BackupConfig: store snapshots, schedule and retention

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 3857), HTTP_TIMEOUT, ENVIRONMENT

Security:
  - AUTH_MODE: jwt or none (none is refused in production)
  - JWT_SECRET: at least 32 characters
  - ADMIN_USERNAME / ADMIN_PASSWORD / ADMIN_EMAIL: admin created at startup
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Store:
  - STORE_BACKEND: badger (default) or duckdb
  - STORE_PATH, STORE_IN_MEMORY, STORE_SYNC_WRITES
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS

Events:
  - EVENTS_TRANSPORT: gochannel (default) or nats
  - NATS_URL, NATS_EMBEDDED, NATS_EMBEDDED_PORT
  - EVENTS_AUTO_ROLLUP: recompute category stats on GameStatsChanged
  - EVENTS_ROUTER_RETRY_COUNT, EVENTS_ROUTER_POISON_TOPIC

Rollup and reviews:
  - ROLLUP_POLICY: unweighted (default) or play_weighted
  - RECONCILE_SCHEDULE: cron spec for the favorites and ratings reconcile job
  - REVIEWS_AUTO_HIDE_THRESHOLD: reports needed to hide a review (0 disables)
  - PLAYS_MAX_SESSION_SECONDS: longest play session accepted (default: 86400)

Snapshots:
  - BACKUP_ENABLED, BACKUP_DIR, BACKUP_SCHEDULE, BACKUP_COMPRESSION
  - BACKUP_RETENTION_MIN_COUNT, BACKUP_RETENTION_MAX_COUNT
  - BACKUP_RETENTION_MAX_AGE_DAYS, BACKUP_RETENTION_KEEP_RECENT_HOURS

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

# Validation

Validate runs once after loading. It rejects unknown enum values, short JWT
secrets, placeholder credentials, malformed NATS URLs and cron schedules that
robfig/cron cannot parse.
*/
package config
