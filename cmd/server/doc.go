// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package main is the entry point for the Gamecatalog server.

Gamecatalog serves a game catalog over a JSON REST API: games organized in a
category tree, user reviews with ratings and moderation, favorites and play
statistics. Derived values such as average ratings and category rollups are
maintained by an aggregator driven by domain events.

# Application Architecture

	RootSupervisor ("gamecatalog")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── reconcile (cron, runs on start)
	│   ├── store-gc (cron, badger and duckdb)
	│   └── backup (cron, snapshot then retention)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── event-router (Watermill, gochannel or NATS)
	│   └── websocket-hub
	└── APISupervisor ("api-layer")
	    └── http-server (starts once the event router is running)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file, .env and environment
 2. Logging: zerolog with JSON or console output
 3. Store: BadgerDB or DuckDB behind the document store, plus the
    snapshot manager when BACKUP_ENABLED=true
 4. Embedded NATS server (optional, events.transport=nats)
 5. Event bus, aggregator subscriptions and the websocket feed
 6. Catalog service and admin account seeding
 7. JWT authentication and Casbin authorization
 8. Chi router with middleware stack
 9. Supervisor tree

# Configuration

	# Server
	HTTP_PORT=3857
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication
	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>

	# Storage
	STORE_BACKEND=badger         # badger or duckdb
	STORE_PATH=/data/gamecatalog

	# Events
	EVENTS_TRANSPORT=gochannel   # gochannel or nats
	NATS_EMBEDDED=false
	ROLLUP_POLICY=unweighted     # unweighted or play_weighted
	RECONCILE_SCHEDULE=@every 15m

	# Snapshots
	BACKUP_ENABLED=false
	BACKUP_DIR=/data/gamecatalog/backups
	BACKUP_SCHEDULE=@daily

# Graceful Shutdown

SIGINT and SIGTERM cancel the root context and the supervisor stops every
service within its shutdown timeout. The remaining components, store
included, are closed afterwards in reverse order of creation.

# Build

	go build -ldflags "-X main.version=1.0.0" -o gamecatalog ./cmd/server
*/
package main
