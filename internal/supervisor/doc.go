// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package supervisor provides process supervision for the game catalog using
suture v4.

# Overview

Long-running services are grouped into three layers:

	RootSupervisor ("gamecatalog")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── ScheduledJobService "reconcile" (RECONCILE_SCHEDULE)
	│   ├── ScheduledJobService "store-gc" (STORE_GC_SCHEDULE)
	│   └── ScheduledJobService "backup" (BACKUP_SCHEDULE)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── EventRouterService
	│   └── WebSocketHubService (if WEBSOCKET_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a reconcile run that keeps
failing backs off without restarting the HTTP server.

The embedded NATS server is not supervised. It must accept connections
before the event bus is built and must outlive the router, so cmd/server
starts it first and shuts it down after the tree has stopped.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewEventRouterService(bus))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Logging

Supervisor events (service start, failure, backoff) go through sutureslog
to the slog bridge in the logging package, so they appear in the same
zerolog stream as the rest of the application.
*/
package supervisor
