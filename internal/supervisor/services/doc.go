// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package services provides suture.Service wrappers for the game catalog's
long-running components.

Each wrapper turns a component lifecycle (ListenAndServe, Run, a cron
scheduler) into suture's context-aware Serve and names itself through
fmt.Stringer for supervisor logs.

# Available Services

HTTPServerService:
  - Wraps *http.Server; drains connections on cancellation

WebSocketHubService:
  - Runs websocket.Hub; closes every client on cancellation

EventRouterService:
  - Runs the eventprocessor.Bus router
  - An unexpected stop terminates the tree, since routers cannot restart

ScheduledJobService:
  - Runs a Job on a robfig/cron schedule ("@every 15m", "0 3 * * *")
  - Used for the aggregate reconcile, store garbage collection and
    store snapshots
  - Skips a tick while the previous run is still going

# Example

	reconcile, err := services.NewScheduledJobService("reconcile", cfg.Rollup.ReconcileSchedule,
	    func(ctx context.Context) error {
	        _, err := agg.Reconcile(ctx)
	        return err
	    }, services.WithRunOnStart())
	if err != nil {
	    return err
	}
	tree.AddMaintenanceService(reconcile)
*/
package services
