// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package backup takes, verifies, restores and prunes snapshots of the
document store.

A snapshot is a tar archive (gzip by default) holding a manifest and a
JSON-lines stream with every key of every collection, indexes included.
Archives do not depend on the storage engine: a snapshot of a BadgerDB
store restores into DuckDB and the other way round, which doubles as the
migration path between backends.

# Usage

	mgr, err := backup.NewManager(backup.ConfigFrom(&cfg.Backup, version), backend)
	if err != nil {
	    return err
	}
	snap, err := mgr.Create(ctx, backup.TriggerManual, "before upgrade")
	// ...
	result, err := mgr.Restore(ctx, snap.ID, backup.RestoreOptions{PreRestoreSnapshot: true})

Scheduled snapshots run through RunScheduled, which also applies the
retention policy.

# Files

	{dir}/metadata.json                 snapshot index
	{dir}/snapshot-{time}-{id}.tar.gz   archives

# Thread Safety

Create, Restore, Delete and ApplyRetention are serialized; a call made
while another runs returns ErrInProgress. List, Get, Stats and Verify may
be called at any time.
*/
package backup
