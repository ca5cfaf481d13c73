// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

// Package database provides the storage engines behind the document store.
//
// Two engines implement store.Backend:
//
//   - Badger: embedded LSM key-value store with serializable snapshot
//     isolation. Default engine.
//   - DuckDB: embedded SQL database holding every document in one
//     documents(collection, key, body) table. Useful when operators want
//     to inspect data with SQL.
//
// Both keep documents as opaque bytes; encoding and indexes belong to the
// store package.
package database

import (
	"fmt"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// Open opens the engine selected by cfg.Backend.
func Open(cfg *config.StoreConfig) (store.Backend, error) {
	switch cfg.Backend {
	case config.StoreBackendBadger, "":
		return OpenBadger(cfg)
	case config.StoreBackendDuckDB:
		return OpenDuckDB(cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// GarbageCollector is implemented by engines that need periodic space
// reclamation.
type GarbageCollector interface {
	RunGC() error
}
