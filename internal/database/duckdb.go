// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/database/query"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/store"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	collection VARCHAR NOT NULL,
	key        VARCHAR NOT NULL,
	body       VARCHAR NOT NULL,
	PRIMARY KEY (collection, key)
)`

// DuckDBBackend implements store.Backend with DuckDB.
//
// Writes are buffered per transaction and flushed at commit as one upsert
// or delete per key. DuckDB rejects deleting and re-inserting the same
// primary key inside one transaction; the buffer folds that into a single
// upsert.
type DuckDBBackend struct {
	conn   *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// OpenDuckDB opens (or creates) the database file at cfg.Path, or an
// in-memory database when cfg.InMemory is set.
func OpenDuckDB(cfg *config.StoreConfig) (*DuckDBBackend, error) {
	numThreads := cfg.DuckDBThreads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.DuckDBMaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	path := cfg.Path
	if cfg.InMemory {
		path = ""
	} else if dir := filepath.Dir(path); dir != "" && dir != "." {
		// 0750 per gosec G301
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := conn.ExecContext(ctx, createDocumentsTable); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("threads", numThreads).
		Str("max_memory", maxMemory).
		Msg("DuckDB store opened")
	return &DuckDBBackend{conn: conn, path: path}, nil
}

// Name implements store.Backend.
func (d *DuckDBBackend) Name() string { return config.StoreBackendDuckDB }

func (d *DuckDBBackend) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return store.ErrClosed
	}
	return nil
}

// View implements store.Backend.
func (d *DuckDBBackend) View(ctx context.Context, fn func(store.KV) error) error {
	if err := d.checkOpen(ctx); err != nil {
		return err
	}
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return mapDuckDBError(fmt.Errorf("begin: %w", err))
	}
	defer rollbackQuietly(tx)
	return fn(newDuckKV(ctx, tx))
}

// Update implements store.Backend.
func (d *DuckDBBackend) Update(ctx context.Context, fn func(store.KV) error) error {
	if err := d.checkOpen(ctx); err != nil {
		return err
	}
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return mapDuckDBError(fmt.Errorf("begin: %w", err))
	}
	kv := newDuckKV(ctx, tx)
	if err := fn(kv); err != nil {
		rollbackQuietly(tx)
		return err
	}
	if err := kv.flush(); err != nil {
		rollbackQuietly(tx)
		return mapDuckDBError(err)
	}
	if err := tx.Commit(); err != nil {
		return mapDuckDBError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Checkpoint flushes the DuckDB WAL into the database file.
func (d *DuckDBBackend) Checkpoint(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// RunGC checkpoints the database. Called by the maintenance job.
func (d *DuckDBBackend) RunGC() error {
	if err := d.checkOpen(context.Background()); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return d.Checkpoint(ctx)
}

// Close checkpoints and closes the connection pool.
func (d *DuckDBBackend) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if d.path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := d.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	if err := d.conn.Close(); err != nil {
		return fmt.Errorf("close DuckDB: %w", err)
	}
	logging.Info().Msg("DuckDB store closed")
	return nil
}

// pending is a buffered write. A nil value marks a delete.
type pending struct {
	value []byte
}

type duckKV struct {
	ctx    context.Context
	tx     *sql.Tx
	writes map[string]map[string]pending
}

func newDuckKV(ctx context.Context, tx *sql.Tx) *duckKV {
	return &duckKV{ctx: ctx, tx: tx, writes: make(map[string]map[string]pending)}
}

func (kv *duckKV) buffered(collection, key string) (pending, bool) {
	p, ok := kv.writes[collection][key]
	return p, ok
}

func (kv *duckKV) buffer(collection, key string, p pending) {
	m, ok := kv.writes[collection]
	if !ok {
		m = make(map[string]pending)
		kv.writes[collection] = m
	}
	m[key] = p
}

func (kv *duckKV) Get(collection, key string) ([]byte, error) {
	if p, ok := kv.buffered(collection, key); ok {
		if p.value == nil {
			return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, collection, key)
		}
		return append([]byte(nil), p.value...), nil
	}

	var body string
	err := kv.tx.QueryRowContext(kv.ctx,
		"SELECT body FROM documents WHERE collection = ? AND key = ?", collection, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, collection, key)
	}
	if err != nil {
		return nil, mapDuckDBError(fmt.Errorf("get %s/%s: %w", collection, key, err))
	}
	return []byte(body), nil
}

func (kv *duckKV) Set(collection, key string, value []byte) error {
	kv.buffer(collection, key, pending{value: append([]byte{}, value...)})
	return nil
}

func (kv *duckKV) Delete(collection, key string) error {
	kv.buffer(collection, key, pending{})
	return nil
}

// Scan reads matching rows, overlays buffered writes, then calls fn in key
// order. All rows are read before fn runs.
func (kv *duckKV) Scan(collection, prefix string, fn func(key string, value []byte) error) error {
	wb := query.NewWhereBuilder().AddEquals("collection", collection).AddPrefix("key", prefix)
	where, args := wb.BuildWithPrefix()

	rows, err := kv.tx.QueryContext(kv.ctx, "SELECT key, body FROM documents "+where+" ORDER BY key", args...)
	if err != nil {
		return mapDuckDBError(fmt.Errorf("scan %s: %w", collection, err))
	}
	merged := make(map[string][]byte)
	for rows.Next() {
		var key, body string
		if err := rows.Scan(&key, &body); err != nil {
			closeQuietly(rows)
			return fmt.Errorf("scan %s: %w", collection, err)
		}
		merged[key] = []byte(body)
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return mapDuckDBError(fmt.Errorf("scan %s: %w", collection, err))
	}
	closeQuietly(rows)

	for key, p := range kv.writes[collection] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if p.value == nil {
			delete(merged, key)
		} else {
			merged[key] = p.value
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, merged[k]); err != nil {
			return err
		}
	}
	return nil
}

// flush writes the buffer inside the open transaction.
func (kv *duckKV) flush() error {
	for collection, writes := range kv.writes {
		var deletes []string
		for key, p := range writes {
			if p.value == nil {
				deletes = append(deletes, key)
				continue
			}
			_, err := kv.tx.ExecContext(kv.ctx,
				`INSERT INTO documents (collection, key, body) VALUES (?, ?, ?)
				 ON CONFLICT (collection, key) DO UPDATE SET body = excluded.body`,
				collection, key, string(p.value))
			if err != nil {
				return fmt.Errorf("upsert %s/%s: %w", collection, key, err)
			}
		}
		if len(deletes) == 0 {
			continue
		}
		sort.Strings(deletes)
		where, args := query.NewWhereBuilder().
			AddEquals("collection", collection).
			AddIn("key", deletes).
			BuildWithPrefix()
		if _, err := kv.tx.ExecContext(kv.ctx, "DELETE FROM documents "+where, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", collection, err)
		}
	}
	return nil
}

// mapDuckDBError wraps DuckDB transaction conflicts as store.ErrConflict.
// A key violation at flush means a concurrent transaction committed the
// same new key first, which is the same race.
func mapDuckDBError(err error) error {
	if isTransactionConflict(err) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on ") ||
		strings.Contains(errStr, "Duplicate key")
}

type closer interface {
	Close() error
}

func closeQuietly(c closer) {
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("close failed")
	}
}

func rollbackQuietly(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Debug().Err(err).Msg("rollback failed")
	}
}
