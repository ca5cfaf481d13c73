// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// collectionSep separates the collection from the document key. Collection
// names never contain it.
const collectionSep = ":"

// BadgerBackend implements store.Backend with BadgerDB.
type BadgerBackend struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a Badger database at cfg.Path, or a
// memory-only database when cfg.InMemory is set.
func OpenBadger(cfg *config.StoreConfig) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Badger store opened")
	return &BadgerBackend{db: db}, nil
}

// Name implements store.Backend.
func (b *BadgerBackend) Name() string { return config.StoreBackendBadger }

func (b *BadgerBackend) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return store.ErrClosed
	}
	return nil
}

// View implements store.Backend.
func (b *BadgerBackend) View(ctx context.Context, fn func(store.KV) error) error {
	if err := b.checkOpen(ctx); err != nil {
		return err
	}
	return b.db.View(func(txn *badger.Txn) error {
		return fn(&badgerKV{ctx: ctx, txn: txn})
	})
}

// Update implements store.Backend. Badger tracks every key read in the
// transaction, so a concurrent commit to any of them fails this one with
// store.ErrConflict.
func (b *BadgerBackend) Update(ctx context.Context, fn func(store.KV) error) error {
	if err := b.checkOpen(ctx); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerKV{ctx: ctx, txn: txn})
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

// RunGC reclaims value log space until Badger reports nothing to rewrite.
func (b *BadgerBackend) RunGC() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return store.ErrClosed
	}
	for {
		err := b.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close implements store.Backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Badger store closed")
	return nil
}

type badgerKV struct {
	ctx context.Context
	txn *badger.Txn
}

func badgerKey(collection, key string) []byte {
	return []byte(collection + collectionSep + key)
}

func (kv *badgerKV) Get(collection, key string) ([]byte, error) {
	item, err := kv.txn.Get(badgerKey(collection, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, collection, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return item.ValueCopy(nil)
}

func (kv *badgerKV) Set(collection, key string, value []byte) error {
	if err := kv.txn.Set(badgerKey(collection, key), value); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return nil
}

func (kv *badgerKV) Delete(collection, key string) error {
	if err := kv.txn.Delete(badgerKey(collection, key)); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

func (kv *badgerKV) Scan(collection, prefix string, fn func(key string, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	full := badgerKey(collection, prefix)
	opts.Prefix = full
	it := kv.txn.NewIterator(opts)
	defer it.Close()

	strip := collection + collectionSep
	for it.Seek(full); it.ValidForPrefix(full); it.Next() {
		if err := kv.ctx.Err(); err != nil {
			return err
		}
		item := it.Item()
		key := strings.TrimPrefix(string(item.Key()), strip)
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}
