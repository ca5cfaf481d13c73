// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package backup

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// restoreBatchSize bounds the keys written or deleted per transaction so a
// restore stays under the engines' transaction size limits.
const restoreBatchSize = 500

// Restore replaces the whole store content with a snapshot.
//
// Writes that reach the store while a restore runs may be lost; callers
// quiesce writers or accept that. Derived statistics come back exactly as
// they were snapshotted.
func (m *Manager) Restore(ctx context.Context, id string, opts RestoreOptions) (*RestoreResult, error) {
	if !m.opMu.TryLock() {
		return nil, ErrInProgress
	}
	defer m.opMu.Unlock()

	snap, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if snap.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: snapshot %s is %s", ErrInvalidArchive, id, snap.Status)
	}
	if !opts.SkipVerify {
		_, sum, err := fileChecksum(snap.FilePath)
		if err != nil {
			return nil, err
		}
		if sum != snap.Checksum {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, id)
		}
	}

	start := time.Now()
	result := &RestoreResult{SnapshotID: id, SourceBackend: snap.Backend}

	if opts.PreRestoreSnapshot {
		pre, err := m.createLocked(ctx, TriggerPreRestore, "before restore of "+id)
		if err != nil {
			return nil, fmt.Errorf("pre-restore snapshot: %w", err)
		}
		result.PreRestoreID = pre.ID
	}

	ar, err := openArchive(snap.FilePath, snap.Compressed)
	if err != nil {
		return nil, err
	}
	defer ar.Close()
	docs, err := ar.documents()
	if err != nil {
		return nil, err
	}

	removed, err := m.clear(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear store: %w", err)
	}
	result.Removed = removed

	restored, sum, err := m.load(ctx, docs)
	result.Restored = restored
	if err != nil {
		return result, fmt.Errorf("load documents: %w", err)
	}
	if restored != ar.manifest.Documents {
		return result, fmt.Errorf("%w: restored %d of %d documents", ErrInvalidArchive, restored, ar.manifest.Documents)
	}
	if sum != ar.manifest.DocumentsChecksum {
		return result, fmt.Errorf("%w: document stream of %s", ErrChecksumMismatch, id)
	}

	result.Duration = time.Since(start)
	logging.Info().
		Str("snapshot_id", id).
		Str("source_backend", snap.Backend).
		Str("target_backend", m.backend.Name()).
		Int("removed", removed).
		Int("restored", restored).
		Dur("duration", result.Duration).
		Msg("Snapshot restored")
	return result, nil
}

// clear deletes every key of every collection, in batches.
func (m *Manager) clear(ctx context.Context) (int, error) {
	removed := 0
	for _, collection := range store.Collections() {
		var keys []string
		err := m.backend.View(ctx, func(kv store.KV) error {
			return kv.Scan(collection, "", func(key string, _ []byte) error {
				keys = append(keys, key)
				return nil
			})
		})
		if err != nil {
			return removed, err
		}

		for len(keys) > 0 {
			n := min(len(keys), restoreBatchSize)
			batch := keys[:n]
			keys = keys[n:]
			err := m.backend.Update(ctx, func(kv store.KV) error {
				for _, key := range batch {
					if err := kv.Delete(collection, key); err != nil && !errors.Is(err, store.ErrNotFound) {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return removed, err
			}
			removed += n
		}
	}
	return removed, nil
}

// load writes the document stream in batches and returns the record count
// and the stream's SHA-256.
func (m *Manager) load(ctx context.Context, r io.Reader) (int, string, error) {
	hash := sha256.New()
	dec := json.NewDecoder(bufio.NewReader(io.TeeReader(r, hash)))

	count := 0
	batch := make([]record, 0, restoreBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := m.backend.Update(ctx, func(kv store.KV) error {
			for _, rec := range batch {
				if err := kv.Set(rec.Collection, rec.Key, rec.Value); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		var rec record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, "", fmt.Errorf("%w: decode record %d: %v", ErrInvalidArchive, count+len(batch)+1, err)
		}
		batch = append(batch, rec)
		if len(batch) == restoreBatchSize {
			if err := flush(); err != nil {
				return count, "", err
			}
		}
	}
	if err := flush(); err != nil {
		return count, "", err
	}
	return count, hex.EncodeToString(hash.Sum(nil)), nil
}
