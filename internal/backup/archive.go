// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
archive.go - Snapshot Archive Creation

Archive Structure:

	snapshot-{timestamp}-{id}.tar.gz
	├── manifest.json    (snapshot details and document checksum)
	└── documents.jsonl  (one record per stored key, every collection)

The document stream is engine neutral: each line carries the collection,
the key and the raw value, so a snapshot taken from BadgerDB restores into
DuckDB and the other way round.

Creation Process:
 1. Export every collection inside one read transaction to a temp file
 2. Write the manifest and the document stream into the archive
 3. Record SHA-256 and size of the finished archive
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/metrics"
	"github.com/tomtom215/gamecatalog/internal/store"
)

const (
	manifestEntry  = "manifest.json"
	documentsEntry = "documents.jsonl"

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 8
)

// record is one line of the document stream. Values are opaque bytes and
// encode as base64.
type record struct {
	Collection string `json:"c"`
	Key        string `json:"k"`
	Value      []byte `json:"v"`
}

// Create takes a snapshot of the whole store.
func (m *Manager) Create(ctx context.Context, trigger Trigger, notes string) (*Snapshot, error) {
	if !m.opMu.TryLock() {
		return nil, ErrInProgress
	}
	defer m.opMu.Unlock()
	return m.createLocked(ctx, trigger, notes)
}

// createLocked runs a snapshot. opMu must be held.
func (m *Manager) createLocked(ctx context.Context, trigger Trigger, notes string) (*Snapshot, error) {
	suffix, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return nil, fmt.Errorf("generate snapshot id: %w", err)
	}
	now := m.now()
	id := now.Format("20060102-150405") + "-" + suffix

	ext := ".tar"
	if m.cfg.Compression {
		ext = ".tar.gz"
	}
	snap := &Snapshot{
		ID:         id,
		Status:     StatusInProgress,
		Trigger:    trigger,
		CreatedAt:  now,
		FilePath:   filepath.Join(m.cfg.Dir, "snapshot-"+id+ext),
		Compressed: m.cfg.Compression,
		AppVersion: m.cfg.AppVersion,
		Backend:    m.backend.Name(),
		Notes:      notes,
	}
	m.upsert(snap)

	start := time.Now()
	err = m.writeSnapshot(ctx, snap)
	snap.Duration = time.Since(start)
	completed := m.now()
	snap.CompletedAt = &completed

	if err != nil {
		snap.Status = StatusFailed
		snap.Error = err.Error()
		_ = os.Remove(snap.FilePath)
		m.upsert(snap)
		metrics.RecordBackup(string(trigger), snap.Duration, 0, err)
		logging.Error().Err(err).Str("snapshot_id", id).Str("trigger", string(trigger)).Msg("Snapshot failed")
		return nil, err
	}

	snap.Status = StatusCompleted
	m.upsert(snap)
	metrics.RecordBackup(string(trigger), snap.Duration, snap.FileSize, nil)
	logging.Info().
		Str("snapshot_id", id).
		Str("trigger", string(trigger)).
		Int("documents", snap.Documents).
		Int64("size", snap.FileSize).
		Dur("duration", snap.Duration).
		Msg("Snapshot completed")

	c := *snap
	return &c, nil
}

func (m *Manager) writeSnapshot(ctx context.Context, snap *Snapshot) error {
	tmp, err := os.CreateTemp(m.cfg.Dir, "export-*.jsonl")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	manifest, err := m.export(ctx, tmp)
	if err != nil {
		return err
	}
	manifest.SnapshotID = snap.ID
	manifest.CreatedAt = snap.CreatedAt
	manifest.AppVersion = snap.AppVersion
	manifest.Backend = snap.Backend

	if err := m.writeArchive(snap.FilePath, manifest, tmp); err != nil {
		return err
	}

	size, sum, err := fileChecksum(snap.FilePath)
	if err != nil {
		return err
	}
	snap.FileSize = size
	snap.Checksum = sum
	snap.Documents = manifest.Documents
	snap.Collections = manifest.Collections
	return nil
}

// export streams every collection into w and returns the counts and the
// stream checksum. All collections are read in one transaction.
func (m *Manager) export(ctx context.Context, w io.Writer) (*Manifest, error) {
	hash := sha256.New()
	buf := bufio.NewWriter(io.MultiWriter(w, hash))
	enc := json.NewEncoder(buf)

	manifest := &Manifest{Collections: make(map[string]int)}
	err := m.backend.View(ctx, func(kv store.KV) error {
		for _, collection := range store.Collections() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := kv.Scan(collection, "", func(key string, value []byte) error {
				manifest.Collections[collection]++
				manifest.Documents++
				return enc.Encode(record{Collection: collection, Key: key, Value: value})
			})
			if err != nil {
				return fmt.Errorf("export %s: %w", collection, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := buf.Flush(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}
	manifest.DocumentsChecksum = hex.EncodeToString(hash.Sum(nil))
	return manifest, nil
}

// archiveWriters holds the writer chain file -> gzip -> tar.
type archiveWriters struct {
	tarWriter *tar.Writer
	closers   []io.Closer
}

// Close closes all writers in reverse order, returning the first error.
func (aw *archiveWriters) Close() error {
	var firstErr error
	for i := len(aw.closers) - 1; i >= 0; i-- {
		if err := aw.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

//nolint:gosec // G304: path is built from the configured backup directory
func (m *Manager) setupArchiveWriters(path string) (*archiveWriters, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	aw := &archiveWriters{closers: []io.Closer{out}}

	var dest io.Writer = out
	if m.cfg.Compression {
		gz, err := gzip.NewWriterLevel(out, m.cfg.CompressionLevel)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("create gzip writer: %w", err)
		}
		aw.closers = append(aw.closers, gz)
		dest = gz
	}
	aw.tarWriter = tar.NewWriter(dest)
	aw.closers = append(aw.closers, aw.tarWriter)
	return aw, nil
}

func (m *Manager) writeArchive(path string, manifest *Manifest, documents *os.File) (err error) {
	aw, err := m.setupArchiveWriters(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := aw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", cerr)
		}
	}()

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(aw.tarWriter, manifestEntry, int64(len(data)), manifest.CreatedAt, bytes.NewReader(data)); err != nil {
		return err
	}

	info, err := documents.Stat()
	if err != nil {
		return fmt.Errorf("stat export file: %w", err)
	}
	if _, err := documents.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind export file: %w", err)
	}
	return writeEntry(aw.tarWriter, documentsEntry, info.Size(), manifest.CreatedAt, documents)
}

func writeEntry(tw *tar.Writer, name string, size int64, modTime time.Time, r io.Reader) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o640,
		Size:    size,
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	if _, err := io.Copy(tw, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// fileChecksum returns size and hex SHA-256 of the file at path.
//
//nolint:gosec // G304: path comes from snapshot metadata
func fileChecksum(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("hash archive: %w", err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks that a completed snapshot's archive still matches its
// recorded checksum and carries a readable manifest.
func (m *Manager) Verify(id string) (*Manifest, error) {
	snap, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if snap.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: snapshot %s is %s", ErrInvalidArchive, id, snap.Status)
	}

	_, sum, err := fileChecksum(snap.FilePath)
	if err != nil {
		return nil, err
	}
	if sum != snap.Checksum {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, id)
	}

	ar, err := openArchive(snap.FilePath, snap.Compressed)
	if err != nil {
		return nil, err
	}
	defer ar.Close()
	return ar.manifest, nil
}

// archiveReader yields the manifest and then the document stream.
type archiveReader struct {
	file     *os.File
	gz       *gzip.Reader
	tr       *tar.Reader
	manifest *Manifest
}

//nolint:gosec // G304: path comes from snapshot metadata
func openArchive(path string, compressed bool) (*archiveReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	ar := &archiveReader{file: f}

	var src io.Reader = f
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
		}
		ar.gz = gz
		src = gz
	}
	ar.tr = tar.NewReader(src)

	hdr, err := ar.tr.Next()
	if err != nil || hdr.Name != manifestEntry {
		ar.Close()
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidArchive, manifestEntry)
	}
	var manifest Manifest
	if err := json.NewDecoder(ar.tr).Decode(&manifest); err != nil {
		ar.Close()
		return nil, fmt.Errorf("%w: decode manifest: %v", ErrInvalidArchive, err)
	}
	ar.manifest = &manifest
	return ar, nil
}

// documents positions the reader at the document stream.
func (ar *archiveReader) documents() (io.Reader, error) {
	hdr, err := ar.tr.Next()
	if err != nil || hdr.Name != documentsEntry {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidArchive, documentsEntry)
	}
	return ar.tr, nil
}

func (ar *archiveReader) Close() {
	if ar.gz != nil {
		_ = ar.gz.Close()
	}
	_ = ar.file.Close()
}
