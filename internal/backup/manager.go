// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/store"
)

const metadataFileName = "metadata.json"

// Manager creates, lists, verifies, restores and prunes snapshots of a
// store backend.
//
// Metadata lives in metadata.json next to the archives and is guarded by
// mu. opMu serializes snapshot and restore operations; a second operation
// started while one runs fails with ErrInProgress instead of queueing.
type Manager struct {
	cfg     Config
	backend store.Backend

	metadataFile string
	snapshots    []*Snapshot
	mu           sync.RWMutex

	opMu sync.Mutex
	now  func() time.Time
}

// metadataFileV1 is the on-disk layout of metadata.json.
type metadataFileV1 struct {
	Snapshots []*Snapshot `json:"snapshots"`
}

// NewManager creates the snapshot directory and loads existing metadata.
func NewManager(cfg Config, backend store.Backend) (*Manager, error) {
	if backend == nil {
		return nil, fmt.Errorf("backup requires a store backend")
	}
	if err := cfg.ensureDir(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:          cfg,
		backend:      backend,
		metadataFile: filepath.Join(cfg.Dir, metadataFileName),
		now:          func() time.Time { return time.Now().UTC() },
	}
	if err := m.loadMetadata(); err != nil {
		return nil, err
	}
	return m, nil
}

// loadMetadata reads metadata.json. A missing file starts an empty index.
func (m *Manager) loadMetadata() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.metadataFile)
	if errors.Is(err, os.ErrNotExist) {
		m.snapshots = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", m.metadataFile, err)
	}

	var meta metadataFileV1
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("decode %s: %w", m.metadataFile, err)
	}

	// A process that died mid-snapshot leaves an in-progress record.
	for _, s := range meta.Snapshots {
		if s.Status == StatusInProgress {
			s.Status = StatusFailed
			s.Error = "interrupted"
			_ = os.Remove(s.FilePath)
		}
	}
	m.snapshots = meta.Snapshots
	return nil
}

// saveMetadataLocked writes metadata.json atomically. mu must be held.
func (m *Manager) saveMetadataLocked() error {
	data, err := json.MarshalIndent(metadataFileV1{Snapshots: m.snapshots}, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.metadataFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, m.metadataFile)
}

// upsert stores a copy of s in the index and persists it.
func (m *Manager) upsert(s *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *s
	s = &c
	found := false
	for i, existing := range m.snapshots {
		if existing.ID == s.ID {
			m.snapshots[i] = s
			found = true
			break
		}
	}
	if !found {
		m.snapshots = append(m.snapshots, s)
	}
	if err := m.saveMetadataLocked(); err != nil {
		logging.Error().Err(err).Str("snapshot_id", s.ID).Msg("Failed to save backup metadata")
	}
}

// List returns copies of every snapshot, newest first.
func (m *Manager) List() []*Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		c := *s
		out = append(out, &c)
	}
	sortNewestFirst(out)
	return out
}

// Get returns a copy of the snapshot with id.
func (m *Manager) Get(id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.snapshots {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes a snapshot's archive and metadata.
func (m *Manager) Delete(id string) error {
	if !m.opMu.TryLock() {
		return ErrInProgress
	}
	defer m.opMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(id)
}

// deleteLocked removes one snapshot. mu must be held.
func (m *Manager) deleteLocked(id string) error {
	for i, s := range m.snapshots {
		if s.ID != id {
			continue
		}
		if s.FilePath != "" {
			if err := os.Remove(s.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", s.FilePath, err)
			}
		}
		m.snapshots = append(m.snapshots[:i], m.snapshots[i+1:]...)
		return m.saveMetadataLocked()
	}
	return ErrNotFound
}

// Stats summarizes the snapshot index.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var st Stats
	for _, s := range m.snapshots {
		switch s.Status {
		case StatusCompleted:
			st.Count++
			st.TotalSize += s.FileSize
			if s.CompletedAt != nil && (st.LastSuccess == nil || s.CompletedAt.After(*st.LastSuccess)) {
				t := *s.CompletedAt
				st.LastSuccess = &t
			}
		case StatusFailed:
			st.FailedSnapshots++
			if st.LastFailure == nil || s.CreatedAt.After(*st.LastFailure) {
				t := s.CreatedAt
				st.LastFailure = &t
			}
		}
	}
	return st
}

func sortNewestFirst(snaps []*Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
}
