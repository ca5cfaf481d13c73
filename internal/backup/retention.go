// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package backup

import (
	"context"
	"time"

	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/metrics"
)

// ApplyRetention deletes completed snapshots the policy no longer keeps and
// drops failed records older than the recent window. It returns the number
// of snapshots removed.
//
// Rules, in order:
//  1. The MinCount newest completed snapshots are always kept.
//  2. Snapshots younger than KeepRecentHours are kept.
//  3. Snapshots older than MaxAgeDays are deleted.
//  4. Above MaxCount, the oldest unprotected snapshots are deleted.
func (m *Manager) ApplyRetention(_ context.Context) (int, error) {
	if !m.opMu.TryLock() {
		return 0, ErrInProgress
	}
	defer m.opMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	toDelete := selectForDeletion(m.snapshots, m.cfg.Retention, now)

	deleted := 0
	for _, id := range toDelete {
		if err := m.deleteLocked(id); err != nil {
			return deleted, err
		}
		deleted++
	}

	metrics.RecordBackupsPruned(deleted)
	if deleted > 0 {
		logging.Info().Int("deleted", deleted).Msg("Snapshot retention applied")
	}
	return deleted, nil
}

// selectForDeletion returns the IDs the policy drops.
func selectForDeletion(all []*Snapshot, policy RetentionPolicy, now time.Time) []string {
	recent := time.Duration(policy.KeepRecentHours) * time.Hour

	var completed []*Snapshot
	var drop []string
	for _, s := range all {
		switch s.Status {
		case StatusCompleted:
			completed = append(completed, s)
		case StatusFailed:
			if now.Sub(s.CreatedAt) > recent {
				drop = append(drop, s.ID)
			}
		}
	}
	sortNewestFirst(completed)

	protected := make(map[string]bool)
	for i, s := range completed {
		if i < policy.MinCount {
			protected[s.ID] = true
		}
	}

	var kept []*Snapshot
	for _, s := range completed {
		age := now.Sub(s.CreatedAt)
		switch {
		case protected[s.ID]:
			kept = append(kept, s)
		case policy.KeepRecentHours > 0 && age < recent:
			kept = append(kept, s)
		case policy.MaxAgeDays > 0 && age > time.Duration(policy.MaxAgeDays)*24*time.Hour:
			drop = append(drop, s.ID)
		default:
			kept = append(kept, s)
		}
	}

	if policy.MaxCount > 0 && len(kept) > policy.MaxCount {
		excess := len(kept) - policy.MaxCount
		// kept is newest first; walk from the oldest end.
		for i := len(kept) - 1; i >= 0 && excess > 0; i-- {
			if protected[kept[i].ID] {
				continue
			}
			drop = append(drop, kept[i].ID)
			excess--
		}
	}
	return drop
}
