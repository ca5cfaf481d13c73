// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package backup

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for an unknown snapshot ID.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInProgress is returned when a snapshot or restore is already running.
	ErrInProgress = errors.New("snapshot operation already in progress")

	// ErrChecksumMismatch is returned when an archive no longer matches the
	// checksum recorded at creation.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrInvalidArchive is returned for archives without a readable
	// manifest or document stream.
	ErrInvalidArchive = errors.New("invalid snapshot archive")
)

// Status is the lifecycle state of a snapshot.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Trigger records what created a snapshot.
type Trigger string

const (
	TriggerManual     Trigger = "manual"
	TriggerScheduled  Trigger = "scheduled"
	TriggerPreRestore Trigger = "pre_restore"
)

// Snapshot is the metadata of one store snapshot.
type Snapshot struct {
	ID          string        `json:"id"`
	Status      Status        `json:"status"`
	Trigger     Trigger       `json:"trigger"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration"`

	// FilePath is the archive location; FileSize and Checksum (SHA-256,
	// hex) describe the archive file as written.
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size"`
	Checksum   string `json:"checksum"`
	Compressed bool   `json:"compressed"`

	AppVersion string `json:"app_version"`
	// Backend is the engine the snapshot was taken from. Archives are
	// engine neutral and restore into either backend.
	Backend     string         `json:"backend"`
	Documents   int            `json:"documents"`
	Collections map[string]int `json:"collections,omitempty"`

	Notes string `json:"notes,omitempty"`
	Error string `json:"error,omitempty"`
}

// Manifest is stored inside every archive next to the document stream.
type Manifest struct {
	SnapshotID  string         `json:"snapshot_id"`
	CreatedAt   time.Time      `json:"created_at"`
	AppVersion  string         `json:"app_version"`
	Backend     string         `json:"backend"`
	Documents   int            `json:"documents"`
	Collections map[string]int `json:"collections"`
	// DocumentsChecksum is the SHA-256 of the document stream entry.
	DocumentsChecksum string `json:"documents_checksum"`
}

// RetentionPolicy decides which completed snapshots survive a cleanup.
type RetentionPolicy struct {
	// MinCount newest snapshots are always kept.
	MinCount int `json:"min_count"`

	// MaxCount caps the number of snapshots (0 = unlimited).
	MaxCount int `json:"max_count"`

	// MaxAgeDays deletes older snapshots (0 = unlimited).
	MaxAgeDays int `json:"max_age_days"`

	// KeepRecentHours keeps every snapshot younger than this.
	KeepRecentHours int `json:"keep_recent_hours"`
}

// DefaultRetentionPolicy returns the retention defaults.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		MinCount:        3,
		MaxCount:        30,
		MaxAgeDays:      30,
		KeepRecentHours: 24,
	}
}

// RestoreOptions controls a restore.
type RestoreOptions struct {
	// SkipVerify restores without checking the archive checksum.
	SkipVerify bool `json:"skip_verify"`

	// PreRestoreSnapshot takes a safety snapshot of the current store
	// before anything is replaced.
	PreRestoreSnapshot bool `json:"pre_restore_snapshot"`
}

// RestoreResult reports a finished restore.
type RestoreResult struct {
	SnapshotID    string        `json:"snapshot_id"`
	PreRestoreID  string        `json:"pre_restore_id,omitempty"`
	Removed       int           `json:"removed"`
	Restored      int           `json:"restored"`
	Duration      time.Duration `json:"duration"`
	SourceBackend string        `json:"source_backend"`
}

// Stats summarizes the snapshot directory.
type Stats struct {
	Count           int        `json:"count"`
	TotalSize       int64      `json:"total_size"`
	LastSuccess     *time.Time `json:"last_success,omitempty"`
	LastFailure     *time.Time `json:"last_failure,omitempty"`
	FailedSnapshots int        `json:"failed_snapshots"`
}
