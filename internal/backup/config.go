// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package backup

import (
	"compress/gzip"
	"fmt"
	"os"

	"github.com/tomtom215/gamecatalog/internal/config"
)

// Config holds snapshot settings.
type Config struct {
	// Dir holds the archives and metadata.json.
	Dir string

	// Compression gzips archives at CompressionLevel.
	Compression      bool
	CompressionLevel int

	Retention RetentionPolicy

	// AppVersion is recorded in every snapshot.
	AppVersion string
}

// ConfigFrom maps the application configuration.
func ConfigFrom(cfg *config.BackupConfig, appVersion string) Config {
	return Config{
		Dir:              cfg.Dir,
		Compression:      cfg.Compression,
		CompressionLevel: gzip.DefaultCompression,
		Retention: RetentionPolicy{
			MinCount:        cfg.RetentionMinCount,
			MaxCount:        cfg.RetentionMaxCount,
			MaxAgeDays:      cfg.RetentionMaxAgeDays,
			KeepRecentHours: cfg.RetentionKeepRecentHours,
		},
		AppVersion: appVersion,
	}
}

// ensureDir creates the snapshot directory.
func (c *Config) ensureDir() error {
	if c.Dir == "" {
		return fmt.Errorf("backup directory is required")
	}
	// 0750 per gosec G301
	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create backup directory %s: %w", c.Dir, err)
	}
	return nil
}
