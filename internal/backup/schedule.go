// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package backup

import (
	"context"
	"fmt"
)

// RunScheduled takes a scheduled snapshot and then applies retention. It
// matches the job signature of the supervisor's scheduled job service.
func (m *Manager) RunScheduled(ctx context.Context) error {
	if _, err := m.Create(ctx, TriggerScheduled, ""); err != nil {
		return fmt.Errorf("scheduled snapshot: %w", err)
	}
	if _, err := m.ApplyRetention(ctx); err != nil {
		return fmt.Errorf("snapshot retention: %w", err)
	}
	return nil
}
