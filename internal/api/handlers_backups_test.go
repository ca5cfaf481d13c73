// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/gamecatalog/internal/models"
)

func TestBackupEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, _ := env.token(t, "admin", models.RoleAdmin)
	mod, _ := env.token(t, "mod", models.RoleModerator)
	_, gameID := env.seedCatalog(t, admin)

	env.mustDo(t, http.StatusForbidden, http.MethodGet, "/api/v1/admin/backups", mod, nil)
	env.mustDo(t, http.StatusForbidden, http.MethodPost, "/api/v1/admin/backups", mod, nil)
	env.mustDo(t, http.StatusUnauthorized, http.MethodGet, "/api/v1/admin/backups", "", nil)

	created := env.mustDo(t, http.StatusCreated, http.MethodPost, "/api/v1/admin/backups", admin,
		map[string]string{"notes": "before launch"})
	snapID := created.Get("data.id").String()
	require.NotEmpty(t, snapID)
	assert.Equal(t, "completed", created.Get("data.status").String())
	assert.Equal(t, "before launch", created.Get("data.notes").String())
	assert.Equal(t, int64(1), created.Get("data.collections.games").Int())

	got := env.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/admin/backups/"+snapID, admin, nil)
	assert.Equal(t, snapID, got.Get("data.id").String())

	verified := env.mustDo(t, http.StatusOK, http.MethodPost, "/api/v1/admin/backups/"+snapID+"/verify", admin, nil)
	assert.Equal(t, snapID, verified.Get("data.snapshot_id").String())

	// Activity after the snapshot is rolled back by the restore.
	alice, aliceUser := env.token(t, "alice", models.RoleUser)
	env.mustDo(t, http.StatusCreated, http.MethodPost, "/api/v1/games/"+gameID+"/reviews", alice,
		map[string]interface{}{"rating": 4, "content": "Solid."})
	game := env.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/games/"+gameID, "", nil)
	require.Equal(t, int64(1), game.Get("data.rating.count").Int())

	restored := env.mustDo(t, http.StatusOK, http.MethodPost, "/api/v1/admin/backups/"+snapID+"/restore", admin, nil)
	assert.Equal(t, snapID, restored.Get("data.restore.snapshot_id").String())
	assert.NotEmpty(t, restored.Get("data.restore.pre_restore_id").String())
	assert.Equal(t, int64(1), restored.Get("data.reconcile.games_scanned").Int())

	game = env.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/games/"+gameID, "", nil)
	assert.Equal(t, int64(0), game.Get("data.rating.count").Int())
	env.mustDo(t, http.StatusNotFound, http.MethodGet, "/api/v1/users/"+aliceUser.ID, "", nil)

	list := env.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/admin/backups", admin, nil)
	assert.Equal(t, int64(2), list.Get("data.snapshots.#").Int())
	assert.Equal(t, int64(2), list.Get("data.stats.count").Int())

	env.mustDo(t, http.StatusNoContent, http.MethodDelete, "/api/v1/admin/backups/"+snapID, admin, nil)
	res := env.mustDo(t, http.StatusNotFound, http.MethodGet, "/api/v1/admin/backups/"+snapID, admin, nil)
	assert.Equal(t, ErrCodeNotFound, res.Get("error.code").String())
	env.mustDo(t, http.StatusNotFound, http.MethodPost, "/api/v1/admin/backups/"+snapID+"/restore", admin,
		map[string]bool{"pre_restore_snapshot": false})
}

func TestBackupRequestValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, _ := env.token(t, "admin", models.RoleAdmin)

	env.mustDo(t, http.StatusBadRequest, http.MethodPost, "/api/v1/admin/backups", admin,
		map[string]string{"unknown": "field"})
	env.mustDo(t, http.StatusBadRequest, http.MethodPost, "/api/v1/admin/backups/x/restore", admin,
		`{"skip_verify": "yes"}`)
}
