// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamecatalog/internal/backup"
	"github.com/tomtom215/gamecatalog/internal/logging"
)

// ListBackups godoc
// @Summary List store snapshots
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=BackupListResponse}
// @Failure 403 {object} models.APIResponse{error=models.APIError}
// @Router /admin/backups [get]
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, BackupListResponse{
		Snapshots: h.backups.List(),
		Stats:     h.backups.Stats(),
	})
}

// CreateBackup godoc
// @Summary Take a store snapshot
// @Description Runs synchronously. Returns 409 while another snapshot or restore runs.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BackupRequest false "Snapshot notes"
// @Success 201 {object} models.APIResponse{data=backup.Snapshot}
// @Failure 409 {object} models.APIResponse{error=models.APIError}
// @Router /admin/backups [post]
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req BackupRequest
	if r.ContentLength != 0 && !bindJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	snap, err := h.backups.Create(r.Context(), backup.TriggerManual, req.Notes)
	if err != nil {
		h.audit.LogSnapshot(actor.UserID, "create", "", err)
		respondServiceError(w, r, err)
		return
	}
	h.audit.LogSnapshot(actor.UserID, "create", snap.ID, nil)
	respondJSON(w, r, http.StatusCreated, snap)
}

// GetBackup godoc
// @Summary Get a snapshot
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Snapshot ID"
// @Success 200 {object} models.APIResponse{data=backup.Snapshot}
// @Failure 404 {object} models.APIResponse{error=models.APIError}
// @Router /admin/backups/{id} [get]
func (h *Handler) GetBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.backups.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snap)
}

// DeleteBackup godoc
// @Summary Delete a snapshot
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Snapshot ID"
// @Success 204
// @Failure 404 {object} models.APIResponse{error=models.APIError}
// @Router /admin/backups/{id} [delete]
func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.backups.Delete(id)
	h.audit.LogSnapshot(actorFrom(r).UserID, "delete", id, err)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VerifyBackup godoc
// @Summary Verify a snapshot archive
// @Description Checks the archive checksum and reads its manifest.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Snapshot ID"
// @Success 200 {object} models.APIResponse{data=backup.Manifest}
// @Failure 422 {object} models.APIResponse{error=models.APIError}
// @Router /admin/backups/{id}/verify [post]
func (h *Handler) VerifyBackup(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.backups.Verify(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, manifest)
}

// RestoreBackup godoc
// @Summary Restore a snapshot
// @Description Replaces the whole store with the snapshot, then recomputes derived statistics. A safety snapshot is taken first unless pre_restore_snapshot is false.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Snapshot ID"
// @Param request body RestoreRequest false "Restore options"
// @Success 200 {object} models.APIResponse{data=RestoreResponse}
// @Failure 409 {object} models.APIResponse{error=models.APIError}
// @Failure 422 {object} models.APIResponse{error=models.APIError}
// @Router /admin/backups/{id}/restore [post]
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if r.ContentLength != 0 && !bindJSON(w, r, &req) {
		return
	}
	opts := backup.RestoreOptions{SkipVerify: req.SkipVerify, PreRestoreSnapshot: true}
	if req.PreRestoreSnapshot != nil {
		opts.PreRestoreSnapshot = *req.PreRestoreSnapshot
	}

	id := chi.URLParam(r, "id")
	result, err := h.backups.Restore(r.Context(), id, opts)
	h.audit.LogSnapshot(actorFrom(r).UserID, "restore", id, err)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	report, err := h.catalog.Aggregator().Reconcile(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("snapshot_id", id).Msg("Reconcile after restore failed")
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, RestoreResponse{Restore: result, Reconcile: report})
}
