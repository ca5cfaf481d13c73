// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/gamecatalog/internal/store"
)

// readyTimeout bounds the dependency checks of the readiness probe.
const readyTimeout = 2 * time.Second

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Uptime     float64                    `json:"uptime_seconds"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
}

// ComponentStatus is the health of one dependency.
type ComponentStatus struct {
	Healthy bool           `json:"healthy"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthLive godoc
// @Summary Liveness probe
// @Description Returns 200 while the process serves HTTP. Dependencies are not checked.
// @Tags health
// @Produce json
// @Success 200 {object} models.APIResponse{data=HealthStatus}
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, HealthStatus{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady godoc
// @Summary Readiness probe
// @Description Returns 503 until the store answers and the event router is running.
// @Tags health
// @Produce json
// @Success 200 {object} models.APIResponse{data=HealthStatus}
// @Failure 503 {object} models.APIResponse{data=HealthStatus}
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := HealthStatus{
		Status:     "ready",
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Seconds(),
		Components: make(map[string]ComponentStatus, 2),
	}

	storeStatus := ComponentStatus{Healthy: true}
	if err := h.store.View(ctx, func(store.Tx) error { return nil }); err != nil {
		storeStatus = ComponentStatus{Healthy: false, Error: err.Error()}
	}
	status.Components["store"] = storeStatus

	if h.bus != nil {
		bh := h.bus.HealthCheck(ctx)
		status.Components["events"] = ComponentStatus{Healthy: bh.Healthy, Error: bh.Error, Details: bh.Details}
	}

	code := http.StatusOK
	for _, c := range status.Components {
		if !c.Healthy {
			status.Status = "not_ready"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, r, code, status)
}
