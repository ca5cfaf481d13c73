// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/websocket"
)

const registerTimeout = 5 * time.Second

// WebSocket godoc
// @Summary Live statistics feed
// @Description Upgrades to a websocket that receives game_stats and category_stats messages.
// @Tags live
// @Success 101
// @Failure 404 {object} models.APIResponse "Feed disabled"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Live feed is disabled", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	timer := time.NewTimer(registerTimeout)
	defer timer.Stop()
	select {
	case h.hub.Register <- client:
		client.Start()
	case <-timer.C:
		// Hub is shutting down.
		_ = conn.Close()
	}
}
