// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package websocket

import (
	"context"
	"fmt"

	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
)

// Handler names registered by Subscribe.
const (
	HandlerGameStats     = "websocket-game-stats"
	HandlerCategoryStats = "websocket-category-stats"
)

// GameStatsMessage is the payload of a game_stats message.
type GameStatsMessage struct {
	GameID     string      `json:"game_id"`
	CategoryID string      `json:"category_id,omitempty"`
	Reason     string      `json:"reason"`
	Stats      interface{} `json:"stats,omitempty"`
}

// CategoryStatsMessage is the payload of a category_stats message.
type CategoryStatsMessage struct {
	CategoryID string      `json:"category_id"`
	Stats      interface{} `json:"stats"`
}

// Subscribe forwards stats events from bus to every connected client. The
// handlers use fanout subscriptions so each instance feeds its own clients.
func (h *Hub) Subscribe(bus *eventprocessor.Bus) error {
	err := bus.Subscribe(HandlerGameStats, eventprocessor.TopicGameStatsChanged, true,
		eventprocessor.HandleGameStatsChanged(HandlerGameStats, h.onGameStatsChanged))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", HandlerGameStats, err)
	}
	err = bus.Subscribe(HandlerCategoryStats, eventprocessor.TopicCategoryStatsChanged, true,
		eventprocessor.HandleCategoryStatsChanged(HandlerCategoryStats, h.onCategoryStatsChanged))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", HandlerCategoryStats, err)
	}
	return nil
}

func (h *Hub) onGameStatsChanged(_ context.Context, e *eventprocessor.GameStatsChanged) error {
	msg := GameStatsMessage{
		GameID:     e.GameID,
		CategoryID: e.CategoryID,
		Reason:     e.Reason,
	}
	if e.Snapshot != nil {
		msg.Stats = e.Snapshot
	}
	h.Broadcast(MessageTypeGameStats, msg)
	return nil
}

func (h *Hub) onCategoryStatsChanged(_ context.Context, e *eventprocessor.CategoryStatsChanged) error {
	h.Broadcast(MessageTypeCategoryStats, CategoryStatsMessage{
		CategoryID: e.CategoryID,
		Stats:      e.Stats,
	})
	return nil
}
