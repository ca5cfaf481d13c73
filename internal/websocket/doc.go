// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package websocket provides the live statistics feed.

Clients connect to /api/v1/ws and receive JSON messages:

	{"type": "game_stats", "data": {"game_id": "...", "category_id": "...", "reason": "rating", "stats": {...}}}
	{"type": "category_stats", "data": {"category_id": "...", "stats": {...}}}

A client may send {"type": "ping"} and gets {"type": "pong"} back. The
server also sends websocket pings every 54 seconds and drops clients that
miss the 60 second pong deadline.

# Architecture

The Hub owns the client set and runs as a supervised service
(RunWithContext). Hub.Subscribe registers fanout handlers on the event bus
for GameStatsChanged and CategoryStatsChanged, so every instance feeds its
own clients. Broadcasts never block event handling: when the hub queue is
full the message is dropped, and a client whose send buffer is full is
disconnected.
*/
package websocket
