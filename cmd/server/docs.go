// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

// @title Gamecatalog API
// @version 1.0
// @description Game catalog with ratings, reviews, favorites, play statistics and category rollups.
// @description
// @description ## Authentication
// @description
// @description Write endpoints require a JWT. Obtain one from `/api/v1/auth/login`; it is returned in the
// @description response body and set as an HTTP-only `token` cookie. Send it back as
// @description `Authorization: Bearer <token>` or through the cookie.
// @description
// @description ## Consistency
// @description
// @description With the in-process event transport, writes return after ratings and category rollups
// @description are updated. With NATS, non-GET responses carry `X-Consistency: eventual` and derived
// @description statistics converge shortly after the response.
// @description
// @description ## Rate Limiting
// @description
// @description Auth, write and read routes have separate per-client budgets. Exceeding one returns
// @description 429 with code `RATE_LIMITED`.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "success": false,
// @description   "data": null,
// @description   "error": {"code": "VALIDATION_ERROR", "message": "rating must be between 1 and 5", "details": {"field": "rating"}},
// @description   "meta": {"timestamp": "2026-01-01T12:00:00Z", "request_id": "..."}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/gamecatalog/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3857
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token. Obtain via /api/v1/auth/login.
//
// @tag.name auth
// @tag.description Registration, login and session management
//
// @tag.name games
// @tag.description Game listings, plays, favorites and administration
//
// @tag.name reviews
// @tag.description Reviews, helpful votes, reports and moderation
//
// @tag.name categories
// @tag.description Category tree and rollup statistics
//
// @tag.name users
// @tag.description Profiles, user statistics and account administration
//
// @tag.name health
// @tag.description Liveness and readiness probes
//
// @tag.name admin
// @tag.description Catalog administration, rollup recompute and store snapshots
//
// @tag.name realtime
// @tag.description WebSocket feed of game and category statistics
package main
