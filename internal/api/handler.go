// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"context"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/gamecatalog/internal/auth"
	"github.com/tomtom215/gamecatalog/internal/backup"
	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/store"
	"github.com/tomtom215/gamecatalog/internal/websocket"
)

// EventBus is the part of the event bus the handlers need.
type EventBus interface {
	HealthCheck(ctx context.Context) eventprocessor.ComponentHealth
	Synchronous() bool
}

// Dependencies wires a Handler.
type Dependencies struct {
	Catalog   *catalog.Service
	Store     store.Store
	JWT       *auth.JWTManager
	Auth      *auth.Middleware
	Passwords auth.PasswordPolicy
	Bus       EventBus
	// Hub is nil when the live feed is disabled.
	Hub *websocket.Hub
	// Backups is nil when snapshots are disabled.
	Backups      *backup.Manager
	CORSOrigins  []string
	CookieSecure bool
	Version      string
}

// Handler implements the HTTP endpoints.
type Handler struct {
	catalog      *catalog.Service
	store        store.Store
	jwt          *auth.JWTManager
	authMW       *auth.Middleware
	passwords    auth.PasswordPolicy
	bus          EventBus
	hub          *websocket.Hub
	backups      *backup.Manager
	upgrader     *gorillaws.Upgrader
	audit        *logging.AuditLogger
	cookieSecure bool
	version      string
	startTime    time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Dependencies) *Handler {
	h := &Handler{
		catalog:      deps.Catalog,
		store:        deps.Store,
		jwt:          deps.JWT,
		authMW:       deps.Auth,
		passwords:    deps.Passwords,
		bus:          deps.Bus,
		hub:          deps.Hub,
		backups:      deps.Backups,
		audit:        logging.NewAuditLogger(),
		cookieSecure: deps.CookieSecure,
		version:      deps.Version,
		startTime:    time.Now(),
	}
	if h.hub != nil {
		h.upgrader = websocket.NewUpgrader(deps.CORSOrigins)
	}
	return h
}

// actorFrom returns the caller identified by the auth middleware.
func actorFrom(r *http.Request) catalog.Actor {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return catalog.Actor{}
	}
	return catalog.Actor{UserID: claims.UserID(), Role: claims.Role}
}
