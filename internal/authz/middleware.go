// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package authz

import (
	"net/http"

	"github.com/tomtom215/gamecatalog/internal/auth"
	"github.com/tomtom215/gamecatalog/internal/logging"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Require allows the request when the caller's role may perform action on
// object. It runs after auth.Middleware.Authenticate or Optional; callers
// without claims are anonymous. Denied anonymous callers get 401, denied
// signed-in callers 403.
//
//	r.With(authzMW.Require(authz.ObjectGames, authz.ActionAdmin)).Post("/games", h.CreateGame)
func (m *Middleware) Require(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleAnonymous
			claims := auth.ClaimsFromContext(r.Context())
			if claims != nil {
				role = claims.Role
			}

			allowed, err := m.enforcer.Enforce(role, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				auth.WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization failed")
				return
			}
			if !allowed {
				if claims == nil {
					auth.WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
					return
				}
				auth.WriteError(w, r, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
