// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package api provides the HTTP REST API of the game catalog.

Key Components:

  - Router: chi route tree and middleware stack
  - Handler: request handlers, one file per resource
  - ChiMiddleware: go-chi/cors and go-chi/httprate factories
  - Response helpers: the JSON envelope, ETags and error mapping

Routes live under /api/v1 (auth, users, categories, games, reviews,
moderation and the /ws live feed). /api/v1/admin/backups is mounted only
when a backup.Manager is supplied. Health probes, /metrics and /swagger/
are mounted at the root.

Middleware Stack:

	RequestID -> RealIP -> Recoverer -> PrometheusMetrics -> AccessLog -> CORS
	/api/v1: SecurityHeaders -> X-Consistency
	  reads:  RateLimitRead  -> auth.Optional     -> authz.Require(object, read)
	  writes: RateLimitWrite -> auth.Authenticate -> authz.Require(object, action)
	  auth:   RateLimitAuth  (+ LoginThrottle on /login)

Responses:

Every JSON response uses models.APIResponse:

	{"success": true, "data": {...}, "meta": {"timestamp": "...", "request_id": "...", "pagination": {...}}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Service errors map to status codes in errors.go. CONFLICT (409, with
Retry-After) means a concurrent write won; the request can be retried.
DUPLICATE and INVALID_STATE conflicts cannot. A snapshot that fails
verification returns 422 INVALID_ARCHIVE.

Consistency:

With the in-process event transport, a review write returns after the
game rating and category rollup are updated. With NATS, derived statistics
follow asynchronously and write responses carry "X-Consistency: eventual".

Usage Example:

	handler := api.NewHandler(api.Dependencies{
	    Catalog: svc, Store: st, JWT: jwtManager, Auth: authMW,
	    Passwords: auth.PasswordPolicy{MinLength: 8}, Bus: bus, Hub: hub,
	})
	router := api.NewRouter(handler, authMW, authzMW, api.NewChiMiddleware(cfg), true)
	srv := &http.Server{Addr: ":3857", Handler: router.Setup()}
*/
package api
