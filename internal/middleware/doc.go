// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package middleware provides infrastructure HTTP middleware shared by every
route: request IDs, Prometheus instrumentation and access logging.

Authentication lives in internal/auth and authorization in internal/authz.

Middleware Stack:

	r.Use(middleware.RequestID)          // X-Request-ID and logging context
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)  // api_requests_total{method,endpoint,status_code}
	r.Use(middleware.AccessLog)

Request IDs:

An incoming X-Request-ID of 1-128 printable ASCII characters is kept,
anything else is replaced by a UUID. Handlers read it with
logging.RequestIDFromContext; logging.Ctx(ctx) adds it to every entry.

Metrics use the chi route pattern (for example /api/v1/games/{id}) as the
endpoint label.
*/
package middleware
