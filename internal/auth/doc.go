// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package auth provides authentication for the catalog API.

Accounts are local: passwords are hashed with bcrypt and a successful login
returns an HS256 JWT carrying the user ID, username and role. Tokens are
accepted from the Authorization header ("Bearer <token>") or the "token"
cookie.

# Modes

  - jwt (default): protected routes require a valid token
  - none: development only; requests without a token continue as anonymous
    and authorization decides what they may do

# Middleware

  - Authenticate: 401 with a JSON error envelope unless a valid token is present
  - Optional: attaches claims when a valid token is present
  - LoginThrottle: per client IP token bucket on credential endpoints
  - SecurityHeaders: frame, sniffing, referrer and HSTS headers

With an AccountSource, both refresh the role from the stored account and
treat disabled or removed accounts as unauthenticated.

Handlers read the caller with ClaimsFromContext.

# Client IP

X-Forwarded-For and X-Real-IP are honored only when the direct peer is listed
in TRUSTED_PROXIES.
*/
package auth
