// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// TokenCookie is the cookie that may carry the session token.
const TokenCookie = "token"

// AccountSource loads the stored account behind a token subject.
type AccountSource interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ErrAccountDisabled is returned for tokens whose account was disabled or
// removed after the token was issued.
var ErrAccountDisabled = errors.New("account disabled")

// Middleware provides authentication and login throttling middleware.
type Middleware struct {
	jwtManager        *JWTManager
	accounts          AccountSource
	authMode          AuthMode
	loginLimiter      *RateLimiter
	rateLimitDisabled bool
	trustedProxies    map[string]bool
}

// NewMiddleware creates the authentication middleware. Login attempts are
// throttled per client IP to loginAttempts per loginWindow.
//
// With accounts set, every token is checked against the stored account:
// the stored role replaces the token's and disabled accounts are refused.
// A nil accounts trusts the token claims until they expire.
func NewMiddleware(jwtManager *JWTManager, accounts AccountSource, cfg *config.SecurityConfig) (*Middleware, error) {
	mode, err := ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}

	trusted := make(map[string]bool, len(cfg.TrustedProxies))
	for _, proxy := range cfg.TrustedProxies {
		trusted[proxy] = true
	}

	m := &Middleware{
		jwtManager:        jwtManager,
		accounts:          accounts,
		authMode:          mode,
		loginLimiter:      NewRateLimiter(loginAttempts, loginWindow),
		rateLimitDisabled: cfg.RateLimitDisabled,
		trustedProxies:    trusted,
	}
	if !cfg.RateLimitDisabled {
		go m.loginLimiter.startCleanup(5 * time.Minute)
	}
	return m, nil
}

// Mode returns the configured authentication mode.
func (m *Middleware) Mode() AuthMode {
	return m.authMode
}

// Authenticate rejects requests without a valid token with 401.
// With AUTH_MODE=none it behaves like Optional.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == AuthModeNone {
			m.Optional(next).ServeHTTP(w, r)
			return
		}

		token, err := extractToken(r)
		if err != nil {
			WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			msg := "Invalid token"
			if errors.Is(err, ErrExpiredCredentials) {
				msg = "Token expired"
			}
			WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", msg)
			return
		}

		claims, err = m.currentClaims(r.Context(), claims)
		if errors.Is(err, ErrAccountDisabled) {
			WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Account disabled")
			return
		}
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Account lookup failed")
			WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// Optional attaches claims when a valid token is present. Missing or
// invalid tokens continue as anonymous.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Ignoring invalid token on optional route")
			next.ServeHTTP(w, r)
			return
		}
		claims, err = m.currentClaims(r.Context(), claims)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Ignoring token of unavailable account")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// currentClaims returns claims carrying the stored role of the account.
func (m *Middleware) currentClaims(ctx context.Context, claims *Claims) (*Claims, error) {
	if m.accounts == nil {
		return claims, nil
	}
	u, err := m.accounts.GetUser(ctx, claims.UserID())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountDisabled
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	c := *claims
	c.Role = u.Role
	return &c, nil
}

// LoginThrottle limits credential attempts per client IP.
func (m *Middleware) LoginThrottle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitDisabled {
			next.ServeHTTP(w, r)
			return
		}
		if !m.loginLimiter.Allow(m.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			WriteError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders adds security headers to all responses.
func (m *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// Stop stops the login limiter cleanup goroutine.
func (m *Middleware) Stop() {
	m.loginLimiter.Stop()
}

// ClientIP returns the client address. Forwarding headers are honored only
// when the connection comes from a trusted proxy.
func (m *Middleware) ClientIP(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if len(m.trustedProxies) == 0 || !m.trustedProxies[remoteIP] {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return remoteIP
}

// extractToken reads the Bearer token, falling back to the token cookie.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(TokenCookie)
		if err != nil || cookie.Value == "" {
			return "", ErrNoCredentials
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrInvalidCredentials
	}
	return parts[1], nil
}

// WriteError writes a JSON error envelope. 401 responses carry a Bearer
// challenge.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="gamecatalog"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Success: false,
		Error:   &models.APIError{Code: code, Message: message},
		Meta: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode auth error")
	}
}
