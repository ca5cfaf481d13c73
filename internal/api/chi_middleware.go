// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/metrics"
)

// Rate limit classes per client IP and window.
const (
	defaultAuthRequests  = 5
	defaultWriteRequests = 30
	defaultReadRequests  = 100
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	AuthRequests      int
	WriteRequests     int
	ReadRequests      int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	// RateLimitKeyFunc defaults to httprate.KeyByIP.
	RateLimitKeyFunc httprate.KeyFunc
}

// DefaultChiMiddlewareConfig returns a secure default configuration.
// CORS origins default to empty, requiring explicit configuration.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID", "If-None-Match"},
		CORSExposedHeaders: []string{"X-Request-ID", "X-Consistency", "ETag", "Retry-After"},
		CORSMaxAge:         86400,

		AuthRequests:    defaultAuthRequests,
		WriteRequests:   defaultWriteRequests,
		ReadRequests:    defaultReadRequests,
		RateLimitWindow: time.Minute,
	}
}

// ChiMiddlewareConfigFrom builds the middleware configuration from the
// security settings. security.rate_limit_reqs sets the read limit; write
// and auth limits keep their ratio to it.
func ChiMiddlewareConfigFrom(cfg *config.SecurityConfig) *ChiMiddlewareConfig {
	c := DefaultChiMiddlewareConfig()
	c.CORSAllowedOrigins = cfg.CORSOrigins
	c.CORSAllowCredentials = !containsWildcard(cfg.CORSOrigins)
	c.RateLimitDisabled = cfg.RateLimitDisabled
	if cfg.RateLimitWindow > 0 {
		c.RateLimitWindow = cfg.RateLimitWindow
	}
	if cfg.RateLimitReqs > 0 && cfg.RateLimitReqs != defaultReadRequests {
		c.ReadRequests = cfg.RateLimitReqs
		c.WriteRequests = max(1, cfg.RateLimitReqs*defaultWriteRequests/defaultReadRequests)
		c.AuthRequests = max(1, cfg.RateLimitReqs*defaultAuthRequests/defaultReadRequests)
	}
	return c
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   config.CORSExposedHeaders,
		AllowCredentials: config.CORSAllowCredentials,
		MaxAge:           config.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitAuth limits register and login attempts.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.rateLimit(m.config.AuthRequests)
}

// RateLimitWrite limits mutating requests.
func (m *ChiMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	return m.rateLimit(m.config.WriteRequests)
}

// RateLimitRead limits read requests.
func (m *ChiMiddleware) RateLimitRead() func(http.Handler) http.Handler {
	return m.rateLimit(m.config.ReadRequests)
}

func (m *ChiMiddleware) rateLimit(requests int) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	keyFunc := m.config.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		requests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(rateLimited),
	)
}

// rateLimited answers requests over the limit. httprate has already set
// the Retry-After and X-RateLimit headers.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RecordRateLimitHit(routePattern(r))
	respondError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
}

// consistencyHeader marks write responses as eventually consistent when
// derived statistics are updated asynchronously.
func consistencyHeader(synchronous bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if synchronous {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				w.Header().Set("X-Consistency", "eventual")
			}
			next.ServeHTTP(w, r)
		})
	}
}
