// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

func newTestMiddleware(t *testing.T, cfg *config.SecurityConfig) (*Middleware, *JWTManager) {
	t.Helper()
	manager, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	m, err := NewMiddleware(manager, nil, cfg)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}
	t.Cleanup(m.Stop)
	return m, manager
}

// echoClaims writes the authenticated username or "anonymous".
var echoClaims = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		_, _ = w.Write([]byte(claims.Username))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
})

func TestAuthenticate(t *testing.T) {
	m, manager := newTestMiddleware(t, testSecurityConfig())
	token, _, err := manager.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "alice"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }, http.StatusOK, "alice"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized, ""},
		{"tampered", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token+"x") }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			m.Authenticate(echoClaims).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if rec.Body.String() != tt.wantBody {
					t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
				}
				return
			}
			body := rec.Body.String()
			if gjson.Get(body, "success").Bool() {
				t.Error("expected success=false")
			}
			if code := gjson.Get(body, "error.code").String(); code != "UNAUTHORIZED" {
				t.Errorf("error.code = %q, want UNAUTHORIZED", code)
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

func TestOptional(t *testing.T) {
	m, manager := newTestMiddleware(t, testSecurityConfig())
	token, _, _ := manager.GenerateToken(testUser())

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer " + token, "alice"},
		{"no token", "", "anonymous"},
		{"invalid token", "Bearer nope", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/games", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.Optional(echoClaims).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK || rec.Body.String() != tt.want {
				t.Errorf("got %d %q, want 200 %q", rec.Code, rec.Body.String(), tt.want)
			}
		})
	}
}

// accountMap serves accounts from memory; a nil entry fails the lookup.
type accountMap map[string]*models.User

func (a accountMap) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := a[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u == nil {
		return nil, errors.New("store unavailable")
	}
	return u, nil
}

// echoRole writes the role the request runs with.
var echoRole = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		_, _ = w.Write([]byte(claims.Role))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
})

func TestAuthenticate_UsesStoredAccount(t *testing.T) {
	cfg := testSecurityConfig()
	manager, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	tokenFor := func(id, role string) string {
		tok, _, err := manager.GenerateToken(&models.User{ID: id, Username: id, Role: role})
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		return tok
	}

	accounts := accountMap{
		"demoted":  {ID: "demoted", Role: models.RoleUser, IsActive: true},
		"promoted": {ID: "promoted", Role: models.RoleAdmin, IsActive: true},
		"disabled": {ID: "disabled", Role: models.RoleUser, IsActive: false},
		"broken":   nil,
	}
	m, err := NewMiddleware(manager, accounts, cfg)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}
	t.Cleanup(m.Stop)

	tests := []struct {
		name         string
		token        string
		wantStatus   int
		wantRole     string
		wantOptional string
	}{
		{"demoted moderator", tokenFor("demoted", models.RoleModerator), http.StatusOK, models.RoleUser, models.RoleUser},
		{"promoted user", tokenFor("promoted", models.RoleUser), http.StatusOK, models.RoleAdmin, models.RoleAdmin},
		{"disabled account", tokenFor("disabled", models.RoleUser), http.StatusUnauthorized, "", "anonymous"},
		{"removed account", tokenFor("removed", models.RoleAdmin), http.StatusUnauthorized, "", "anonymous"},
		{"lookup failure", tokenFor("broken", models.RoleUser), http.StatusInternalServerError, "", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			m.Authenticate(echoRole).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rec.Body.String() != tt.wantRole {
				t.Errorf("role = %q, want %q", rec.Body.String(), tt.wantRole)
			}

			req = httptest.NewRequest(http.MethodGet, "/api/v1/games", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec = httptest.NewRecorder()
			m.Optional(echoRole).ServeHTTP(rec, req)
			if rec.Body.String() != tt.wantOptional {
				t.Errorf("optional role = %q, want %q", rec.Body.String(), tt.wantOptional)
			}
		})
	}
}

func TestAuthenticate_NoneModeAllowsAnonymous(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.AuthMode = "none"
	m, _ := newTestMiddleware(t, cfg)

	rec := httptest.NewRecorder()
	m.Authenticate(echoClaims).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Errorf("got %d %q, want 200 anonymous", rec.Code, rec.Body.String())
	}
}

func TestLoginThrottle(t *testing.T) {
	m, _ := newTestMiddleware(t, testSecurityConfig())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := m.LoginThrottle(ok)

	for i := 0; i < loginAttempts; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("attempt %d: status = %d, want 204", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if code := gjson.Get(rec.Body.String(), "error.code").String(); code != "RATE_LIMITED" {
		t.Errorf("error.code = %q, want RATE_LIMITED", code)
	}

	// Other clients are unaffected.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("second client status = %d, want 204", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.TrustedProxies = []string{"10.0.0.1"}
	m, _ := newTestMiddleware(t, cfg)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"direct", "192.0.2.10:1234", nil, "192.0.2.10"},
		{"untrusted forwarder ignored", "192.0.2.10:1234", map[string]string{"X-Forwarded-For": "198.51.100.7"}, "192.0.2.10"},
		{"trusted xff", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"}, "198.51.100.7"},
		{"trusted real ip", "10.0.0.1:1234", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"trusted invalid header", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "bogus"}, "10.0.0.1"},
		{"ipv6", "[2001:db8::1]:443", nil, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := m.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")
	if rl.size() != 2 {
		t.Fatalf("size = %d, want 2", rl.size())
	}
	rl.cleanup(-time.Second)
	if rl.size() != 0 {
		t.Errorf("size after cleanup = %d, want 0", rl.size())
	}
}

func TestSecurityHeaders(t *testing.T) {
	m, _ := newTestMiddleware(t, testSecurityConfig())
	rec := httptest.NewRecorder()
	m.SecurityHeaders(echoClaims).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set on plain HTTP")
	}
}
