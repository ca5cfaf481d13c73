// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/gamecatalog/internal/auth"
	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// dummyHash is compared against when the login names no account, so that
// unknown and known usernames take the same time.
var dummyHash = sync.OnceValue(func() string {
	h, err := auth.HashPassword("not-a-real-password-1")
	if err != nil {
		return ""
	}
	return h
})

// Register godoc
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account"
// @Success 201 {object} models.APIResponse{data=AuthResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !bindJSON(w, r, &req) {
		return
	}
	if err := h.passwords.Check(req.Password); err != nil {
		respondServiceError(w, r, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	u, err := h.catalog.Register(r.Context(), catalog.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.audit.LogRegister(u.ID, u.Username, h.clientIP(r))

	h.issueToken(w, r, u, http.StatusCreated)
}

// Login godoc
// @Summary Log in
// @Description Accepts a username or email. The token is returned and set as the "token" cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=AuthResponse}
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 429 {object} models.APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !bindJSON(w, r, &req) {
		return
	}
	ip := h.clientIP(r)

	u, err := h.catalog.UserByLogin(r.Context(), req.Login)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			respondServiceError(w, r, err)
			return
		}
		_ = auth.CheckPassword(dummyHash(), req.Password)
		h.audit.LogLogin("", req.Login, ip, false, "unknown user")
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password", nil)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		h.audit.LogLogin(u.ID, u.Username, ip, false, "wrong password")
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password", nil)
		return
	}
	if !u.IsActive {
		h.audit.LogLogin(u.ID, u.Username, ip, false, "account disabled")
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, catalog.ErrAccountDisabled.Error(), nil)
		return
	}

	if err := h.catalog.RecordLogin(r.Context(), u.ID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", u.ID).Msg("Failed to record login time")
	}
	h.audit.LogLogin(u.ID, u.Username, ip, true, "")

	h.issueToken(w, r, u, http.StatusOK)
}

// Logout godoc
// @Summary Log out
// @Description Clears the token cookie. Bearer tokens stay valid until they expire.
// @Tags auth
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	respondJSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.UserProfile}
// @Failure 401 {object} models.APIResponse
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if !actor.Authenticated() {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required", nil)
		return
	}
	u, err := h.catalog.GetUser(r.Context(), actor.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, u.Profile(true))
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, u *models.User, status int) {
	token, expiresAt, err := h.jwt.GenerateToken(u)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	respondJSON(w, r, status, AuthResponse{
		User:      u.Profile(true),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

func (h *Handler) clientIP(r *http.Request) string {
	if h.authMW != nil {
		return h.authMW.ClientIP(r)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
