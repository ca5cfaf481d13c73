// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/gamecatalog/internal/auth"
	"github.com/tomtom215/gamecatalog/internal/authz"
	"github.com/tomtom215/gamecatalog/internal/middleware"
)

// Router assembles the handler and its middleware into the HTTP surface.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
	swagger       bool
}

// NewRouter creates a Router. swagger mounts the API documentation UI at
// /swagger/.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware, swagger bool) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		auth:          authMW,
		authz:         authzMW,
		chiMiddleware: chiMW,
		swagger:       swagger,
	}
}

// routePattern returns the matched chi route for labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Setup builds the chi route tree.
//
// Reads run with optional authentication, so an invalid token degrades to
// anonymous access. Writes require a valid token. Every route is checked
// against the casbin policy by object and action; ownership rules stay in
// the catalog service.
func (rt *Router) Setup() http.Handler {
	h := rt.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
	r.Use(rt.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Handle("/metrics", promhttp.Handler())
	if rt.swagger {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	synchronous := h.bus == nil || h.bus.Synchronous()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.auth.SecurityHeaders)
		r.Use(consistencyHeader(synchronous))

		r.Route("/auth", func(r chi.Router) {
			r.Use(rt.chiMiddleware.RateLimitAuth())
			r.With(rt.auth.LoginThrottle).Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
			r.With(rt.auth.Authenticate).Get("/me", h.Me)
		})

		r.Group(rt.readRoutes)
		r.Group(rt.writeRoutes)
	})

	return r
}

func (rt *Router) require(object, action string) func(http.Handler) http.Handler {
	return rt.authz.Require(object, action)
}

func (rt *Router) readRoutes(r chi.Router) {
	h := rt.handler
	r.Use(rt.chiMiddleware.RateLimitRead())
	r.Use(rt.auth.Optional)

	r.With(rt.require(authz.ObjectCategories, authz.ActionRead)).Get("/categories", h.ListCategories)
	r.With(rt.require(authz.ObjectCategories, authz.ActionRead)).Get("/categories/tree", h.CategoryTree)
	r.With(rt.require(authz.ObjectCategories, authz.ActionRead)).Get("/categories/{id}", h.GetCategory)

	r.With(rt.require(authz.ObjectGames, authz.ActionRead)).Get("/games", h.ListGames)
	r.With(rt.require(authz.ObjectGames, authz.ActionRead)).Get("/games/popular", h.PopularGames)
	r.With(rt.require(authz.ObjectGames, authz.ActionRead)).Get("/games/{id}", h.GetGame)
	r.With(rt.require(authz.ObjectGames, authz.ActionRead)).Get("/games/{id}/stats", h.GameStats)

	r.With(rt.require(authz.ObjectReviews, authz.ActionRead)).Get("/games/{id}/reviews", h.ListGameReviews)
	r.With(rt.require(authz.ObjectReviews, authz.ActionRead)).Get("/reviews/{id}", h.GetReview)

	r.With(rt.require(authz.ObjectUsers, authz.ActionRead)).Get("/users/{id}", h.GetUser)
	r.With(rt.require(authz.ObjectReviews, authz.ActionRead)).Get("/users/{id}/reviews", h.UserReviews)

	r.With(rt.require(authz.ObjectGames, authz.ActionRead)).Get("/ws", h.WebSocket)
}

func (rt *Router) writeRoutes(r chi.Router) {
	h := rt.handler
	r.Use(rt.chiMiddleware.RateLimitWrite())
	r.Use(rt.auth.Authenticate)

	// Own account
	r.With(rt.require(authz.ObjectUsers, authz.ActionWrite)).Patch("/users/me", h.UpdateMe)
	r.With(rt.require(authz.ObjectUsers, authz.ActionWrite)).Put("/users/me/password", h.ChangePassword)
	r.With(rt.require(authz.ObjectUsers, authz.ActionWrite)).Get("/users/me/favorites", h.MyFavorites)

	// Plays and favorites
	r.With(rt.require(authz.ObjectGames, authz.ActionWrite)).Post("/games/{id}/play", h.RecordPlay)
	r.With(rt.require(authz.ObjectGames, authz.ActionWrite)).Post("/games/{id}/favorite", h.AddFavorite)
	r.With(rt.require(authz.ObjectGames, authz.ActionWrite)).Delete("/games/{id}/favorite", h.RemoveFavorite)

	// Reviews
	r.With(rt.require(authz.ObjectReviews, authz.ActionWrite)).Post("/games/{id}/reviews", h.CreateReview)
	r.With(rt.require(authz.ObjectReviews, authz.ActionWrite)).Patch("/reviews/{id}", h.UpdateReview)
	r.With(rt.require(authz.ObjectReviews, authz.ActionDelete)).Delete("/reviews/{id}", h.DeleteReview)
	r.With(rt.require(authz.ObjectReviews, authz.ActionWrite)).Post("/reviews/{id}/helpful", h.ToggleHelpful)
	r.With(rt.require(authz.ObjectReviews, authz.ActionWrite)).Post("/reviews/{id}/report", h.ReportReview)
	r.With(rt.require(authz.ObjectReviews, authz.ActionWrite)).Put("/reviews/{id}/reply", h.ReplyToReview)

	// Moderation
	r.With(rt.require(authz.ObjectReviews, authz.ActionModerate)).Patch("/reviews/{id}/status", h.SetReviewStatus)
	r.With(rt.require(authz.ObjectModeration, authz.ActionModerate)).Get("/moderation/reviews/reported", h.ReportedReviews)

	// Catalog administration
	r.With(rt.require(authz.ObjectCategories, authz.ActionAdmin)).Post("/categories", h.CreateCategory)
	r.With(rt.require(authz.ObjectCategories, authz.ActionAdmin)).Post("/categories/stats/recompute", h.RecomputeAllCategories)
	r.With(rt.require(authz.ObjectCategories, authz.ActionAdmin)).Patch("/categories/{id}", h.UpdateCategory)
	r.With(rt.require(authz.ObjectCategories, authz.ActionAdmin)).Delete("/categories/{id}", h.DeleteCategory)
	r.With(rt.require(authz.ObjectCategories, authz.ActionAdmin)).Post("/categories/{id}/stats/recompute", h.RecomputeCategoryStats)

	r.With(rt.require(authz.ObjectGames, authz.ActionAdmin)).Post("/games", h.CreateGame)
	r.With(rt.require(authz.ObjectGames, authz.ActionAdmin)).Patch("/games/{id}", h.UpdateGame)
	r.With(rt.require(authz.ObjectGames, authz.ActionAdmin)).Patch("/games/{id}/status", h.SetGameStatus)
	r.With(rt.require(authz.ObjectGames, authz.ActionAdmin)).Delete("/games/{id}", h.DeleteGame)
	r.With(rt.require(authz.ObjectGames, authz.ActionAdmin)).Post("/games/{id}/rating/recompute", h.RecomputeGameRating)

	r.With(rt.require(authz.ObjectUsers, authz.ActionAdmin)).Get("/users", h.ListUsers)
	r.With(rt.require(authz.ObjectUsers, authz.ActionAdmin)).Patch("/users/{id}/role", h.SetUserRole)
	r.With(rt.require(authz.ObjectUsers, authz.ActionAdmin)).Patch("/users/{id}/status", h.SetUserStatus)

	if h.backups != nil {
		r.Route("/admin/backups", func(r chi.Router) {
			r.Use(rt.require(authz.ObjectBackups, authz.ActionAdmin))
			r.Get("/", h.ListBackups)
			r.Post("/", h.CreateBackup)
			r.Get("/{id}", h.GetBackup)
			r.Delete("/{id}", h.DeleteBackup)
			r.Post("/{id}/verify", h.VerifyBackup)
			r.Post("/{id}/restore", h.RestoreBackup)
		})
	}
}
