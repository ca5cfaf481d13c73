// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/gamecatalog/internal/aggregator"
	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// Errors returned by the service in addition to store and aggregator errors.
var (
	ErrForbidden         = errors.New("operation not permitted")
	ErrInvalidParent     = errors.New("invalid parent category")
	ErrInvalidCategory   = errors.New("category does not exist")
	ErrCategoryInUse     = errors.New("category has subcategories or games")
	ErrOwnReview         = errors.New("cannot vote on or report own review")
	ErrAlreadyReported   = errors.New("review already reported by this user")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrAccountDisabled   = errors.New("account is disabled")
	ErrReviewNotEditable = errors.New("review can no longer be edited")
	ErrContentTooLong    = errors.New("content too long")
)

// Actor is the caller of an operation. The zero value is an anonymous
// visitor.
type Actor struct {
	UserID string
	Role   string
}

// Authenticated reports whether the actor is logged in.
func (a Actor) Authenticated() bool { return a.UserID != "" }

// IsModerator reports whether the actor may moderate reviews.
func (a Actor) IsModerator() bool { return models.IsModeratorRole(a.Role) }

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Config holds service settings.
type Config struct {
	AutoHideThreshold int
	MaxContentLength  int
	DefaultPageSize   int
	MaxPageSize       int
}

// ConfigFrom extracts the service settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		AutoHideThreshold: cfg.Reviews.AutoHideThreshold,
		MaxContentLength:  cfg.Reviews.MaxContentLength,
		DefaultPageSize:   cfg.API.DefaultPageSize,
		MaxPageSize:       cfg.API.MaxPageSize,
	}
}

// Service implements the catalog use cases.
type Service struct {
	store     store.Store
	agg       *aggregator.Aggregator
	publisher eventprocessor.Publisher
	cfg       Config
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService wires a Service. pub receives ReviewCommitted events and is
// usually the same publisher the aggregator uses.
func NewService(s store.Store, agg *aggregator.Aggregator, pub eventprocessor.Publisher, cfg Config) *Service {
	if pub == nil {
		pub = eventprocessor.NopPublisher{}
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return &Service{
		store:     s,
		agg:       agg,
		publisher: pub,
		cfg:       cfg,
		logger:    logging.WithComponent("catalog"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Aggregator exposes the aggregator for admin recompute endpoints.
func (s *Service) Aggregator() *aggregator.Aggregator {
	return s.agg
}

// publish sends event after a commit. Failures are logged; the reconcile
// job repairs derived state that missed an event.
func (s *Service) publish(ctx context.Context, event eventprocessor.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("topic", event.Topic()).
			Str("event_id", event.ID()).
			Msg("Publishing event failed")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
