// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// Errors returned by the aggregator in addition to the store errors.
var (
	// ErrInvalidPlayTime is returned for a negative play time, one above
	// Config.MaxPlayTime, or one the running totals cannot absorb.
	ErrInvalidPlayTime = errors.New("invalid play time")

	// ErrGameUnavailable is returned when playing a game that is not active.
	ErrGameUnavailable = errors.New("game is not available")

	// ErrUnknownPolicy is returned for an unsupported rollup policy.
	ErrUnknownPolicy = errors.New("unknown rollup policy")
)

// Config holds aggregator settings.
type Config struct {
	// RollupPolicy is config.RollupPolicyUnweighted (default) or
	// config.RollupPolicyPlayWeighted.
	RollupPolicy string

	// MaxPlayTime is the longest play session in seconds. Zero accepts any
	// session the totals can hold.
	MaxPlayTime int64
}

// Aggregator owns every write to derived game and category state.
type Aggregator struct {
	store     store.Store
	publisher eventprocessor.Publisher
	cfg       Config
	locks     *keyedMutex
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates an Aggregator over s. A nil publisher discards events.
func New(s store.Store, pub eventprocessor.Publisher, cfg Config) (*Aggregator, error) {
	if s == nil {
		return nil, errors.New("aggregator: store is required")
	}
	if pub == nil {
		pub = eventprocessor.NopPublisher{}
	}
	switch cfg.RollupPolicy {
	case "":
		cfg.RollupPolicy = config.RollupPolicyUnweighted
	case config.RollupPolicyUnweighted, config.RollupPolicyPlayWeighted:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, cfg.RollupPolicy)
	}

	return &Aggregator{
		store:     s,
		publisher: pub,
		cfg:       cfg,
		locks:     newKeyedMutex(),
		logger:    logging.WithComponent("aggregator"),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// GameMutation changes g inside a store transaction and reports whether
// anything changed. Returning false skips the write and the event.
type GameMutation func(tx store.Tx, g *models.Game) (bool, error)

func gameKey(id string) string     { return "game:" + id }
func categoryKey(id string) string { return "category:" + id }
func userKey(id string) string     { return "user:" + id }

// MutateGame is the only path that writes a game document. It holds the
// per-game lock, runs fn inside one Update transaction and, once the
// transaction committed, publishes GameStatsChanged with reason.
func (a *Aggregator) MutateGame(ctx context.Context, gameID, reason string, fn GameMutation) (*models.Game, error) {
	return a.mutateGameAs(ctx, gameID, "", reason, fn)
}

func (a *Aggregator) mutateGameAs(ctx context.Context, gameID, userID, reason string, fn GameMutation) (*models.Game, error) {
	g, previousCategory, changed, err := a.mutateGame(ctx, gameID, userID, fn)
	if err != nil {
		return nil, err
	}
	if changed {
		event := eventprocessor.NewGameStatsChanged(g, reason)
		if previousCategory != g.CategoryID {
			event.PreviousCategoryID = previousCategory
		}
		a.publish(ctx, event)
	}
	return g, nil
}

// mutateGame also holds userID's lock when fn writes that user.
func (a *Aggregator) mutateGame(ctx context.Context, gameID, userID string, fn GameMutation) (*models.Game, string, bool, error) {
	unlock, err := a.lockAll(ctx, lockKeys(gameID, userID)...)
	if err != nil {
		return nil, "", false, err
	}
	defer unlock()

	var (
		out              *models.Game
		previousCategory string
		changed          bool
	)
	err = a.store.Update(ctx, func(tx store.Tx) error {
		g, err := tx.GetGame(gameID)
		if err != nil {
			return err
		}
		previousCategory = g.CategoryID

		changed, err = fn(tx, g)
		if err != nil {
			return err
		}
		out = g
		if !changed {
			return nil
		}
		g.UpdatedAt = a.now()
		return tx.SaveGame(g)
	})
	if err != nil {
		return nil, "", false, err
	}
	return out, previousCategory, changed, nil
}

// WithLocks runs fn while holding the lock of gameID and then the lock of
// userID. Empty IDs are skipped. Writes to review and user documents use
// it so their transactions never race a rescan of the same game or a
// stats update of the same user.
func (a *Aggregator) WithLocks(ctx context.Context, gameID, userID string, fn func() error) error {
	unlock, err := a.lockAll(ctx, lockKeys(gameID, userID)...)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// WithCategoryLock runs fn while holding the category's lock, serialized
// with its rollup.
func (a *Aggregator) WithCategoryLock(ctx context.Context, categoryID string, fn func() error) error {
	unlock, err := a.locks.Lock(ctx, categoryKey(categoryID))
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// lockAll acquires keys in order. Callers always pass game keys before
// user keys, which keeps acquisition acyclic.
func (a *Aggregator) lockAll(ctx context.Context, keys ...string) (func(), error) {
	unlocks := make([]func(), 0, len(keys))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, key := range keys {
		unlock, err := a.locks.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

func lockKeys(gameID, userID string) []string {
	keys := make([]string, 0, 2)
	if gameID != "" {
		keys = append(keys, gameKey(gameID))
	}
	if userID != "" {
		keys = append(keys, userKey(userID))
	}
	return keys
}

// RemoveGame deletes a game under its lock. cleanup runs first in the same
// transaction and removes dependent documents. The game's category is
// refreshed through GameStatsChanged.
func (a *Aggregator) RemoveGame(ctx context.Context, gameID string, cleanup func(tx store.Tx, g *models.Game) error) (*models.Game, error) {
	unlock, err := a.locks.Lock(ctx, gameKey(gameID))
	if err != nil {
		return nil, err
	}

	var removed *models.Game
	err = a.store.Update(ctx, func(tx store.Tx) error {
		g, err := tx.GetGame(gameID)
		if err != nil {
			return err
		}
		if cleanup != nil {
			if err := cleanup(tx, g); err != nil {
				return err
			}
		}
		removed = g
		return tx.DeleteGame(gameID)
	})
	unlock()
	if err != nil {
		return nil, err
	}

	a.publish(ctx, eventprocessor.NewGameStatsChanged(removed, eventprocessor.ReasonRemoved))
	return removed, nil
}

// publish sends event after a commit. A failed publish leaves derived
// state stale until the reconcile job runs, so it is logged and the write
// still succeeds.
func (a *Aggregator) publish(ctx context.Context, event eventprocessor.Event) {
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Warn().
			Err(err).
			Str("topic", event.Topic()).
			Str("event_id", event.ID()).
			Msg("Publishing event failed, derived state will be repaired by reconcile")
	}
}
