// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package catalog

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tomtom215/gamecatalog/internal/aggregator"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/metrics"
	"github.com/tomtom215/gamecatalog/internal/models"
	"github.com/tomtom215/gamecatalog/internal/store"
)

// Review listing orders.
const (
	ReviewSortNewest     = "newest"
	ReviewSortHelpful    = "helpful"
	ReviewSortRatingHigh = "rating_high"
	ReviewSortRatingLow  = "rating_low"
)

// ReviewSorts lists the accepted review orders.
var ReviewSorts = []string{ReviewSortNewest, ReviewSortHelpful, ReviewSortRatingHigh, ReviewSortRatingLow}

// ReviewInput creates a review.
type ReviewInput struct {
	Rating  int
	Title   string
	Content string
}

// ReviewPatch edits the actor's own review. Nil fields are left unchanged.
type ReviewPatch struct {
	Rating  *int
	Title   *string
	Content *string
}

// ListGameReviews returns the active reviews of a game.
func (s *Service) ListGameReviews(ctx context.Context, gameID, order string, page PageRequest) ([]*models.Review, models.PaginationInfo, error) {
	var reviews []*models.Review
	err := s.store.View(ctx, func(tx store.Tx) error {
		g, err := resolveGame(tx, gameID)
		if err != nil {
			return err
		}
		all, err := tx.ReviewsForGame(g.ID)
		if err != nil {
			return err
		}
		for _, r := range all {
			if r.IsActive() {
				reviews = append(reviews, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, models.PaginationInfo{}, err
	}
	sortReviews(reviews, order)
	out, info := paginate(reviews, s.normalizePage(page))
	return out, info, nil
}

// UserReviews lists a user's reviews. Reviews that are not active are only
// shown to their author and moderators.
func (s *Service) UserReviews(ctx context.Context, actor Actor, userID string, page PageRequest) ([]*models.Review, models.PaginationInfo, error) {
	private := actor.UserID == userID || actor.IsModerator()
	var reviews []*models.Review
	err := s.store.View(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		var err error
		reviews, err = tx.FindReviews(func(r *models.Review) bool {
			if r.UserID != userID {
				return false
			}
			return r.IsActive() || (private && r.Status != models.ReviewStatusDeleted)
		})
		return err
	})
	if err != nil {
		return nil, models.PaginationInfo{}, err
	}
	sortReviews(reviews, ReviewSortNewest)
	out, info := paginate(reviews, s.normalizePage(page))
	return out, info, nil
}

func sortReviews(reviews []*models.Review, order string) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		switch order {
		case ReviewSortHelpful:
			if len(a.HelpfulVoters) != len(b.HelpfulVoters) {
				return len(a.HelpfulVoters) > len(b.HelpfulVoters)
			}
		case ReviewSortRatingHigh:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case ReviewSortRatingLow:
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// GetReview returns a review. Reviews that are not active are visible to
// their author and moderators only.
func (s *Service) GetReview(ctx context.Context, actor Actor, id string) (*models.Review, error) {
	var r *models.Review
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		r, err = tx.GetReview(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !canSeeReview(actor, r) {
		return nil, fmt.Errorf("review %s: %w", id, store.ErrNotFound)
	}
	return r, nil
}

func canSeeReview(actor Actor, r *models.Review) bool {
	switch {
	case r.IsActive():
		return true
	case r.Status == models.ReviewStatusDeleted:
		return actor.IsModerator()
	default:
		return actor.UserID == r.UserID || actor.IsModerator()
	}
}

// CreateReview stores the actor's review of a game. A user has at most one
// review per game; a previous review the user deleted is replaced.
func (s *Service) CreateReview(ctx context.Context, actor Actor, gameID string, in ReviewInput) (*models.Review, error) {
	if !models.ValidStars(in.Rating) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, in.Rating)
	}
	if err := s.checkContent(in.Content); err != nil {
		return nil, err
	}

	game, err := s.GetGame(ctx, gameID, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	r := &models.Review{
		ID:        uuid.NewString(),
		GameID:    game.ID,
		UserID:    actor.UserID,
		Rating:    in.Rating,
		Title:     in.Title,
		Content:   in.Content,
		Status:    models.ReviewStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.agg.WithLocks(ctx, game.ID, actor.UserID, func() error {
		return s.store.Update(ctx, func(tx store.Tx) error {
			g, err := tx.GetGame(game.ID)
			if err != nil {
				return err
			}
			if !g.IsActive() {
				return fmt.Errorf("%w: %s is %s", aggregator.ErrGameUnavailable, g.ID, g.Status)
			}
			u, err := tx.GetUser(actor.UserID)
			if err != nil {
				return err
			}
			if !u.IsActive {
				return ErrAccountDisabled
			}

			previous, err := tx.GetReviewByUserAndGame(actor.UserID, g.ID)
			switch {
			case err == nil && previous.Status == models.ReviewStatusDeleted:
				if err := tx.DeleteReview(previous.ID); err != nil {
					return err
				}
			case err == nil:
				return fmt.Errorf("%w: user %s already reviewed game %s", store.ErrDuplicate, actor.UserID, g.ID)
			case !isNotFound(err):
				return err
			}

			if err := tx.InsertReview(r); err != nil {
				return err
			}
			u.Stats.ReviewsPosted++
			u.UpdatedAt = now
			return tx.SaveUser(u)
		})
	})
	if err != nil {
		return nil, err
	}

	s.reviewCommitted(ctx, r, eventprocessor.ReviewCreated)
	return r, nil
}

// UpdateReview edits the actor's own review.
func (s *Service) UpdateReview(ctx context.Context, actor Actor, id string, p ReviewPatch) (*models.Review, error) {
	if p.Rating != nil && !models.ValidStars(*p.Rating) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, *p.Rating)
	}
	if p.Content != nil {
		if err := s.checkContent(*p.Content); err != nil {
			return nil, err
		}
	}
	return s.mutateReview(ctx, id, false, func(_ store.Tx, r *models.Review) (string, error) {
		if r.UserID != actor.UserID {
			return "", ErrForbidden
		}
		if r.Status == models.ReviewStatusDeleted {
			return "", ErrReviewNotEditable
		}
		if p.Rating != nil {
			r.Rating = *p.Rating
		}
		if p.Title != nil {
			r.Title = *p.Title
		}
		if p.Content != nil {
			r.Content = *p.Content
		}
		return eventprocessor.ReviewUpdated, nil
	})
}

// DeleteReview soft deletes a review. Authors delete their own reviews;
// moderators delete any.
func (s *Service) DeleteReview(ctx context.Context, actor Actor, id string) error {
	_, err := s.mutateReview(ctx, id, true, func(tx store.Tx, r *models.Review) (string, error) {
		if r.UserID != actor.UserID && !actor.IsModerator() {
			return "", ErrForbidden
		}
		if r.Status == models.ReviewStatusDeleted {
			return "", fmt.Errorf("review %s: %w", r.ID, store.ErrNotFound)
		}
		r.Status = models.ReviewStatusDeleted

		u, err := tx.GetUser(r.UserID)
		if isNotFound(err) {
			return eventprocessor.ReviewDeleted, nil
		}
		if err != nil {
			return "", err
		}
		if u.Stats.ReviewsPosted > 0 {
			u.Stats.ReviewsPosted--
		}
		u.UpdatedAt = s.now()
		if err := tx.SaveUser(u); err != nil {
			return "", err
		}
		return eventprocessor.ReviewDeleted, nil
	})
	return err
}

// ToggleHelpful adds or removes the actor's helpful vote and reports
// whether the vote is present afterwards.
func (s *Service) ToggleHelpful(ctx context.Context, actor Actor, id string) (*models.Review, bool, error) {
	var voted bool
	r, err := s.mutateReview(ctx, id, false, func(_ store.Tx, r *models.Review) (string, error) {
		if !r.IsActive() {
			return "", fmt.Errorf("review %s: %w", r.ID, store.ErrNotFound)
		}
		if r.UserID == actor.UserID {
			return "", ErrOwnReview
		}
		voted = r.ToggleHelpful(actor.UserID)
		return "", nil
	})
	if err != nil {
		return nil, false, err
	}
	metrics.RecordReviewWrite("helpful")
	return r, voted, nil
}

// ReportReview files the actor's report. Once the configured number of
// reports is reached the review is hidden and leaves the game's rating.
func (s *Service) ReportReview(ctx context.Context, actor Actor, id, reason string) (*models.Review, error) {
	r, err := s.mutateReview(ctx, id, false, func(_ store.Tx, r *models.Review) (string, error) {
		if r.Status == models.ReviewStatusDeleted {
			return "", fmt.Errorf("review %s: %w", r.ID, store.ErrNotFound)
		}
		if r.UserID == actor.UserID {
			return "", ErrOwnReview
		}
		if !r.AddReport(actor.UserID, reason, s.now()) {
			return "", ErrAlreadyReported
		}
		threshold := s.cfg.AutoHideThreshold
		if threshold > 0 && r.IsActive() && len(r.Reports) >= threshold {
			r.Status = models.ReviewStatusHidden
			s.logger.Info().
				Str("review_id", r.ID).
				Int("reports", len(r.Reports)).
				Msg("Review hidden after reports")
			return eventprocessor.ReviewModerated, nil
		}
		return "", nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordReviewWrite("report")
	return r, nil
}

// ReplyToReview sets the official reply. Moderators and the game's creator
// may reply.
func (s *Service) ReplyToReview(ctx context.Context, actor Actor, id, content string) (*models.Review, error) {
	if err := s.checkContent(content); err != nil {
		return nil, err
	}
	r, err := s.mutateReview(ctx, id, false, func(tx store.Tx, r *models.Review) (string, error) {
		if r.Status == models.ReviewStatusDeleted {
			return "", fmt.Errorf("review %s: %w", r.ID, store.ErrNotFound)
		}
		if !actor.IsModerator() {
			g, err := tx.GetGame(r.GameID)
			if err != nil {
				return "", err
			}
			if g.CreatedBy == "" || g.CreatedBy != actor.UserID {
				return "", ErrForbidden
			}
		}
		now := s.now()
		if r.Reply == nil {
			r.Reply = &models.Reply{CreatedAt: now}
		}
		r.Reply.UserID = actor.UserID
		r.Reply.Content = content
		r.Reply.UpdatedAt = now
		return "", nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordReviewWrite("reply")
	return r, nil
}

// SetReviewStatus hides or restores a review.
func (s *Service) SetReviewStatus(ctx context.Context, actor Actor, id, status string) (*models.Review, error) {
	if !actor.IsModerator() {
		return nil, ErrForbidden
	}
	if status != models.ReviewStatusActive && status != models.ReviewStatusHidden {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.mutateReview(ctx, id, false, func(_ store.Tx, r *models.Review) (string, error) {
		if r.Status == models.ReviewStatusDeleted {
			return "", fmt.Errorf("review %s: %w", r.ID, store.ErrNotFound)
		}
		if r.Status == status {
			return "", nil
		}
		r.Status = status
		return eventprocessor.ReviewModerated, nil
	})
}

// ReportedReviews lists reviews with reports that are not deleted, most
// reported first.
func (s *Service) ReportedReviews(ctx context.Context, page PageRequest) ([]*models.Review, models.PaginationInfo, error) {
	var reviews []*models.Review
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		reviews, err = tx.FindReviews(func(r *models.Review) bool {
			return len(r.Reports) > 0 && r.Status != models.ReviewStatusDeleted
		})
		return err
	})
	if err != nil {
		return nil, models.PaginationInfo{}, err
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		if len(reviews[i].Reports) != len(reviews[j].Reports) {
			return len(reviews[i].Reports) > len(reviews[j].Reports)
		}
		return reviews[i].UpdatedAt.After(reviews[j].UpdatedAt)
	})
	out, info := paginate(reviews, s.normalizePage(page))
	return out, info, nil
}

// reviewMutation changes r and returns the ReviewCommitted kind to publish,
// or "" when the game's rating cannot be affected.
type reviewMutation func(tx store.Tx, r *models.Review) (string, error)

// mutateReview runs fn and saves the review in one transaction under the
// game's lock, and the author's lock when lockAuthor is set.
func (s *Service) mutateReview(ctx context.Context, id string, lockAuthor bool, fn reviewMutation) (*models.Review, error) {
	current, err := s.loadReview(ctx, id)
	if err != nil {
		return nil, err
	}
	userID := ""
	if lockAuthor {
		userID = current.UserID
	}

	var (
		out  *models.Review
		kind string
	)
	err = s.agg.WithLocks(ctx, current.GameID, userID, func() error {
		return s.store.Update(ctx, func(tx store.Tx) error {
			r, err := tx.GetReview(id)
			if err != nil {
				return err
			}
			kind, err = fn(tx, r)
			if err != nil {
				return err
			}
			r.UpdatedAt = s.now()
			out = r
			return tx.SaveReview(r)
		})
	})
	if err != nil {
		return nil, err
	}

	if kind != "" {
		s.reviewCommitted(ctx, out, kind)
	}
	return out, nil
}

func (s *Service) loadReview(ctx context.Context, id string) (*models.Review, error) {
	var r *models.Review
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		r, err = tx.GetReview(id)
		return err
	})
	return r, err
}

func (s *Service) reviewCommitted(ctx context.Context, r *models.Review, kind string) {
	metrics.RecordReviewWrite(kind)
	s.publish(ctx, eventprocessor.NewReviewCommitted(r.ID, r.GameID, r.UserID, kind))
}

// checkContent enforces the configured maximum length in characters.
func (s *Service) checkContent(content string) error {
	if s.cfg.MaxContentLength > 0 && utf8.RuneCountInString(content) > s.cfg.MaxContentLength {
		return fmt.Errorf("%w: %d characters allowed", ErrContentTooLong, s.cfg.MaxContentLength)
	}
	return nil
}
