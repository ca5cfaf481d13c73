// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package models

import (
	"sort"
	"time"
)

// Review status values. Only active reviews count towards a game's rating.
const (
	ReviewStatusActive  = "active"
	ReviewStatusHidden  = "hidden"
	ReviewStatusDeleted = "deleted"
)

// IsValidReviewStatus checks a review status value.
func IsValidReviewStatus(status string) bool {
	switch status {
	case ReviewStatusActive, ReviewStatusHidden, ReviewStatusDeleted:
		return true
	}
	return false
}

// Report is a user's complaint about a review.
type Report struct {
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Reply is the single official answer attached to a review.
type Reply struct {
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review is one user's review of one game.
type Review struct {
	ID            string    `json:"id"`
	GameID        string    `json:"game_id"`
	UserID        string    `json:"user_id"`
	Rating        int       `json:"rating"`
	Title         string    `json:"title,omitempty"`
	Content       string    `json:"content"`
	Status        string    `json:"status"`
	Reports       []Report  `json:"reports,omitempty"`
	HelpfulVoters []string  `json:"helpful_voters,omitempty"`
	Reply         *Reply    `json:"reply,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsActive reports whether the review counts towards its game's rating.
func (r *Review) IsActive() bool {
	return r.Status == ReviewStatusActive
}

// HasReportFrom reports whether userID already reported the review.
func (r *Review) HasReportFrom(userID string) bool {
	for _, rep := range r.Reports {
		if rep.UserID == userID {
			return true
		}
	}
	return false
}

// AddReport appends a report. It returns false when userID already reported.
func (r *Review) AddReport(userID, reason string, now time.Time) bool {
	if r.HasReportFrom(userID) {
		return false
	}
	r.Reports = append(r.Reports, Report{UserID: userID, Reason: reason, CreatedAt: now})
	return true
}

// VotedHelpful reports whether userID marked the review as helpful.
func (r *Review) VotedHelpful(userID string) bool {
	i := sort.SearchStrings(r.HelpfulVoters, userID)
	return i < len(r.HelpfulVoters) && r.HelpfulVoters[i] == userID
}

// ToggleHelpful adds or removes userID from the helpful voters.
// It returns true when the vote is present afterwards.
// HelpfulVoters is kept sorted so membership is a binary search.
func (r *Review) ToggleHelpful(userID string) bool {
	i := sort.SearchStrings(r.HelpfulVoters, userID)
	if i < len(r.HelpfulVoters) && r.HelpfulVoters[i] == userID {
		r.HelpfulVoters = append(r.HelpfulVoters[:i], r.HelpfulVoters[i+1:]...)
		return false
	}
	r.HelpfulVoters = append(r.HelpfulVoters, "")
	copy(r.HelpfulVoters[i+1:], r.HelpfulVoters[i:])
	r.HelpfulVoters[i] = userID
	return true
}

// ReviewView is the public representation of a review.
type ReviewView struct {
	ID           string    `json:"id"`
	GameID       string    `json:"game_id"`
	UserID       string    `json:"user_id"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	HelpfulCount int       `json:"helpful_count"`
	VotedHelpful bool      `json:"voted_helpful"`
	ReportCount  int       `json:"report_count,omitempty"`
	Reports      []Report  `json:"reports,omitempty"`
	Reply        *Reply    `json:"reply,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// View builds the representation seen by viewerID. Report details are only
// included for moderators.
func (r *Review) View(viewerID string, moderator bool) ReviewView {
	v := ReviewView{
		ID:           r.ID,
		GameID:       r.GameID,
		UserID:       r.UserID,
		Rating:       r.Rating,
		Title:        r.Title,
		Content:      r.Content,
		Status:       r.Status,
		HelpfulCount: len(r.HelpfulVoters),
		Reply:        r.Reply,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if viewerID != "" {
		v.VotedHelpful = r.VotedHelpful(viewerID)
	}
	if moderator {
		v.ReportCount = len(r.Reports)
		v.Reports = r.Reports
	}
	return v
}
