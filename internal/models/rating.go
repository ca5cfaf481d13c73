// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package models

import (
	"errors"
	"fmt"
	"math"
)

// Star bounds for a single review.
const (
	MinStars = 1
	MaxStars = 5
)

// Rating levels returned by RatingLevel.
const (
	RatingLevelExcellent = "excellent"
	RatingLevelVeryGood  = "very-good"
	RatingLevelGood      = "good"
	RatingLevelFair      = "fair"
	RatingLevelPoor      = "poor"
)

// ErrInvalidStars is returned when a star value is outside MinStars..MaxStars.
var ErrInvalidStars = errors.New("rating must be between 1 and 5")

// Distribution maps a star value to the number of reviews with that value.
// Buckets with no reviews are absent.
type Distribution map[int]int

// Total returns the number of reviews across all buckets.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Rating is the aggregated review score of a game.
type Rating struct {
	Average      float64      `json:"average"`
	Count        int          `json:"count"`
	Distribution Distribution `json:"distribution"`
}

// NewRating returns an empty rating.
func NewRating() Rating {
	return Rating{Distribution: Distribution{}}
}

// ValidStars reports whether stars is an acceptable review score.
func ValidStars(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}

// Record adds one review with the given star value: the bucket and the count
// are incremented and the average is rederived from the distribution.
func (r *Rating) Record(stars int) error {
	if !ValidStars(stars) {
		return fmt.Errorf("%w: got %d", ErrInvalidStars, stars)
	}
	if r.Distribution == nil {
		r.Distribution = Distribution{}
	}
	r.Distribution[stars]++
	r.Count++
	r.recalculate()
	return nil
}

// recalculate rederives Average from Distribution.
func (r *Rating) recalculate() {
	if r.Count == 0 {
		r.Average = 0
		return
	}
	weighted := 0
	for stars, n := range r.Distribution {
		weighted += stars * n
	}
	r.Average = float64(weighted) / float64(r.Count)
}

// Consistent reports whether the distribution, count and average agree.
func (r Rating) Consistent() bool {
	if r.Distribution.Total() != r.Count {
		return false
	}
	if r.Count == 0 {
		return r.Average == 0
	}
	weighted := 0
	for stars, n := range r.Distribution {
		if !ValidStars(stars) || n < 0 {
			return false
		}
		weighted += stars * n
	}
	return math.Abs(r.Average-float64(weighted)/float64(r.Count)) < 1e-9
}

// Level returns the rating level of the average.
func (r Rating) Level() string {
	return RatingLevel(r.Average)
}

// RatingLevel maps an average star value onto a named level.
func RatingLevel(average float64) string {
	switch {
	case average >= 4.5:
		return RatingLevelExcellent
	case average >= 4.0:
		return RatingLevelVeryGood
	case average >= 3.5:
		return RatingLevelGood
	case average >= 3.0:
		return RatingLevelFair
	default:
		return RatingLevelPoor
	}
}

// RatingFromStars folds Record over stars, starting from an empty rating.
func RatingFromStars(stars []int) (Rating, error) {
	r := NewRating()
	for _, s := range stars {
		if err := r.Record(s); err != nil {
			return NewRating(), err
		}
	}
	return r, nil
}

// Equal reports whether two ratings hold the same count, average and
// distribution. Empty buckets are ignored.
func (r Rating) Equal(o Rating) bool {
	if r.Count != o.Count || math.Abs(r.Average-o.Average) > 1e-9 {
		return false
	}
	for stars := MinStars; stars <= MaxStars; stars++ {
		if r.Distribution[stars] != o.Distribution[stars] {
			return false
		}
	}
	return true
}
