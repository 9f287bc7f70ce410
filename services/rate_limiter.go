package services

import (
	"context"
	"time"
)

// RatingReader is the read side of the rating event log consulted by
// the rate limiter.
type RatingReader interface {
	CountForTargetSince(ctx context.Context, target, roomID string, since time.Time) (int64, error)
	HasRecentRating(ctx context.Context, rater, target, roomID string, after time.Time) (bool, error)
}

// RateLimiter decides whether a rating submission may proceed.
//
// A submission is denied only when BOTH hold: the target has already
// received maxPerDay ratings in the room since local midnight, AND the
// rater has rated this same target within the cooldown window. Either
// condition alone still allows the submission. The conjunction is
// deliberate: cooldown only kicks in once a target is saturated for
// the day.
type RateLimiter struct {
	ratings   RatingReader
	maxPerDay int64
	cooldown  time.Duration
}

func NewRateLimiter(ratings RatingReader, maxPerDay, cooldownHours int) *RateLimiter {
	return &RateLimiter{
		ratings:   ratings,
		maxPerDay: int64(maxPerDay),
		cooldown:  time.Duration(cooldownHours) * time.Hour,
	}
}

// Decide reports whether the submission is allowed. It is read-only:
// the caller's subsequent insert is not atomic with this check, so two
// concurrent submissions can both pass and push a target one rating
// past the cap. That race is tolerated; a per-day counter document
// updated with a conditional write would close it if ever needed.
func (rl *RateLimiter) Decide(ctx context.Context, rater, target, roomID string, now time.Time) (bool, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := rl.ratings.CountForTargetSince(ctx, target, roomID, startOfDay)
	if err != nil {
		return false, err
	}
	if count < rl.maxPerDay {
		return true, nil
	}

	recent, err := rl.ratings.HasRecentRating(ctx, rater, target, roomID, now.Add(-rl.cooldown))
	if err != nil {
		return false, err
	}
	return !recent, nil
}
