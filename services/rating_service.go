package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ratehub/models"
	"ratehub/structs"
)

var (
	ErrInvalidClaims    = errors.New("invalid rating claims")
	ErrRateLimited      = errors.New("already rated recently")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// PartialStatsError reports a stats update that failed after the rating
// event was already durably inserted. The event stays recorded; a retry
// of the whole submission would double-insert it.
type PartialStatsError struct {
	Rater  string
	Target string
	RoomID string
	Err    error
}

func (e *PartialStatsError) Error() string {
	return fmt.Sprintf("stats update failed after rating %s -> %s in room %s was recorded: %v",
		e.Rater, e.Target, e.RoomID, e.Err)
}

func (e *PartialStatsError) Unwrap() error { return e.Err }

// emojiScores is the fixed rating scale, best to worst. Symbols outside
// the table score 0 but still count.
var emojiScores = map[string]int{
	"🌕": 5,
	"🌖": 4,
	"🌗": 3,
	"🌘": 2,
	"🌑": 1,
}

// EmojiScore resolves a rating symbol to its numeric score.
func EmojiScore(emoji string) int {
	return emojiScores[emoji]
}

// RatingEventStore combines append and query access to the event log.
type RatingEventStore interface {
	RatingReader
	Insert(ctx context.Context, event models.RatingEvent) error
}

// StatsStore applies atomic counter increments and serves summary reads.
type StatsStore interface {
	IncrementGiven(ctx context.Context, clientID, roomID string) error
	IncrementReceived(ctx context.Context, clientID, roomID string, score int) error
	FindByClientIDs(ctx context.Context, clientIDs []string) ([]models.RatingStats, error)
}

// RatingService orchestrates rating submissions and summary queries
// over the injected stores.
type RatingService struct {
	ratings RatingEventStore
	stats   StatsStore
	limiter *RateLimiter
}

func NewRatingService(ratings RatingEventStore, stats StatsStore, limiter *RateLimiter) *RatingService {
	return &RatingService{
		ratings: ratings,
		stats:   stats,
		limiter: limiter,
	}
}

// Submit runs the full submission pipeline: claim validation, rate-limit
// check, event insert, stats update. On the accepted path exactly one
// event is inserted and two stats records are upserted. Identical
// concurrent submissions are not deduplicated here.
func (s *RatingService) Submit(ctx context.Context, claims *RatingClaims, now time.Time) error {
	if claims == nil || claims.ClientID == "" || claims.TargetClientID == "" ||
		claims.RoomID == "" || claims.Emoji == "" {
		return ErrInvalidClaims
	}

	allowed, err := s.limiter.Decide(ctx, claims.ClientID, claims.TargetClientID, claims.RoomID, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !allowed {
		return ErrRateLimited
	}

	event := models.RatingEvent{
		Rater:     claims.ClientID,
		Target:    claims.TargetClientID,
		RoomID:    claims.RoomID,
		Emoji:     claims.Emoji,
		Timestamp: now,
	}
	if err := s.ratings.Insert(ctx, event); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.UpdateStats(ctx, claims.ClientID, claims.TargetClientID, claims.RoomID, claims.Emoji); err != nil {
		return &PartialStatsError{
			Rater:  claims.ClientID,
			Target: claims.TargetClientID,
			RoomID: claims.RoomID,
			Err:    err,
		}
	}
	return nil
}

// UpdateStats applies the two independent counter upserts for an
// accepted rating: the rater's given counter, then the target's
// received counter and score sum. No transaction spans the two.
func (s *RatingService) UpdateStats(ctx context.Context, rater, target, roomID, emoji string) error {
	score := EmojiScore(emoji)

	if err := s.stats.IncrementGiven(ctx, rater, roomID); err != nil {
		return err
	}
	if err := s.stats.IncrementReceived(ctx, target, roomID, score); err != nil {
		return err
	}
	return nil
}

// Summarize returns aggregate counters for the requested clients. Ids
// with no stats record are absent from the result. Records are not
// filtered by room: a client with records in several rooms gets
// whichever document the cursor yields last.
func (s *RatingService) Summarize(ctx context.Context, clientIDs []string) (map[string]structs.ClientSummary, error) {
	records, err := s.stats.FindByClientIDs(ctx, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result := make(map[string]structs.ClientSummary, len(records))
	for _, rec := range records {
		summary := structs.ClientSummary{
			Given:    rec.RatingsGiven,
			Received: rec.RatingsReceived,
		}
		if rec.RatingsReceived > 0 {
			summary.Avg = math.Round(float64(rec.ScoreSum)/float64(rec.RatingsReceived)*100) / 100
		}
		result[rec.ClientID] = summary
	}
	return result, nil
}
