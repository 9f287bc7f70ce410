package db

import (
	"context"
	"fmt"
	"time"

	"ratehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RatingStore provides access to the append-only rating event log.
type RatingStore struct {
	collection *mongo.Collection
}

func NewRatingStore(database *mongo.Database) *RatingStore {
	return &RatingStore{collection: database.Collection(ratingsCollection)}
}

// Insert appends a rating event to the log.
func (s *RatingStore) Insert(ctx context.Context, event models.RatingEvent) error {
	if _, err := s.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	return nil
}

// CountForTargetSince counts ratings the target has received in the room
// at or after the given instant.
func (s *RatingStore) CountForTargetSince(ctx context.Context, target, roomID string, since time.Time) (int64, error) {
	filter := bson.M{
		"target":    target,
		"roomId":    roomID,
		"timestamp": bson.M{"$gte": since},
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count ratings for target: %w", err)
	}
	return count, nil
}

// HasRecentRating reports whether the rater already rated the target in
// the room strictly after the given instant.
func (s *RatingStore) HasRecentRating(ctx context.Context, rater, target, roomID string, after time.Time) (bool, error) {
	filter := bson.M{
		"rater":     rater,
		"target":    target,
		"roomId":    roomID,
		"timestamp": bson.M{"$gt": after},
	}
	err := s.collection.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up recent rating: %w", err)
	}
	return true, nil
}
