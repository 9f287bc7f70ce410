package db

import (
	"context"
	"fmt"

	"ratehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatsStore provides access to the per-(client, room) aggregate counters.
// All mutations go through server-side $inc upserts so concurrent updates
// to the same record never lose an increment.
type StatsStore struct {
	collection *mongo.Collection
}

func NewStatsStore(database *mongo.Database) *StatsStore {
	return &StatsStore{collection: database.Collection(statsCollection)}
}

// IncrementGiven bumps the client's given counter, creating the record
// on first touch.
func (s *StatsStore) IncrementGiven(ctx context.Context, clientID, roomID string) error {
	filter := bson.M{"clientId": clientID, "roomId": roomID}
	update := bson.M{"$inc": bson.M{"ratingsGiven": 1}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to update rater stats: %w", err)
	}
	return nil
}

// IncrementReceived bumps the client's received counter and score sum,
// creating the record on first touch.
func (s *StatsStore) IncrementReceived(ctx context.Context, clientID, roomID string, score int) error {
	filter := bson.M{"clientId": clientID, "roomId": roomID}
	update := bson.M{"$inc": bson.M{"ratingsReceived": 1, "scoreSum": score}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to update target stats: %w", err)
	}
	return nil
}

// FindByClientIDs returns every stats record whose clientId is in the
// given set, across all rooms.
func (s *StatsStore) FindByClientIDs(ctx context.Context, clientIDs []string) ([]models.RatingStats, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"clientId": bson.M{"$in": clientIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.RatingStats
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return records, nil
}
