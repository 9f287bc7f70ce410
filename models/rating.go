package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingEvent is a single emoji rating of one participant by another.
// Events are append-only: once written they are never updated or deleted.
type RatingEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Rater     string             `bson:"rater" json:"rater"`
	Target    string             `bson:"target" json:"target"`
	RoomID    string             `bson:"roomId" json:"roomId"`
	Emoji     string             `bson:"emoji" json:"emoji"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// RatingStats holds the aggregate counters for one client in one room.
// scoreSum / ratingsReceived is the running mean of all scores the
// client has ever received in that room.
type RatingStats struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ClientID        string             `bson:"clientId" json:"clientId"`
	RoomID          string             `bson:"roomId" json:"roomId"`
	RatingsGiven    int64              `bson:"ratingsGiven" json:"ratingsGiven"`
	RatingsReceived int64              `bson:"ratingsReceived" json:"ratingsReceived"`
	ScoreSum        int64              `bson:"scoreSum" json:"scoreSum"`
}
