package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ratingsCollection = "ratings"
	statsCollection   = "ratingStats"
)

// extractDBName parses the database name from the URI, defaulting to "ratingsDB"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "ratingsDB"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "ratingsDB"
}

// Connect establishes a connection to MongoDB using the provided URI,
// verifies it with a ping and ensures the ratings query index exists.
// The returned handle is meant to be passed into the store constructors;
// nothing in this package keeps global state.
func Connect(uri string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)
	database := client.Database(dbName)

	// The rate limiter queries by these fields on every submission
	index := mongo.IndexModel{
		Keys: bson.D{{Key: "rater", Value: 1}, {Key: "target", Value: 1}, {Key: "roomId", Value: 1}, {Key: "timestamp", Value: -1}},
	}
	if _, err := database.Collection(ratingsCollection).Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create ratings index: %w", err)
	}

	return database, nil
}
