package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers      = "users"
	collectionCategories = "categories"
	collectionGenres     = "genres"
	collectionTitles     = "titles"
	collectionReviews    = "reviews"
	collectionComments   = "comments"
	collectionCounters   = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on to
// detect duplicates, plus the lookup indexes used by listings and cascades.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		collectionCategories: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		collectionGenres: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		collectionTitles: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "genres", Value: 1}}},
			{Keys: bson.D{{Key: "year", Value: 1}}},
		},
		collectionReviews: {
			{Keys: bson.D{{Key: "title_id", Value: 1}, {Key: "author_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
		},
		collectionComments: {
			{Keys: bson.D{{Key: "review_id", Value: 1}}},
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
		},
	}

	for name, indexes := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

func notFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}

// findOpts applies the skip/limit of a page and a sort.
func findOpts(skip int64, limit int, sort bson.D) *options.FindOptions {
	return options.Find().SetSort(sort).SetSkip(skip).SetLimit(int64(limit))
}
