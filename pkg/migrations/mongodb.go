package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"workflow/internal/constants"
)

// EnsureMongoCollection creates the indexes the notification store reads
// through. The collection itself appears on first insert.
func EnsureMongoCollection(ctx context.Context, db *mongo.Database, name string) error {
	if name == "" {
		name = constants.DefaultNotificationCollection
	}
	collection := db.Collection(name)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "meta_key", Value: 1},
				{Key: "created_at", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_user_notifications_user_key_created"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
