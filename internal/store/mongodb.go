package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"workflow/internal/constants"
)

type mongoRecord struct {
	UserID    string    `bson:"user_id"`
	MetaKey   string    `bson:"meta_key"`
	Value     string    `bson:"value"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoBackend stores one document per record, read back by created_at and
// then _id.
type MongoBackend struct {
	collection *mongo.Collection
	metaKey    string
}

func NewMongoBackend(db *mongo.Database, collection, metaKey string) *MongoBackend {
	if collection == "" {
		collection = constants.DefaultNotificationCollection
	}
	if metaKey == "" {
		metaKey = constants.NotificationMetaKey
	}
	return &MongoBackend{collection: db.Collection(collection), metaKey: metaKey}
}

func (m *MongoBackend) Name() string {
	return constants.StoreBackendMongoDB
}

func (m *MongoBackend) Append(ctx context.Context, userID string, value []byte) error {
	record := mongoRecord{
		UserID:    userID,
		MetaKey:   m.metaKey,
		Value:     string(value),
		CreatedAt: time.Now().UTC(),
	}

	if _, err := m.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (m *MongoBackend) Values(ctx context.Context, userID string) ([][]byte, error) {
	filter := bson.M{"user_id": userID, "meta_key": m.metaKey}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var records []mongoRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	out := make([][]byte, len(records))
	for i, r := range records {
		out[i] = []byte(r.Value)
	}
	return out, nil
}
