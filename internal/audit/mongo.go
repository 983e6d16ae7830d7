package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds the audit store settings
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Service    string
}

// MongoLogger writes audit entries to a MongoDB collection
type MongoLogger struct {
	client     *mongo.Client
	collection *mongo.Collection
	service    string
	now        func() time.Time
}

// NewMongoLogger connects to MongoDB and verifies the connection
func NewMongoLogger(ctx context.Context, cfg MongoConfig) (*MongoLogger, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoLogger{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		service:    cfg.Service,
		now:        time.Now,
	}, nil
}

// Record inserts the entry. It is not bound to the request lifetime so an
// order committed just before the client disconnects is still audited.
func (m *MongoLogger) Record(ctx context.Context, entry Entry) error {
	if entry.Service == "" {
		entry.Service = m.service
	}
	entry.CreatedAt = m.now().UTC()

	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := m.collection.InsertOne(insertCtx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Find returns the newest entries for an entity
func (m *MongoLogger) Find(ctx context.Context, entityID string, limit int64) ([]Entry, error) {
	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}

func (m *MongoLogger) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
