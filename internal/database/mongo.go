package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string
	Database string

	ConnectAttempts int
	RetryDelay      time.Duration
}

// MongoDB wraps a MongoDB client bound to one database
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
	config MongoConfig
}

// NewMongoDB creates a new MongoDB instance
func NewMongoDB(cfg MongoConfig) *MongoDB {
	return &MongoDB{config: cfg}
}

// Connect opens the client and verifies the primary is reachable, retrying per MongoConfig
func (m *MongoDB) Connect(ctx context.Context) error {
	return retry(ctx, "mongodb", m.config.ConnectAttempts, m.config.RetryDelay, m.dial)
}

func (m *MongoDB) dial(ctx context.Context) error {
	client, err := mongo.Connect(options.Client().ApplyURI(m.config.URI))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("%w: ping failed: %v", ErrConnection, err)
	}

	m.client = client
	m.db = client.Database(m.config.Database)
	return nil
}

// Close disconnects the client
func (m *MongoDB) Close() error {
	if m.client != nil {
		return m.client.Disconnect(context.Background())
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return ErrConnection
	}
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Collection returns a handle to the named collection.
// It panics when called before Connect.
func (m *MongoDB) Collection(name string) *mongo.Collection {
	if m.db == nil {
		panic("database: MongoDB.Collection called before Connect")
	}
	return m.db.Collection(name)
}
