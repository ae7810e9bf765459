package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDBConfig struct {
	URI      string
	Database string
	PoolSize uint64
}

// Connect opens a client, pings the primary and returns the configured database.
func Connect(ctx context.Context, cfg MongoDBConfig) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.PoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.PoolSize)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	slog.Info("Successfully connected to MongoDB", "database", cfg.Database)
	return client, client.Database(cfg.Database), nil
}

// Disconnect closes the client, logging instead of failing on error.
func Disconnect(client *mongo.Client) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		slog.Error("Error disconnecting from MongoDB", "err", err)
	}
}
