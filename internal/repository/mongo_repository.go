package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ttlIndexName = "updated_at_ttl"

type MongoSessionRepo struct {
	Col *mongo.Collection
	ttl time.Duration
}

func NewMongoSessionRepo(db *mongo.Database, ttl time.Duration) *MongoSessionRepo {
	return &MongoSessionRepo{Col: db.Collection("quiz_sessions"), ttl: ttl}
}

// EnsureIndexes creates the TTL index that expires idle sessions, or updates
// its expiry in place when the configured TTL has changed.
func (r *MongoSessionRepo) EnsureIndexes(ctx context.Context) error {
	expire := int32(r.ttl.Seconds())

	current, found, err := r.ttlIndexExpiry(ctx)
	if err != nil {
		return err
	}
	if !found {
		_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(expire).SetName(ttlIndexName),
		})
		if err != nil {
			return fmt.Errorf("failed to create session ttl index: %w", err)
		}
		return nil
	}
	if current == expire {
		return nil
	}

	cmd := bson.D{
		{Key: "collMod", Value: r.Col.Name()},
		{Key: "index", Value: bson.D{
			{Key: "name", Value: ttlIndexName},
			{Key: "expireAfterSeconds", Value: expire},
		}},
	}
	if err := r.Col.Database().RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("failed to update session ttl index from %ds to %ds: %w", current, expire, err)
	}
	return nil
}

func (r *MongoSessionRepo) ttlIndexExpiry(ctx context.Context) (int32, bool, error) {
	specs, err := r.Col.Indexes().ListSpecifications(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to list session indexes: %w", err)
	}
	for _, spec := range specs {
		if spec.Name != ttlIndexName {
			continue
		}
		if spec.ExpireAfterSeconds == nil {
			return 0, true, nil
		}
		return *spec.ExpireAfterSeconds, true, nil
	}
	return 0, false, nil
}

func (r *MongoSessionRepo) Get(ctx context.Context, id string) (*models.QuizSession, error) {
	var session models.QuizSession
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading session %s from mongo: %w", id, err)
	}
	// The TTL monitor runs periodically, so an expired document can still be read.
	if r.ttl > 0 && time.Since(session.UpdatedAt) > r.ttl {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (r *MongoSessionRepo) Save(ctx context.Context, session *models.QuizSession) error {
	doc := *session
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, &doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving session %s to mongo: %w", doc.ID, err)
	}
	return nil
}

func (r *MongoSessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.Col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("error deleting session %s from mongo: %w", id, err)
	}
	return nil
}
