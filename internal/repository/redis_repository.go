package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"

	redis_v9 "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "quiz:session:"

type RedisSessionRepo struct {
	client *redis_v9.Client
	ttl    time.Duration
}

func NewRedisSessionRepo(client *redis_v9.Client, ttl time.Duration) *RedisSessionRepo {
	return &RedisSessionRepo{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisSessionRepo) Get(ctx context.Context, id string) (*models.QuizSession, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis_v9.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error get session in cache: %w", err)
	}

	var session models.QuizSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("error decoding cached session %s: %w", id, err)
	}
	return &session, nil
}

func (r *RedisSessionRepo) Save(ctx context.Context, session *models.QuizSession) error {
	val, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error saving session to cache: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), val, r.ttl).Err(); err != nil {
		return fmt.Errorf("error saving session to cache: %w", err)
	}
	return nil
}

func (r *RedisSessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("error deleting session from cache: %w", err)
	}
	return nil
}
