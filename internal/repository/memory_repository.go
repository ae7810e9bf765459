package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"
)

// MemorySessionRepo keeps sessions in a size-bounded LRU whose entries expire
// after ttl. State is lost on restart; meant for local runs and tests.
type MemorySessionRepo struct {
	cache *expirable.LRU[string, *models.QuizSession]
}

func NewMemorySessionRepo(size int, ttl time.Duration) *MemorySessionRepo {
	return &MemorySessionRepo{
		cache: expirable.NewLRU[string, *models.QuizSession](size, nil, ttl),
	}
}

func (r *MemorySessionRepo) Get(_ context.Context, id string) (*models.QuizSession, error) {
	session, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (r *MemorySessionRepo) Save(_ context.Context, session *models.QuizSession) error {
	r.cache.Add(session.ID, session.Clone())
	return nil
}

func (r *MemorySessionRepo) Delete(_ context.Context, id string) error {
	r.cache.Remove(id)
	return nil
}

func (r *MemorySessionRepo) Len() int {
	return r.cache.Len()
}
