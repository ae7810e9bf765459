package repository

import (
	"context"
	"errors"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"
)

// ErrSessionNotFound is returned when no quiz state exists for a session id,
// including when it has expired.
var ErrSessionNotFound = errors.New("quiz session not found")

// SessionStore persists one QuizSession per session id.
// Save overwrites unconditionally; concurrent writers race last-write-wins.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.QuizSession, error)
	Save(ctx context.Context, session *models.QuizSession) error
	Delete(ctx context.Context, id string) error
}
