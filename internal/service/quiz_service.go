package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/event"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/metrics"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/questionbank"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/repository"
)

type QuestionSource interface {
	FetchQuestions(ctx context.Context, req questionbank.Request) ([]models.Question, error)
}

// QuestionState is what the quiz page needs for the current position.
type QuestionState struct {
	Question models.Question
	Options  []string
	Index    int
	Total    int
}

// Submission is the outcome of one answer: the record plus where the quiz now stands.
type Submission struct {
	Record   models.AnswerRecord
	Score    int
	Answered int
	Total    int
}

func (s *Submission) Completed() bool {
	return s.Answered >= s.Total
}

// QuizService moves a session from not started through in progress to
// completed. Completion is always derived from the stored position.
type QuizService struct {
	Source    QuestionSource
	Store     repository.SessionStore
	Publisher event.Publisher
	Shuffle   Shuffler
	Now       func() time.Time
}

func NewQuizService(source QuestionSource, store repository.SessionStore, publisher event.Publisher) *QuizService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &QuizService{
		Source:    source,
		Store:     store,
		Publisher: publisher,
		Shuffle:   RandomShuffle,
		Now:       time.Now,
	}
}

// Start fetches a new batch and replaces whatever quiz sessionID had.
// On an upstream failure the existing session is left as it was.
func (s *QuizService) Start(ctx context.Context, sessionID string, req questionbank.Request) (*models.QuizSession, error) {
	if sessionID == "" {
		return nil, &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}

	questions, err := s.Source.FetchQuestions(ctx, req)
	if err != nil {
		metrics.QuizStarts.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	session := models.NewQuizSession(sessionID, questions, s.Now())
	if err := s.Store.Save(ctx, session); err != nil {
		metrics.QuizStarts.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to save new quiz session: %w", err)
	}
	metrics.QuizStarts.WithLabelValues("success").Inc()

	s.publish(ctx, event.QuizStarted, event.QuizStartedPayload{
		SessionID: sessionID,
		Total:     session.Total(),
	})
	return session, nil
}

// CurrentQuestion returns the question at the current position with a freshly
// shuffled option order. Two calls at the same position may order options differently.
func (s *QuizService) CurrentQuestion(ctx context.Context, sessionID string) (*QuestionState, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	q, ok := session.Current()
	if !ok {
		return nil, ErrQuizCompleted
	}
	return &QuestionState{
		Question: q,
		Options:  shuffledOptions(q.Options(), s.Shuffle),
		Index:    session.CurrentIndex,
		Total:    session.Total(),
	}, nil
}

// SubmitAnswer scores answer against the current question by exact text match
// and advances the session. A missing answer is simply an empty, wrong one.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*Submission, error) {
	return s.submit(ctx, sessionID, -1, answer)
}

// SubmitAnswerAt is SubmitAnswer for clients that name the question they are
// answering; index must be the current position.
func (s *QuizService) SubmitAnswerAt(ctx context.Context, sessionID string, index int, answer string) (*Submission, error) {
	if index < 0 {
		return nil, &ValidationError{Field: "question_id", Reason: "must not be negative"}
	}
	return s.submit(ctx, sessionID, index, answer)
}

func (s *QuizService) submit(ctx context.Context, sessionID string, index int, answer string) (*Submission, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, ErrQuizCompleted
	}
	if index >= 0 && index != session.CurrentIndex {
		return nil, fmt.Errorf("%w: got %d, current is %d", ErrQuestionOutOfOrder, index, session.CurrentIndex)
	}

	number := session.CurrentIndex + 1
	record := session.Record(answer, s.Now())
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	metrics.AnswersSubmitted.WithLabelValues(strconv.FormatBool(record.IsCorrect)).Inc()
	s.publish(ctx, event.AnswerSubmitted, event.AnswerSubmittedPayload{
		SessionID:      sessionID,
		QuestionNumber: number,
		IsCorrect:      record.IsCorrect,
		Score:          session.Score,
	})
	if session.Completed() {
		metrics.QuizzesCompleted.Inc()
		s.publish(ctx, event.QuizCompleted, event.QuizCompletedPayload{
			SessionID: sessionID,
			Score:     session.Score,
			Total:     session.Total(),
		})
	}
	return &Submission{
		Record:   record,
		Score:    session.Score,
		Answered: session.CurrentIndex,
		Total:    session.Total(),
	}, nil
}

// Results returns the summary of a completed quiz; ErrQuizNotCompleted otherwise.
func (s *QuizService) Results(ctx context.Context, sessionID string) (*models.Results, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Completed() {
		return nil, ErrQuizNotCompleted
	}
	return session.Results(), nil
}

// Progress returns the results so far without requiring completion.
func (s *QuizService) Progress(ctx context.Context, sessionID string) (*models.Results, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Results(), nil
}

func (s *QuizService) Session(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	return s.load(ctx, sessionID)
}

func (s *QuizService) load(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	session, err := s.Store.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz session: %w", err)
	}
	return session, nil
}

func (s *QuizService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.Publisher.Publish(ctx, eventType, payload); err != nil {
		slog.Warn("Failed to publish event", "type", eventType, "err", err)
	}
}
