package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/event"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/questionbank"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/repository"
)

type fakeSource struct {
	questions []models.Question
	err       error
	calls     []questionbank.Request
}

func (f *fakeSource) FetchQuestions(_ context.Context, req questionbank.Request) ([]models.Question, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Close() {}

type failingStore struct {
	repository.SessionStore
	saveErr error
}

func (f *failingStore) Save(ctx context.Context, s *models.QuizSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.SessionStore.Save(ctx, s)
}

func threeQuestions() []models.Question {
	return []models.Question{
		{Text: "What does CPU stand for?", CorrectAnswer: "Central Processing Unit",
			IncorrectAnswers: []string{"Central Process Unit", "Computer Personal Unit", "Central Processor Unit"}},
		{Text: "Capital of Australia?", CorrectAnswer: "Canberra",
			IncorrectAnswers: []string{"Sydney", "Melbourne", "Perth"}},
		{Text: "Year the Berlin Wall fell?", CorrectAnswer: "1989",
			IncorrectAnswers: []string{"1987", "1991", "1990"}},
	}
}

type fixture struct {
	svc       *QuizService
	source    *fakeSource
	store     *repository.MemorySessionRepo
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	source := &fakeSource{questions: threeQuestions()}
	store := repository.NewMemorySessionRepo(100, time.Hour)
	publisher := &recordingPublisher{}
	svc := NewQuizService(source, store, publisher)
	svc.Now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, source: source, store: store, publisher: publisher}
}

func assertInvariants(t *testing.T, s *models.QuizSession) {
	t.Helper()
	assert.GreaterOrEqual(t, s.CurrentIndex, 0)
	assert.LessOrEqual(t, s.CurrentIndex, len(s.Questions))
	assert.Len(t, s.AnswerLog, s.CurrentIndex)
	correct := 0
	for _, r := range s.AnswerLog {
		if r.IsCorrect {
			correct++
		}
	}
	assert.Equal(t, correct, s.Score)
}

func TestStartCreatesFreshSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)
	require.Equal(t, []questionbank.Request{{Amount: 3}}, f.source.calls)

	stored, err := f.store.Get(ctx, "sess1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentIndex)
	assert.Equal(t, 0, stored.Score)
	assert.Empty(t, stored.AnswerLog)
	assert.Equal(t, threeQuestions(), stored.Questions)
	assert.Equal(t, session.ID, stored.ID)
	assert.Equal(t, []string{event.QuizStarted}, f.publisher.events)
}

func TestStartOverwritesExistingSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, "sess1", "Central Processing Unit")
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)

	stored, err := f.store.Get(ctx, "sess1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentIndex)
	assert.Equal(t, 0, stored.Score)
}

func TestStartUpstreamFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, "sess1", "Central Processing Unit")
	require.NoError(t, err)

	f.source.err = &questionbank.UpstreamError{Op: "fetch", Err: errors.New("connection refused")}
	_, err = f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	var upstream *questionbank.UpstreamError
	require.ErrorAs(t, err, &upstream)

	stored, err := f.store.Get(ctx, "sess1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentIndex)
	assert.Equal(t, 1, stored.Score)

	_, err = f.svc.Start(ctx, "sess2", questionbank.Request{Amount: 3})
	require.ErrorAs(t, err, &upstream)
	_, err = f.store.Get(ctx, "sess2")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestStartRequiresSessionID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), "", questionbank.Request{Amount: 3})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.source.calls)
}

func TestStartStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.Store = &failingStore{SessionStore: f.store, saveErr: errors.New("redis down")}

	_, err := f.svc.Start(context.Background(), "sess1", questionbank.Request{Amount: 3})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPrecondition)
}

func TestAnswerScenarios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)

	// correct answer for question 0
	sub, err := f.svc.SubmitAnswer(ctx, "sess1", "Central Processing Unit")
	require.NoError(t, err)
	assert.True(t, sub.Record.IsCorrect)
	s, _ := f.store.Get(ctx, "sess1")
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, 1, s.Score)
	require.Len(t, s.AnswerLog, 1)
	assert.True(t, s.AnswerLog[0].IsCorrect)
	assertInvariants(t, s)

	// incorrect answer for question 1
	sub, err = f.svc.SubmitAnswer(ctx, "sess1", "Sydney")
	require.NoError(t, err)
	assert.False(t, sub.Record.IsCorrect)
	assert.Equal(t, "Canberra", sub.Record.CorrectAnswer)
	s, _ = f.store.Get(ctx, "sess1")
	assert.Equal(t, 2, s.CurrentIndex)
	assert.Equal(t, 1, s.Score)
	require.Len(t, s.AnswerLog, 2)
	assert.False(t, s.AnswerLog[1].IsCorrect)
	assertInvariants(t, s)

	// missing answer on the last question
	sub, err = f.svc.SubmitAnswer(ctx, "sess1", "")
	require.NoError(t, err)
	assert.False(t, sub.Record.IsCorrect)
	assert.True(t, sub.Completed())
	assert.Equal(t, 1, sub.Score)
	assert.Equal(t, 3, sub.Answered)
	s, _ = f.store.Get(ctx, "sess1")
	assert.Equal(t, 3, s.CurrentIndex)
	assert.True(t, s.Completed())
	assertInvariants(t, s)
	assert.Equal(t, threeQuestions(), s.Questions, "questions must not change during the quiz")

	results, err := f.svc.Results(ctx, "sess1")
	require.NoError(t, err)
	assert.Equal(t, 1, results.Score)
	assert.Equal(t, 3, results.Total)
	require.Len(t, results.AnswerLog, 3)
	assert.Equal(t, "What does CPU stand for?", results.AnswerLog[0].QuestionText)
	assert.Equal(t, "Capital of Australia?", results.AnswerLog[1].QuestionText)
	assert.Equal(t, "Year the Berlin Wall fell?", results.AnswerLog[2].QuestionText)

	assert.Equal(t, []string{
		event.QuizStarted,
		event.AnswerSubmitted,
		event.AnswerSubmitted,
		event.AnswerSubmitted,
		event.QuizCompleted,
	}, f.publisher.events)
}

func TestScoringIgnoresNearMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)

	for _, answer := range []string{"central processing unit", " Central Processing Unit"} {
		f.store.Save(ctx, models.NewQuizSession("sess1", threeQuestions(), time.Now()))
		sub, err := f.svc.SubmitAnswer(ctx, "sess1", answer)
		require.NoError(t, err)
		assert.False(t, sub.Record.IsCorrect, "answer %q", answer)
	}
}

func TestCurrentQuestionSameSetEveryCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Shuffle = RandomShuffle
	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)

	first, err := f.svc.CurrentQuestion(ctx, "sess1")
	require.NoError(t, err)
	second, err := f.svc.CurrentQuestion(ctx, "sess1")
	require.NoError(t, err)

	assert.Equal(t, first.Question.Text, second.Question.Text)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 3, first.Total)
	assert.ElementsMatch(t, first.Options, second.Options)
	assert.Contains(t, first.Options, "Central Processing Unit")
	assert.Len(t, first.Options, 4)

	s, _ := f.store.Get(ctx, "sess1")
	assert.Equal(t, 0, s.CurrentIndex, "reading a question does not advance")
}

func TestCurrentQuestionUsesShuffler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Shuffle = func(o []string) { sort.Strings(o) }
	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)

	state, err := f.svc.CurrentQuestion(ctx, "sess1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Central Process Unit", "Central Processing Unit", "Central Processor Unit", "Computer Personal Unit",
	}, state.Options)

	s, _ := f.store.Get(ctx, "sess1")
	assert.Equal(t, []string{"Central Process Unit", "Computer Personal Unit", "Central Processor Unit"},
		s.Questions[0].IncorrectAnswers, "shuffling must not touch stored questions")
}

func TestLastAnswerCompletesQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.svc.SubmitAnswer(ctx, "sess1", "x")
		require.NoError(t, err)
	}
	state, err := f.svc.CurrentQuestion(ctx, "sess1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.Index)

	_, err = f.svc.Results(ctx, "sess1")
	assert.ErrorIs(t, err, ErrQuizNotCompleted)

	_, err = f.svc.SubmitAnswer(ctx, "sess1", "1989")
	require.NoError(t, err)

	_, err = f.svc.CurrentQuestion(ctx, "sess1")
	assert.ErrorIs(t, err, ErrQuizCompleted)

	_, err = f.svc.SubmitAnswer(ctx, "sess1", "1989")
	assert.ErrorIs(t, err, ErrQuizCompleted)
	assert.ErrorIs(t, err, ErrPrecondition)

	s, _ := f.store.Get(ctx, "sess1")
	assert.Equal(t, 3, s.CurrentIndex, "a rejected submit must not change state")
	assert.Equal(t, 1, s.Score)
}

func TestOperationsWithoutSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CurrentQuestion(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.svc.SubmitAnswer(ctx, "nobody", "x")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.svc.Results(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.svc.Progress(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.store.Get(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound, "failed submit must not create a session")
}

func TestSubmitAnswerAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswerAt(ctx, "sess1", 1, "Canberra")
	assert.ErrorIs(t, err, ErrQuestionOutOfOrder)

	_, err = f.svc.SubmitAnswerAt(ctx, "sess1", -1, "Canberra")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	sub, err := f.svc.SubmitAnswerAt(ctx, "sess1", 0, "Central Processing Unit")
	require.NoError(t, err)
	assert.True(t, sub.Record.IsCorrect)

	progress, err := f.svc.Progress(ctx, "sess1")
	require.NoError(t, err)
	assert.False(t, progress.Completed)
	assert.Equal(t, 1, progress.Score)
	assert.Equal(t, 3, progress.Total)
}

func TestPublishFailureDoesNotFailOperations(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker unavailable")
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, "sess1", "Central Processing Unit")
	require.NoError(t, err)
}

func TestNewQuizServiceDefaultsPublisher(t *testing.T) {
	svc := NewQuizService(&fakeSource{questions: threeQuestions()}, repository.NewMemorySessionRepo(10, time.Hour), nil)
	_, err := svc.Start(context.Background(), "sess1", questionbank.Request{Amount: 3})
	require.NoError(t, err)
}
