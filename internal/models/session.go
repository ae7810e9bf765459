package models

import "time"

type AnswerRecord struct {
	QuestionText  string `bson:"question_text" json:"question"`
	UserAnswer    string `bson:"user_answer" json:"user_answer"`
	CorrectAnswer string `bson:"correct_answer" json:"correct_answer"`
	IsCorrect     bool   `bson:"is_correct" json:"is_correct"`
}

// QuizSession is the per-user quiz state kept in the session store.
// Questions are fixed at creation; only CurrentIndex, Score and AnswerLog move.
type QuizSession struct {
	ID           string         `bson:"_id" json:"id"`
	Questions    []Question     `bson:"questions" json:"questions"`
	CurrentIndex int            `bson:"current_index" json:"current_index"`
	Score        int            `bson:"score" json:"score"`
	AnswerLog    []AnswerRecord `bson:"answer_log" json:"answer_log"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updated_at"`
}

func NewQuizSession(id string, questions []Question, now time.Time) *QuizSession {
	return &QuizSession{
		ID:           id,
		Questions:    questions,
		CurrentIndex: 0,
		Score:        0,
		AnswerLog:    []AnswerRecord{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *QuizSession) Total() int {
	return len(s.Questions)
}

// Completed is derived from the position and is never stored.
func (s *QuizSession) Completed() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// Current returns the question at CurrentIndex. ok is false once the quiz is completed.
func (s *QuizSession) Current() (q Question, ok bool) {
	if s.CurrentIndex < 0 || s.Completed() {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Record appends the answer for the current question, bumps the score when
// correct and advances the position. Callers must check Completed first.
func (s *QuizSession) Record(answer string, now time.Time) AnswerRecord {
	q := s.Questions[s.CurrentIndex]
	record := AnswerRecord{
		QuestionText:  q.Text,
		UserAnswer:    answer,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     q.IsCorrect(answer),
	}
	if record.IsCorrect {
		s.Score++
	}
	s.AnswerLog = append(s.AnswerLog, record)
	s.CurrentIndex++
	s.UpdatedAt = now
	return record
}

func (s *QuizSession) Results() *Results {
	log := make([]AnswerRecord, len(s.AnswerLog))
	copy(log, s.AnswerLog)
	return &Results{
		Score:     s.Score,
		Total:     s.Total(),
		AnswerLog: log,
		Completed: s.Completed(),
	}
}

// Clone returns a deep copy, so in-process stores behave like serialising ones.
func (s *QuizSession) Clone() *QuizSession {
	c := *s
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
		c.Questions[i] = q
	}
	c.AnswerLog = append([]AnswerRecord{}, s.AnswerLog...)
	return &c
}
