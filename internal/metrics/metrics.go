package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counter for quiz start attempts
	QuizStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_start_attempts_total",
			Help: "Total number of quiz start attempts",
		},
		[]string{"status"}, // status: success/upstream_error/store_error
	)

	// Counter for submitted answers
	AnswersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_submitted_total",
			Help: "Total number of submitted answers",
		},
		[]string{"correct"},
	)

	QuizzesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_completed_total",
			Help: "Total number of quizzes answered to the last question",
		},
	)

	// Histogram for question bank round trips
	QuestionBankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_question_bank_request_duration_seconds",
			Help:    "Time spent fetching a question batch from the question bank",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"}, // status: success/failure
	)

	PreconditionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_precondition_failures_total",
			Help: "Requests that needed quiz state which was absent or already completed",
		},
		[]string{"route", "reason"},
	)
)
