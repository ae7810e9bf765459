package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/metrics"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/middleware"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/questionbank"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/service"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/view"
)

// Category is one entry of the home page category picker.
type Category struct {
	ID   int
	Name string
}

// Categories lists the Open Trivia DB categories offered on the home page.
var Categories = []Category{
	{ID: 9, Name: "General Knowledge"},
	{ID: 10, Name: "Books"},
	{ID: 11, Name: "Film"},
	{ID: 12, Name: "Music"},
	{ID: 17, Name: "Science & Nature"},
	{ID: 18, Name: "Computers"},
	{ID: 19, Name: "Mathematics"},
	{ID: 21, Name: "Sports"},
	{ID: 22, Name: "Geography"},
	{ID: 23, Name: "History"},
	{ID: 27, Name: "Animals"},
}

var questionCounts = []int{5, 10, 15, 20}

// QuizHandler serves the HTML pages of the quiz flow.
type QuizHandler struct {
	Service          *service.QuizService
	DefaultQuestions int
	MaxQuestions     int
}

func NewQuizHandler(s *service.QuizService, defaultQuestions, maxQuestions int) *QuizHandler {
	return &QuizHandler{
		Service:          s,
		DefaultQuestions: defaultQuestions,
		MaxQuestions:     maxQuestions,
	}
}

// Home renders the start form. It never touches quiz state.
func (h *QuizHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Counts":     h.counts(),
		"Default":    h.DefaultQuestions,
		"Categories": Categories,
	})
}

// Start fetches a new batch for the caller's session, discarding any quiz in
// progress, and sends them to the first question.
func (h *QuizHandler) Start(c *gin.Context) {
	req := h.buildRequest(
		c.PostForm("num_questions"),
		c.PostForm("category"),
		c.PostForm("difficulty"),
	)

	_, err := h.Service.Start(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		var upstream *questionbank.UpstreamError
		if errors.As(err, &upstream) {
			slog.Warn("Question bank unavailable", "err", err)
			h.renderError(c, http.StatusBadGateway, "Could not load questions",
				"The question service is unavailable right now. Please try again in a moment.")
			return
		}
		slog.Error("Failed to start quiz", "err", err)
		h.renderError(c, http.StatusInternalServerError, "Something went wrong",
			"The quiz could not be started.")
		return
	}

	c.Redirect(http.StatusFound, "/quiz")
}

// Quiz shows the current question with freshly shuffled options.
func (h *QuizHandler) Quiz(c *gin.Context) {
	state, err := h.Service.CurrentQuestion(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.handlePrecondition(c, "quiz", err)
		return
	}
	c.HTML(http.StatusOK, "quiz.html", view.ToQuizView(state.Question, state.Options, state.Index, state.Total))
}

// Submit records the posted answer for the current question. A missing answer
// field counts as an incorrect, empty answer.
func (h *QuizHandler) Submit(c *gin.Context) {
	_, err := h.Service.SubmitAnswer(c.Request.Context(), middleware.SessionID(c), c.PostForm("answer"))
	if err != nil {
		h.handlePrecondition(c, "submit", err)
		return
	}
	c.Redirect(http.StatusFound, "/quiz")
}

// Results shows the score summary of a completed quiz.
func (h *QuizHandler) Results(c *gin.Context) {
	results, err := h.Service.Results(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.handlePrecondition(c, "results", err)
		return
	}
	c.HTML(http.StatusOK, "results.html", view.ToResultsView(results.Score, results.Total, results.AnswerLog))
}

// handlePrecondition turns state errors into redirects towards the page that
// fits the caller's actual state.
func (h *QuizHandler) handlePrecondition(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		metrics.PreconditionFailures.WithLabelValues(route, "no_session").Inc()
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, service.ErrQuizCompleted):
		metrics.PreconditionFailures.WithLabelValues(route, "completed").Inc()
		c.Redirect(http.StatusFound, "/results")
	case errors.Is(err, service.ErrQuizNotCompleted):
		metrics.PreconditionFailures.WithLabelValues(route, "in_progress").Inc()
		c.Redirect(http.StatusFound, "/quiz")
	default:
		slog.Error("Quiz request failed", "route", route, "err", err)
		h.renderError(c, http.StatusInternalServerError, "Something went wrong",
			"Your quiz could not be loaded. Please start again.")
	}
}

func (h *QuizHandler) renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   title,
		"Message": message,
	})
}

func (h *QuizHandler) buildRequest(rawCount, rawCategory, rawDifficulty string) questionbank.Request {
	count := questionbank.ParseQuestionCount(rawCount, h.DefaultQuestions)
	if h.MaxQuestions > 0 && count > h.MaxQuestions {
		count = h.MaxQuestions
	}
	return questionbank.Request{
		Amount:     count,
		Category:   questionbank.ParseCategory(rawCategory),
		Difficulty: normalizeDifficulty(rawDifficulty),
	}
}

// counts is the choice list for the start form, always including the default.
func (h *QuizHandler) counts() []int {
	out := make([]int, 0, len(questionCounts)+1)
	seen := false
	for _, n := range questionCounts {
		if h.MaxQuestions > 0 && n > h.MaxQuestions {
			continue
		}
		if !seen && h.DefaultQuestions < n {
			out = append(out, h.DefaultQuestions)
			seen = true
		}
		if n == h.DefaultQuestions {
			seen = true
		}
		out = append(out, n)
	}
	if !seen {
		out = append(out, h.DefaultQuestions)
	}
	return out
}

func normalizeDifficulty(raw string) string {
	switch d := strings.ToLower(strings.TrimSpace(raw)); d {
	case "easy", "medium", "hard":
		return d
	default:
		return ""
	}
}
