package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/questionbank"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/service"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/view"
)

// APIHandler exposes the quiz flow as JSON for script clients. Sessions are
// named explicitly in the request instead of by cookie.
type APIHandler struct {
	Quiz *QuizHandler
}

func NewAPIHandler(quiz *QuizHandler) *APIHandler {
	return &APIHandler{Quiz: quiz}
}

type apiQuestion struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
}

// StartQuiz creates a brand new session and returns all of its questions.
func (h *APIHandler) StartQuiz(c *gin.Context) {
	var req struct {
		NumQuestions int    `json:"num_questions"`
		Category     int    `json:"category"`
		Difficulty   string `json:"difficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	bankReq := h.Quiz.buildRequest(
		strconv.Itoa(req.NumQuestions),
		strconv.Itoa(req.Category),
		req.Difficulty,
	)
	sessionID := uuid.NewString()
	svc := h.Quiz.Service

	session, err := svc.Start(c.Request.Context(), sessionID, bankReq)
	if err != nil {
		var upstream *questionbank.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Failed to fetch questions",
				"details": err.Error(),
			})
			return
		}
		slog.Error("Failed to start quiz", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start quiz"})
		return
	}

	questions := make([]apiQuestion, len(session.Questions))
	for i, q := range session.Questions {
		options := q.Options()
		svc.Shuffle(options)
		questions[i] = apiQuestion{
			Question:   q.Text,
			Options:    options,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": sessionID,
		"total":      session.Total(),
		"questions":  questions,
	})
}

// SubmitAnswer scores the answer for question_id, which must be the session's
// current question.
func (h *APIHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		SessionID  string `json:"session_id" binding:"required"`
		QuestionID *int   `json:"question_id" binding:"required"`
		Answer     string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	sub, err := h.Quiz.Service.SubmitAnswerAt(c.Request.Context(), req.SessionID, *req.QuestionID, req.Answer)
	if err != nil {
		writeAPIError(c, err)
		return
	}

	resp := gin.H{
		"is_correct":     sub.Record.IsCorrect,
		"correct_answer": sub.Record.CorrectAnswer,
		"score":          sub.Score,
		"completed":      sub.Completed(),
		"next_question":  nil,
	}
	if !sub.Completed() {
		resp["next_question"] = sub.Answered
	}
	c.JSON(http.StatusOK, resp)
}

// Results reports the session's score so far; it does not require completion.
func (h *APIHandler) Results(c *gin.Context) {
	results, err := h.Quiz.Service.Progress(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeAPIError(c, err)
		return
	}
	summary := view.ToResultsView(results.Score, results.Total, results.AnswerLog)
	c.JSON(http.StatusOK, gin.H{
		"score":      summary.Score,
		"total":      summary.Total,
		"percentage": summary.Percentage,
		"verdict":    summary.Verdict,
		"completed":  results.Completed,
		"answers":    summary.Answers,
	})
}

func writeAPIError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, service.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrPrecondition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error("Quiz API request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
