// Package questionbank fetches question batches from an Open Trivia DB compatible API.
package questionbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/metrics"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"
)

const (
	DefaultCount = 5
	maxBodyBytes = 1 << 20
)

var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// UpstreamError reports that no valid question batch could be obtained.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("question bank %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("question bank %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Request describes one batch to fetch. Category 0 and empty Difficulty mean "any".
type Request struct {
	Amount     int
	Category   int
	Difficulty string
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout: timeout,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

type apiResponse struct {
	ResponseCode *int       `json:"response_code"`
	Results      []apiEntry `json:"results"`
}

type apiEntry struct {
	Category         string    `json:"category"`
	Difficulty       string    `json:"difficulty"`
	Question         *string   `json:"question"`
	CorrectAnswer    *string   `json:"correct_answer"`
	IncorrectAnswers *[]string `json:"incorrect_answers"`
}

// FetchQuestions issues a single request for req.Amount multiple-choice questions.
// Every failure is returned as *UpstreamError; there is no retry.
func (c *Client) FetchQuestions(ctx context.Context, req Request) ([]models.Question, error) {
	start := time.Now()
	questions, err := c.fetch(ctx, req)
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.QuestionBankDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return questions, err
}

func (c *Client) fetch(ctx context.Context, req Request) ([]models.Question, error) {
	if req.Amount <= 0 {
		return nil, &UpstreamError{Op: "request", Err: fmt.Errorf("amount must be positive, got %d", req.Amount)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(req), nil)
	if err != nil {
		return nil, &UpstreamError{Op: "request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Op: "fetch", StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &UpstreamError{Op: "read", Err: err}
	}

	questions, err := parse(body)
	if err != nil {
		return nil, &UpstreamError{Op: "decode", Err: err}
	}
	return questions, nil
}

func (c *Client) endpoint(req Request) string {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(req.Amount))
	q.Set("type", "multiple")
	if req.Category > 0 {
		q.Set("category", strconv.Itoa(req.Category))
	}
	if d := strings.ToLower(req.Difficulty); difficulties[d] {
		q.Set("difficulty", d)
	}
	return c.BaseURL + "/api.php?" + q.Encode()
}

func parse(body []byte) ([]models.Question, error) {
	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if payload.ResponseCode != nil && *payload.ResponseCode != 0 {
		return nil, fmt.Errorf("response code %d", *payload.ResponseCode)
	}
	if len(payload.Results) == 0 {
		return nil, errors.New("empty question batch")
	}

	questions := make([]models.Question, 0, len(payload.Results))
	for i, e := range payload.Results {
		switch {
		case e.Question == nil:
			return nil, fmt.Errorf("entry %d: missing question", i)
		case e.CorrectAnswer == nil:
			return nil, fmt.Errorf("entry %d: missing correct_answer", i)
		case e.IncorrectAnswers == nil:
			return nil, fmt.Errorf("entry %d: missing incorrect_answers", i)
		}
		incorrect := make([]string, len(*e.IncorrectAnswers))
		copy(incorrect, *e.IncorrectAnswers)
		questions = append(questions, models.Question{
			Text:             *e.Question,
			CorrectAnswer:    *e.CorrectAnswer,
			IncorrectAnswers: incorrect,
			Category:         e.Category,
			Difficulty:       e.Difficulty,
		})
	}
	return questions, nil
}

// ParseQuestionCount coerces user input to a positive question count,
// falling back to fallback (or DefaultCount if that is not positive) when the
// input is absent or not a positive integer. No upper bound is applied.
func ParseQuestionCount(raw string, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultCount
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// ParseCategory returns 0 ("any category") for anything that is not a positive integer.
func ParseCategory(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
