// Package view maps quiz state into the data the templates and JSON API render.
// Upstream text may carry HTML entities; it is decoded here and escaped again
// by html/template on output.
package view

import (
	"html"
	"strings"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"
)

type Option struct {
	Label string `json:"label"` // decoded, for display
	Value string `json:"value"` // raw, posted back and compared verbatim
}

type QuizView struct {
	Question   string   `json:"question"`
	Options    []Option `json:"options"`
	Number     int      `json:"question_number"`
	Total      int      `json:"total"`
	Progress   int      `json:"progress"`
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	IsLast     bool     `json:"is_last"`
}

type AnswerView struct {
	Number        int    `json:"question_number"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

type ResultsView struct {
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Verdict    string       `json:"verdict"`
	Answers    []AnswerView `json:"answers"`
}

// ToQuizView builds the page for the question at 0-based index out of total.
func ToQuizView(q models.Question, options []string, index, total int) QuizView {
	opts := make([]Option, len(options))
	for i, o := range options {
		opts[i] = Option{Label: Decode(o), Value: o}
	}
	progress := 0
	if total > 0 {
		progress = (index + 1) * 100 / total
	}
	return QuizView{
		Question:   Decode(q.Text),
		Options:    opts,
		Number:     index + 1,
		Total:      total,
		Progress:   progress,
		Category:   Decode(q.Category),
		Difficulty: capitalize(q.Difficulty),
		IsLast:     index+1 == total,
	}
}

func ToResultsView(score, total int, answerLog []models.AnswerRecord) ResultsView {
	r := models.Results{Score: score, Total: total}
	pct := r.Percentage()

	answers := make([]AnswerView, len(answerLog))
	for i, a := range answerLog {
		answers[i] = AnswerView{
			Number:        i + 1,
			Question:      Decode(a.QuestionText),
			UserAnswer:    Decode(a.UserAnswer),
			CorrectAnswer: Decode(a.CorrectAnswer),
			IsCorrect:     a.IsCorrect,
		}
	}
	return ResultsView{
		Score:      score,
		Total:      total,
		Percentage: pct,
		Verdict:    verdict(pct),
		Answers:    answers,
	}
}

// Decode turns entity-encoded upstream text (&quot;, &#039;, ...) into plain text.
func Decode(s string) string {
	return html.UnescapeString(s)
}

func verdict(pct int) string {
	switch {
	case pct >= 80:
		return "Excellent!"
	case pct >= 60:
		return "Good job!"
	case pct >= 40:
		return "Not bad."
	default:
		return "Keep practising."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
