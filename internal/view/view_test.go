package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/models"
)

func TestToQuizViewDecodesForDisplayOnly(t *testing.T) {
	q := models.Question{
		Text:          "Who wrote &quot;Hamlet&quot;?",
		CorrectAnswer: "William Shakespeare",
		Category:      "Entertainment: Books &amp; Plays",
		Difficulty:    "medium",
	}
	options := []string{"Christopher Marlowe", "Ben Jonson", "Jane Austen&#039;s aunt", "William Shakespeare"}

	v := ToQuizView(q, options, 1, 4)

	assert.Equal(t, `Who wrote "Hamlet"?`, v.Question)
	assert.Equal(t, "Entertainment: Books & Plays", v.Category)
	assert.Equal(t, "Medium", v.Difficulty)
	assert.Equal(t, 2, v.Number)
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, 50, v.Progress)
	assert.False(t, v.IsLast)

	require.Len(t, v.Options, 4)
	assert.Equal(t, "Jane Austen's aunt", v.Options[2].Label)
	assert.Equal(t, "Jane Austen&#039;s aunt", v.Options[2].Value, "posted value must stay raw for exact matching")
	for i, o := range options {
		assert.Equal(t, o, v.Options[i].Value, "option order is preserved")
	}
}

func TestToQuizViewLastQuestion(t *testing.T) {
	v := ToQuizView(models.Question{Text: "q"}, []string{"a", "b"}, 2, 3)
	assert.True(t, v.IsLast)
	assert.Equal(t, 100, v.Progress)
	assert.Equal(t, "", v.Difficulty)
}

func TestToResultsView(t *testing.T) {
	log := []models.AnswerRecord{
		{QuestionText: "Q &amp; A?", UserAnswer: "yes", CorrectAnswer: "yes", IsCorrect: true},
		{QuestionText: "Second", UserAnswer: "", CorrectAnswer: "&lt;b&gt;", IsCorrect: false},
	}

	v := ToResultsView(1, 2, log)
	assert.Equal(t, 1, v.Score)
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, 50, v.Percentage)
	assert.Equal(t, "Not bad.", v.Verdict)
	require.Len(t, v.Answers, 2)
	assert.Equal(t, 1, v.Answers[0].Number)
	assert.Equal(t, "Q & A?", v.Answers[0].Question)
	assert.Equal(t, "<b>", v.Answers[1].CorrectAnswer)
	assert.False(t, v.Answers[1].IsCorrect)
}

func TestVerdictBuckets(t *testing.T) {
	testCases := []struct {
		pct  int
		want string
	}{
		{100, "Excellent!"},
		{80, "Excellent!"},
		{79, "Good job!"},
		{60, "Good job!"},
		{40, "Not bad."},
		{39, "Keep practising."},
		{0, "Keep practising."},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, verdict(tc.pct), "pct %d", tc.pct)
	}
}

func TestToResultsViewEmpty(t *testing.T) {
	v := ToResultsView(0, 0, nil)
	assert.Equal(t, 0, v.Percentage)
	assert.Empty(t, v.Answers)
}
