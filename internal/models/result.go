package models

// Results is the summary of a quiz attempt.
type Results struct {
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	AnswerLog []AnswerRecord `json:"answers"`
	Completed bool           `json:"completed"`
}

// Percentage returns the score as a whole percent of the total, 0 for an empty quiz.
func (r *Results) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return r.Score * 100 / r.Total
}
