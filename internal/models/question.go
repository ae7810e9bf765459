package models

// Question is one entry of a fetched question batch. Text fields keep the
// upstream encoding; decoding for display happens in the view layer.
type Question struct {
	Text             string   `bson:"text" json:"question"`
	CorrectAnswer    string   `bson:"correct_answer" json:"correct_answer"`
	IncorrectAnswers []string `bson:"incorrect_answers" json:"incorrect_answers"`
	Category         string   `bson:"category" json:"category"`
	Difficulty       string   `bson:"difficulty" json:"difficulty"`
}

// Options returns the incorrect answers followed by the correct one.
// The returned slice is a copy and safe to shuffle.
func (q Question) Options() []string {
	options := make([]string, 0, len(q.IncorrectAnswers)+1)
	options = append(options, q.IncorrectAnswers...)
	options = append(options, q.CorrectAnswer)
	return options
}

// IsCorrect reports whether answer matches the correct answer exactly.
func (q Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}
