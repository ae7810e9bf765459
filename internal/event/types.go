package event

type QuizStartedPayload struct {
	SessionID string `json:"session_id"`
	Total     int    `json:"total"`
}

type AnswerSubmittedPayload struct {
	SessionID      string `json:"session_id"`
	QuestionNumber int    `json:"question_number"`
	IsCorrect      bool   `json:"is_correct"`
	Score          int    `json:"score"`
}

type QuizCompletedPayload struct {
	SessionID string `json:"session_id"`
	Score     int    `json:"score"`
	Total     int    `json:"total"`
}
