package service

import (
	"errors"
	"fmt"
)

// ErrPrecondition is wrapped by every error caused by calling an operation in
// a state that does not allow it.
var ErrPrecondition = errors.New("precondition violation")

var (
	ErrNoSession          = fmt.Errorf("%w: no active quiz", ErrPrecondition)
	ErrQuizCompleted      = fmt.Errorf("%w: quiz already completed", ErrPrecondition)
	ErrQuizNotCompleted   = fmt.Errorf("%w: quiz not completed yet", ErrPrecondition)
	ErrQuestionOutOfOrder = fmt.Errorf("%w: answer is not for the current question", ErrPrecondition)
)

// ValidationError reports input that no default can stand in for.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
