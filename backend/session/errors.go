package session

import "errors"

// Expected failure conditions are sentinel errors, not panics or HTTP codes.
// Stores and sources wrap these so callers can match with errors.Is.
var (
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrNoQuestionsAvailable = errors.New("test resolved to zero questions")
	ErrEmptySelection       = errors.New("answer selection is empty")
	ErrPracticeNotAllowed   = errors.New("practice mode is not allowed for this test")
	ErrNotInProgress        = errors.New("attempt is not in progress")
	ErrAttemptActive        = errors.New("another attempt is already in progress")
	ErrDuplicateAttempt     = errors.New("attempt already exists for assignment")
	ErrAttemptCreation      = errors.New("could not create attempt")
)
