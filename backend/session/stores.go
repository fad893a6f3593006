package session

import (
	"context"
	"time"

	"examhub/backend/models"
)

// AttemptStore is the persistent record of attempts. Implementations map
// missing rows to ErrAttemptNotFound and a duplicate attempt for one
// assignment to ErrDuplicateAttempt.
type AttemptStore interface {
	Create(ctx context.Context, attempt *models.TestAttempt) error
	GetByID(ctx context.Context, id string) (*models.TestAttempt, error)
	// PendingByUser returns the user's unpaused, not-yet-completed attempt,
	// or ErrAttemptNotFound if there is none.
	PendingByUser(ctx context.Context, userID uint) (*models.TestAttempt, error)
	SaveProgress(ctx context.Context, id string, questionIndex int) error
	SaveTimer(ctx context.Context, id string, remainingSeconds *int, paused bool) error
	Complete(ctx context.Context, id string, score float64, completedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// AnswerStore persists per-question answers with replace-by-question
// semantics: Upsert never produces a second row for the same
// (attempt, question) pair.
type AnswerStore interface {
	Upsert(ctx context.Context, answer *models.UserAnswer) error
	ListByAttempt(ctx context.Context, attemptID string) ([]models.UserAnswer, error)
}

// AssignmentSource is the authoring-side collaborator resolving assignments
// and their tests.
type AssignmentSource interface {
	GetAssignmentByID(ctx context.Context, id uint) (*models.TestAssignment, error)
	GetTestByID(ctx context.Context, id uint) (*models.Test, error)
	SetStatus(ctx context.Context, assignmentID uint, status models.AssignmentStatus) error
}

// QuestionSource resolves a test's question set (FIXED vs RANDOM internally)
// and individual questions with their answers attached.
type QuestionSource interface {
	GetTestQuestions(ctx context.Context, testID uint) ([]models.Question, error)
	GetQuestionByID(ctx context.Context, id uint) (*models.Question, error)
}

// ResultSink computes and persists the final result for a submitted attempt.
// Implemented by scoring.Aggregator.
type ResultSink interface {
	Finalize(ctx context.Context, attempt *models.TestAttempt, test *models.Test,
		answers []models.UserAnswer, completedAt time.Time) (*models.TestResult, error)
}
