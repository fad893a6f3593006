package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type AttemptMode string

const (
	ModePractice AttemptMode = "PRACTICE"
	ModeExam     AttemptMode = "EXAM"
)

func ParseAttemptMode(s string) (AttemptMode, error) {
	switch AttemptMode(s) {
	case ModePractice, ModeExam:
		return AttemptMode(s), nil
	}
	return "", fmt.Errorf("unknown attempt mode %q", s)
}

// TestAttempt is the mutable execution record of one run through a test.
// Exactly one attempt may exist per assignment; the unique index on
// AssignmentID makes concurrent duplicate starts a store-level rejection.
type TestAttempt struct {
	ID                   string `gorm:"type:uuid;primaryKey"`
	AssignmentID         uint   `gorm:"not null;uniqueIndex"`
	UserID               uint   `gorm:"not null;index"`
	StartedAt            time.Time
	CompletedAt          *time.Time
	Score                *float64
	Mode                 AttemptMode `gorm:"type:varchar(16);not null"`
	CurrentQuestionIndex int
	IsPaused             bool
	RemainingSeconds     *int // nil when the test has no timer
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Attached lazily at start/resume, never persisted with the attempt.
	Questions []Question `gorm:"-" json:"-"`

	Answers []UserAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

func (a *TestAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *TestAttempt) Completed() bool {
	return a.CompletedAt != nil
}

// UserAnswer holds one graded answer event. The (attempt, question) unique
// index gives replace-by-question upsert semantics a real constraint.
type UserAnswer struct {
	ID                string        `gorm:"type:uuid;primaryKey"`
	AttemptID         string        `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question"`
	QuestionID        uint          `gorm:"not null;uniqueIndex:idx_attempt_question"`
	SelectedAnswerIDs pq.Int64Array `gorm:"type:bigint[]"` // stored deduplicated and sorted
	IsCorrect         bool
	AnsweredAt        time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ua *UserAnswer) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == "" {
		ua.ID = uuid.NewString()
	}
	return nil
}
