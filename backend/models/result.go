package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestResult is the immutable audit record of an attempt's outcome, created
// exactly once at submission. The unique index on AttemptID rejects a second
// result for the same attempt even if the controller layer is bypassed.
type TestResult struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	AttemptID        string `gorm:"type:uuid;not null;uniqueIndex"`
	UserID           uint   `gorm:"not null;index"`
	TestID           uint   `gorm:"not null;index"`
	Score            float64
	TotalQuestions   int
	CorrectAnswers   int
	WrongAnswers     int // always total - correct, unanswered counts as wrong
	TimeSpentSeconds *int
	Mode             AttemptMode `gorm:"type:varchar(16)"`
	CompletedAt      time.Time
	IsPassed         bool
	CreatedAt        time.Time
}

func (r *TestResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
