package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TestMode selects how a test's question list is assembled: FIXED uses the
// curated ordered list, RANDOM draws QuestionCount questions from the subject.
type TestMode string

const (
	ModeFixed  TestMode = "FIXED"
	ModeRandom TestMode = "RANDOM"
)

func ParseTestMode(s string) (TestMode, error) {
	switch TestMode(s) {
	case ModeFixed, ModeRandom:
		return TestMode(s), nil
	}
	return "", fmt.Errorf("unknown test mode %q", s)
}

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "PENDING"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
)

func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch AssignmentStatus(s) {
	case AssignmentPending, AssignmentInProgress, AssignmentCompleted:
		return AssignmentStatus(s), nil
	}
	return "", fmt.Errorf("unknown assignment status %q", s)
}

type Test struct {
	gorm.Model
	Title            string   `gorm:"not null"`
	Description      string   `gorm:"type:text"`
	SubjectID        uint     `gorm:"not null;index"`
	Mode             TestMode `gorm:"type:varchar(16);not null"`
	PracticeAllowed  bool     `gorm:"default:true"`
	TimerEnabled     bool
	TimeLimitMinutes int
	QuestionCount    int // question draw size for RANDOM mode
	CreatorID        uint
	Questions        []TestQuestion `gorm:"constraint:OnDelete:CASCADE"`
}

// TestQuestion is the curated ordered question list for FIXED-mode tests.
type TestQuestion struct {
	gorm.Model
	TestID     uint `gorm:"not null;uniqueIndex:idx_test_question"`
	QuestionID uint `gorm:"not null;uniqueIndex:idx_test_question"`
	Position   int
}

// TestAssignment links a test to the user it was handed to.
// At most one assignment may exist per (user, test) pair.
type TestAssignment struct {
	gorm.Model
	TestID       uint             `gorm:"not null;uniqueIndex:idx_assignment_user_test"`
	UserID       uint             `gorm:"not null;uniqueIndex:idx_assignment_user_test"`
	Status       AssignmentStatus `gorm:"type:varchar(16);default:PENDING"`
	AssignedAt   time.Time
	Deadline     *time.Time
	AssignedByID uint
}
