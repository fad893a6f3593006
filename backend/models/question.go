package models

import (
	"fmt"

	"gorm.io/gorm"
)

// QuestionType is a closed enum stored as text. Unknown values coming out of
// storage are a decode failure, never a silent default.
type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(s) {
	case SingleChoice, MultipleChoice:
		return QuestionType(s), nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

type Question struct {
	gorm.Model
	SubjectID   uint         `gorm:"not null;index"`
	Text        string       `gorm:"type:text;not null"`
	ImageURL    *string      // optional attachment reference
	Explanation *string      `gorm:"type:text"`
	Type        QuestionType `gorm:"type:varchar(32);not null"`
	Answers     []Answer     `gorm:"constraint:OnDelete:CASCADE"`
}

// Answer correctness is authored data, never derived.
type Answer struct {
	gorm.Model
	QuestionID uint   `gorm:"not null;index"`
	Text       string `gorm:"type:text;not null"`
	IsCorrect  bool
	Position   int
}

// CorrectAnswerIDs returns the authored correct-answer id set for grading.
func (q *Question) CorrectAnswerIDs() []int64 {
	var ids []int64
	for _, a := range q.Answers {
		if a.IsCorrect {
			ids = append(ids, int64(a.ID))
		}
	}
	return ids
}
