package store

import (
	"context"
	"errors"
	"fmt"

	"examhub/backend/models"
	"examhub/backend/session"

	"gorm.io/gorm"
)

// Catalog implements session.AssignmentSource and session.QuestionSource.
// Enum fields are validated on the way out of storage so an unknown stored
// value is an explicit decode failure, not a silent default.
type Catalog struct {
	DB *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{DB: db}
}

func (s *Catalog) GetAssignmentByID(ctx context.Context, id uint) (*models.TestAssignment, error) {
	var assignment models.TestAssignment
	if err := s.DB.WithContext(ctx).First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrAssignmentNotFound
		}
		return nil, err
	}
	if _, err := models.ParseAssignmentStatus(string(assignment.Status)); err != nil {
		return nil, fmt.Errorf("assignment %d: %w", id, err)
	}
	return &assignment, nil
}

func (s *Catalog) GetTestByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := s.DB.WithContext(ctx).First(&test, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrAssignmentNotFound
		}
		return nil, err
	}
	if _, err := models.ParseTestMode(string(test.Mode)); err != nil {
		return nil, fmt.Errorf("test %d: %w", id, err)
	}
	return &test, nil
}

func (s *Catalog) SetStatus(ctx context.Context, assignmentID uint, status models.AssignmentStatus) error {
	return s.DB.WithContext(ctx).Model(&models.TestAssignment{}).
		Where("id = ?", assignmentID).
		Update("status", status).Error
}

// GetTestQuestions resolves the attempt's question list. FIXED tests use the
// curated list in its authored order; RANDOM tests draw a server-side sample
// from the subject bounded by the configured count.
func (s *Catalog) GetTestQuestions(ctx context.Context, testID uint) ([]models.Question, error) {
	test, err := s.GetTestByID(ctx, testID)
	if err != nil {
		return nil, err
	}

	var questions []models.Question
	switch test.Mode {
	case models.ModeFixed:
		err = s.DB.WithContext(ctx).
			Joins("JOIN test_questions ON test_questions.question_id = questions.id").
			Where("test_questions.test_id = ? AND test_questions.deleted_at IS NULL", testID).
			Order("test_questions.position").
			Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
			Find(&questions).Error
	case models.ModeRandom:
		err = s.DB.WithContext(ctx).
			Where("subject_id = ?", test.SubjectID).
			Order("RANDOM()").
			Limit(test.QuestionCount).
			Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
			Find(&questions).Error
	}
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Catalog) GetQuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := s.DB.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrQuestionNotFound
		}
		return nil, err
	}
	if _, err := models.ParseQuestionType(string(question.Type)); err != nil {
		return nil, fmt.Errorf("question %d: %w", id, err)
	}
	return &question, nil
}
