package store

import (
	"context"

	"examhub/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Answers implements session.AnswerStore on GORM. The upsert targets the
// (attempt_id, question_id) unique index so a repeated answer replaces the
// earlier row instead of duplicating it.
type Answers struct {
	DB *gorm.DB
}

func NewAnswers(db *gorm.DB) *Answers {
	return &Answers{DB: db}
}

func (s *Answers) Upsert(ctx context.Context, answer *models.UserAnswer) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_answer_ids", "is_correct", "answered_at", "updated_at",
		}),
	}).Create(answer).Error
}

func (s *Answers) ListByAttempt(ctx context.Context, attemptID string) ([]models.UserAnswer, error) {
	var answers []models.UserAnswer
	err := s.DB.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("answered_at").
		Find(&answers).Error
	return answers, err
}
