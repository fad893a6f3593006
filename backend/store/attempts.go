package store

import (
	"context"
	"errors"
	"time"

	"examhub/backend/models"
	"examhub/backend/session"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Attempts implements session.AttemptStore on GORM.
type Attempts struct {
	DB *gorm.DB
}

func NewAttempts(db *gorm.DB) *Attempts {
	return &Attempts{DB: db}
}

func (s *Attempts) Create(ctx context.Context, attempt *models.TestAttempt) error {
	if err := s.DB.WithContext(ctx).Create(attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return session.ErrDuplicateAttempt
		}
		return err
	}
	return nil
}

func (s *Attempts) GetByID(ctx context.Context, id string) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := s.DB.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrAttemptNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (s *Attempts) PendingByUser(ctx context.Context, userID uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NULL AND is_paused = false", userID).
		Order("started_at DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrAttemptNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (s *Attempts) SaveProgress(ctx context.Context, id string, questionIndex int) error {
	return s.DB.WithContext(ctx).Model(&models.TestAttempt{}).
		Where("id = ?", id).
		Update("current_question_index", questionIndex).Error
}

func (s *Attempts) SaveTimer(ctx context.Context, id string, remainingSeconds *int, paused bool) error {
	updates := map[string]interface{}{"is_paused": paused}
	if remainingSeconds != nil {
		updates["remaining_seconds"] = *remainingSeconds
	}
	return s.DB.WithContext(ctx).Model(&models.TestAttempt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (s *Attempts) Complete(ctx context.Context, id string, score float64, completedAt time.Time) error {
	return s.DB.WithContext(ctx).Model(&models.TestAttempt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":        score,
			"completed_at": completedAt,
			"is_paused":    false,
		}).Error
}

// Delete removes the attempt and, through the FK cascade, its answers.
func (s *Attempts) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Delete(&models.TestAttempt{}, "id = ?", id).Error
}
