package store

import (
	"context"

	"examhub/backend/models"
	"examhub/backend/scoring"

	"gorm.io/gorm"
)

// Results implements scoring.ResultStore and scoring.MetricsStore on GORM.
type Results struct {
	DB *gorm.DB
}

func NewResults(db *gorm.DB) *Results {
	return &Results{DB: db}
}

// Create persists the result. The unique index on attempt_id rejects a second
// result for the same attempt even when the controller layer is bypassed.
func (s *Results) Create(ctx context.Context, result *models.TestResult) error {
	if err := s.DB.WithContext(ctx).Create(result).Error; err != nil {
		if isUniqueViolation(err) {
			return scoring.ErrDuplicateResult
		}
		return err
	}
	return nil
}

func (s *Results) GetByAttemptID(ctx context.Context, attemptID string) (*models.TestResult, error) {
	var result models.TestResult
	if err := s.DB.WithContext(ctx).First(&result, "attempt_id = ?", attemptID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Results) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.TestResult, int64, error) {
	var total int64
	q := s.DB.WithContext(ctx).Model(&models.TestResult{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var results []models.TestResult
	err := q.Order("completed_at DESC").Limit(limit).Offset(offset).Find(&results).Error
	return results, total, err
}

// ListResultRows joins each result to its test's subject for the aggregate
// reports.
func (s *Results) ListResultRows(ctx context.Context) ([]scoring.ResultRow, error) {
	type joined struct {
		models.TestResult
		SubjectID uint
	}
	var rows []joined
	err := s.DB.WithContext(ctx).
		Table("test_results").
		Select("test_results.*, tests.subject_id AS subject_id").
		Joins("JOIN tests ON tests.id = test_results.test_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]scoring.ResultRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, scoring.ResultRow{Result: r.TestResult, SubjectID: r.SubjectID})
	}
	return out, nil
}

func (s *Results) CountTests(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Test{}).Count(&n).Error
	return n, err
}

func (s *Results) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (s *Results) CountAssignments(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.TestAssignment{}).Count(&n).Error
	return n, err
}

func (s *Results) CountCompletedAssignments(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.TestAssignment{}).
		Where("status = ?", models.AssignmentCompleted).Count(&n).Error
	return n, err
}
