package scoring

import (
	"context"
	"errors"
	"sort"
	"time"

	"examhub/backend/models"

	"go.uber.org/zap"
)

// PassThreshold is the fixed platform-wide passing score.
const PassThreshold = 50.0

// ErrDuplicateResult is returned by result stores when a result already
// exists for the attempt. One result per attempt is a storage constraint, not
// a controller convention.
var ErrDuplicateResult = errors.New("result already exists for attempt")

// ResultStore persists TestResults and rejects a second result for the same
// attempt id with ErrDuplicateResult.
type ResultStore interface {
	Create(ctx context.Context, result *models.TestResult) error
}

// ResultRow is one TestResult joined to the subject of its test, the shape
// the aggregate reports are computed from.
type ResultRow struct {
	Result    models.TestResult
	SubjectID uint
}

// MetricsStore supplies the raw rows and counts for the aggregate reports.
type MetricsStore interface {
	ListResultRows(ctx context.Context) ([]ResultRow, error)
	CountTests(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountAssignments(ctx context.Context) (int64, error)
	CountCompletedAssignments(ctx context.Context) (int64, error)
}

// ComputeResult derives the final outcome of an attempt. Unanswered questions
// count as wrong: wrong is always total minus correct and never carried as an
// independently written field. Pure.
func ComputeResult(attempt *models.TestAttempt, testID uint, answers []models.UserAnswer,
	completedAt time.Time) models.TestResult {
	total := len(attempt.Questions)
	correct := 0
	for _, ua := range answers {
		if ua.IsCorrect {
			correct++
		}
	}

	score := 0.0
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}
	timeSpent := int(completedAt.Sub(attempt.StartedAt).Seconds())

	return models.TestResult{
		AttemptID:        attempt.ID,
		UserID:           attempt.UserID,
		TestID:           testID,
		Score:            score,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		WrongAnswers:     total - correct,
		TimeSpentSeconds: &timeSpent,
		Mode:             attempt.Mode,
		CompletedAt:      completedAt,
		IsPassed:         score >= PassThreshold,
	}
}

// GlobalMetrics is the recomputed-on-demand platform report. MeanScore is
// normalized to [0,1]; an empty result set yields all zeros, never an error.
type GlobalMetrics struct {
	TotalTests           int64              `json:"total_tests"`
	TotalUsers           int64              `json:"total_users"`
	TotalResults         int64              `json:"total_results"`
	MeanScore            float64            `json:"mean_score"`
	PassRate             float64            `json:"pass_rate"`
	FailRate             float64            `json:"fail_rate"`
	MeanTimeSpentSeconds float64            `json:"mean_time_spent_seconds"`
	CompletionRate       float64            `json:"completion_rate"`
	Subjects             []SubjectBreakdown `json:"subjects"`
}

type SubjectBreakdown struct {
	SubjectID   uint    `json:"subject_id"`
	ResultCount int     `json:"result_count"`
	MeanScore   float64 `json:"mean_score"`
}

// GroupMetrics is the scoped report shape shared by the per-subject and
// per-user breakdowns. MeanScore stays on the 0-100 scale.
type GroupMetrics struct {
	Count       int     `json:"count"`
	MeanScore   float64 `json:"mean_score"`
	PassedCount int     `json:"passed_count"`
	FailedCount int     `json:"failed_count"`
}

// Aggregator computes final results at submission time and the cross-attempt
// aggregate statistics on demand.
type Aggregator struct {
	results ResultStore
	metrics MetricsStore
	log     *zap.Logger
}

func NewAggregator(results ResultStore, metrics MetricsStore, log *zap.Logger) *Aggregator {
	return &Aggregator{results: results, metrics: metrics, log: log}
}

// Finalize computes and persists the result for a submitted attempt. The
// store's uniqueness constraint guarantees at most one result per attempt.
func (a *Aggregator) Finalize(ctx context.Context, attempt *models.TestAttempt, test *models.Test,
	answers []models.UserAnswer, completedAt time.Time) (*models.TestResult, error) {
	result := ComputeResult(attempt, test.ID, answers, completedAt)
	if err := a.results.Create(ctx, &result); err != nil {
		return nil, err
	}
	a.log.Info("result persisted",
		zap.String("attempt", attempt.ID),
		zap.Float64("score", result.Score),
		zap.Bool("passed", result.IsPassed))
	return &result, nil
}

// GlobalMetrics scans all results and recomputes the platform report.
func (a *Aggregator) GlobalMetrics(ctx context.Context) (*GlobalMetrics, error) {
	rows, err := a.metrics.ListResultRows(ctx)
	if err != nil {
		return nil, err
	}

	m := &GlobalMetrics{Subjects: []SubjectBreakdown{}}
	if m.TotalTests, err = a.metrics.CountTests(ctx); err != nil {
		return nil, err
	}
	if m.TotalUsers, err = a.metrics.CountUsers(ctx); err != nil {
		return nil, err
	}
	m.TotalResults = int64(len(rows))

	var scoreSum, timeSum float64
	var timeCount, passed, failed int
	perSubject := make(map[uint]*SubjectBreakdown)
	subjectScores := make(map[uint]float64)
	for _, row := range rows {
		scoreSum += row.Result.Score
		if row.Result.IsPassed {
			passed++
		} else {
			failed++
		}
		if row.Result.TimeSpentSeconds != nil {
			timeSum += float64(*row.Result.TimeSpentSeconds)
			timeCount++
		}
		b, ok := perSubject[row.SubjectID]
		if !ok {
			b = &SubjectBreakdown{SubjectID: row.SubjectID}
			perSubject[row.SubjectID] = b
		}
		b.ResultCount++
		subjectScores[row.SubjectID] += row.Result.Score
	}

	if len(rows) > 0 {
		m.MeanScore = scoreSum / float64(len(rows)) / 100
	}
	if passed+failed > 0 {
		m.PassRate = float64(passed) / float64(passed+failed)
		m.FailRate = float64(failed) / float64(passed+failed)
	}
	if timeCount > 0 {
		m.MeanTimeSpentSeconds = timeSum / float64(timeCount)
	}

	totalAssignments, err := a.metrics.CountAssignments(ctx)
	if err != nil {
		return nil, err
	}
	if totalAssignments > 0 {
		completedAssignments, err := a.metrics.CountCompletedAssignments(ctx)
		if err != nil {
			return nil, err
		}
		m.CompletionRate = float64(completedAssignments) / float64(totalAssignments)
	}

	for id, b := range perSubject {
		b.MeanScore = subjectScores[id] / float64(b.ResultCount)
		m.Subjects = append(m.Subjects, *b)
	}
	sortSubjects(m.Subjects)
	return m, nil
}

// SubjectMetrics reports on the results for one subject, optionally narrowed
// to a single user.
func (a *Aggregator) SubjectMetrics(ctx context.Context, subjectID uint, userID *uint) (*GroupMetrics, error) {
	return a.groupMetrics(ctx, func(row ResultRow) bool {
		if row.SubjectID != subjectID {
			return false
		}
		return userID == nil || row.Result.UserID == *userID
	})
}

// UserMetrics reports on all of one user's results.
func (a *Aggregator) UserMetrics(ctx context.Context, userID uint) (*GroupMetrics, error) {
	return a.groupMetrics(ctx, func(row ResultRow) bool {
		return row.Result.UserID == userID
	})
}

func (a *Aggregator) groupMetrics(ctx context.Context, keep func(ResultRow) bool) (*GroupMetrics, error) {
	rows, err := a.metrics.ListResultRows(ctx)
	if err != nil {
		return nil, err
	}

	m := &GroupMetrics{}
	var scoreSum float64
	for _, row := range rows {
		if !keep(row) {
			continue
		}
		m.Count++
		scoreSum += row.Result.Score
		if row.Result.IsPassed {
			m.PassedCount++
		} else {
			m.FailedCount++
		}
	}
	if m.Count > 0 {
		m.MeanScore = scoreSum / float64(m.Count)
	}
	return m, nil
}

func sortSubjects(subjects []SubjectBreakdown) {
	sort.Slice(subjects, func(i, j int) bool {
		return subjects[i].SubjectID < subjects[j].SubjectID
	})
}
