package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"examhub/backend/models"
	"examhub/backend/scoring"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// In-memory stores mirroring the persistence contracts, including the
// uniqueness rules the SQL indexes enforce in production.

type fakeAttempts struct {
	mu   sync.Mutex
	byID map[string]*models.TestAttempt
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{byID: make(map[string]*models.TestAttempt)}
}

func (f *fakeAttempts) Create(_ context.Context, attempt *models.TestAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.AssignmentID == attempt.AssignmentID {
			return ErrDuplicateAttempt
		}
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	stored := *attempt
	f.byID[attempt.ID] = &stored
	return nil
}

func (f *fakeAttempts) GetByID(_ context.Context, id string) (*models.TestAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeAttempts) PendingByUser(_ context.Context, userID uint) (*models.TestAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.byID {
		if stored.UserID == userID && stored.CompletedAt == nil && !stored.IsPaused {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, ErrAttemptNotFound
}

func (f *fakeAttempts) SaveProgress(_ context.Context, id string, questionIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return ErrAttemptNotFound
	}
	stored.CurrentQuestionIndex = questionIndex
	return nil
}

func (f *fakeAttempts) SaveTimer(_ context.Context, id string, remainingSeconds *int, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return ErrAttemptNotFound
	}
	stored.IsPaused = paused
	if remainingSeconds != nil {
		v := *remainingSeconds
		stored.RemainingSeconds = &v
	}
	return nil
}

func (f *fakeAttempts) Complete(_ context.Context, id string, score float64, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return ErrAttemptNotFound
	}
	stored.Score = &score
	stored.CompletedAt = &completedAt
	stored.IsPaused = false
	return nil
}

func (f *fakeAttempts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeAttempts) get(id string) *models.TestAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil
	}
	copied := *stored
	return &copied
}

func (f *fakeAttempts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeAnswers struct {
	mu   sync.Mutex
	rows map[string]map[uint]models.UserAnswer
}

func newFakeAnswers() *fakeAnswers {
	return &fakeAnswers{rows: make(map[string]map[uint]models.UserAnswer)}
}

func (f *fakeAnswers) Upsert(_ context.Context, answer *models.UserAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	byQuestion, ok := f.rows[answer.AttemptID]
	if !ok {
		byQuestion = make(map[uint]models.UserAnswer)
		f.rows[answer.AttemptID] = byQuestion
	}
	if existing, ok := byQuestion[answer.QuestionID]; ok {
		answer.ID = existing.ID
	}
	byQuestion[answer.QuestionID] = *answer
	return nil
}

func (f *fakeAnswers) ListByAttempt(_ context.Context, attemptID string) ([]models.UserAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserAnswer
	for _, ua := range f.rows[attemptID] {
		out = append(out, ua)
	}
	return out, nil
}

func (f *fakeAnswers) countFor(attemptID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[attemptID])
}

type fakeCatalog struct {
	mu          sync.Mutex
	assignments map[uint]*models.TestAssignment
	tests       map[uint]*models.Test
	byTest      map[uint][]models.Question
	questions   map[uint]models.Question
}

func (f *fakeCatalog) GetAssignmentByID(_ context.Context, id uint) (*models.TestAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asg, ok := f.assignments[id]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	copied := *asg
	return &copied, nil
}

func (f *fakeCatalog) GetTestByID(_ context.Context, id uint) (*models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	test, ok := f.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *test
	return &copied, nil
}

func (f *fakeCatalog) SetStatus(_ context.Context, assignmentID uint, status models.AssignmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	asg, ok := f.assignments[assignmentID]
	if !ok {
		return ErrAssignmentNotFound
	}
	asg.Status = status
	return nil
}

func (f *fakeCatalog) GetTestQuestions(_ context.Context, testID uint) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byTest[testID], nil
}

func (f *fakeCatalog) GetQuestionByID(_ context.Context, id uint) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return &q, nil
}

func (f *fakeCatalog) status(assignmentID uint) models.AssignmentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignments[assignmentID].Status
}

type fakeResults struct {
	mu        sync.Mutex
	byAttempt map[string]models.TestResult
}

func newFakeResults() *fakeResults {
	return &fakeResults{byAttempt: make(map[string]models.TestResult)}
}

func (f *fakeResults) Create(_ context.Context, result *models.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byAttempt[result.AttemptID]; ok {
		return scoring.ErrDuplicateResult
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	f.byAttempt[result.AttemptID] = *result
	return nil
}

func (f *fakeResults) get(attemptID string) (models.TestResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byAttempt[attemptID]
	return r, ok
}

type fixture struct {
	attempts *fakeAttempts
	answers  *fakeAnswers
	catalog  *fakeCatalog
	results  *fakeResults
	sink     *scoring.Aggregator
}

// Four single-choice questions, the first answer of each is correct.
// Assignment 1 is user 7's untimed test, assignment 2 the timed one,
// assignment 4 points at a test with no questions.
func newFixture() *fixture {
	questions := make(map[uint]models.Question)
	var list []models.Question
	for qid := uint(1); qid <= 4; qid++ {
		q := models.Question{
			Model:     gorm.Model{ID: qid},
			SubjectID: 1,
			Text:      "question",
			Type:      models.SingleChoice,
			Answers: []models.Answer{
				{Model: gorm.Model{ID: qid*10 + 1}, Text: "right", IsCorrect: true, Position: 1},
				{Model: gorm.Model{ID: qid*10 + 2}, Text: "wrong", Position: 2},
			},
		}
		questions[qid] = q
		list = append(list, q)
	}

	catalog := &fakeCatalog{
		assignments: map[uint]*models.TestAssignment{
			1: {Model: gorm.Model{ID: 1}, TestID: 1, UserID: 7, Status: models.AssignmentPending},
			2: {Model: gorm.Model{ID: 2}, TestID: 2, UserID: 7, Status: models.AssignmentPending},
			4: {Model: gorm.Model{ID: 4}, TestID: 4, UserID: 7, Status: models.AssignmentPending},
		},
		tests: map[uint]*models.Test{
			1: {Model: gorm.Model{ID: 1}, Title: "untimed", SubjectID: 1, Mode: models.ModeFixed, PracticeAllowed: true},
			2: {Model: gorm.Model{ID: 2}, Title: "timed", SubjectID: 1, Mode: models.ModeFixed, PracticeAllowed: true, TimerEnabled: true, TimeLimitMinutes: 1},
			4: {Model: gorm.Model{ID: 4}, Title: "empty", SubjectID: 1, Mode: models.ModeFixed, PracticeAllowed: true},
		},
		byTest: map[uint][]models.Question{
			1: list,
			2: list,
		},
		questions: questions,
	}

	results := newFakeResults()
	return &fixture{
		attempts: newFakeAttempts(),
		answers:  newFakeAnswers(),
		catalog:  catalog,
		results:  results,
		sink:     scoring.NewAggregator(results, nil, zap.NewNop()),
	}
}

func (fx *fixture) controller() *Controller {
	return NewController(fx.attempts, fx.answers, fx.catalog, fx.catalog, fx.sink, zap.NewNop())
}

func (fx *fixture) manager() *Manager {
	return NewManager(fx.attempts, fx.answers, fx.catalog, fx.catalog, fx.sink, zap.NewNop())
}

func TestStartCreatesAttempt(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()

	require.NoError(t, ctl.Start(context.Background(), 1, false))

	state := ctl.State()
	assert.Equal(t, PhaseInProgress, state.Phase)
	require.NotNil(t, state.Attempt)
	assert.Len(t, state.Attempt.Questions, 4)
	assert.Equal(t, models.ModeExam, state.Attempt.Mode)
	assert.Nil(t, state.RemainingSeconds, "untimed test carries no countdown")
	assert.Equal(t, 0, state.QuestionIndex)

	assert.NotNil(t, fx.attempts.get(state.Attempt.ID))
	assert.Equal(t, models.AssignmentInProgress, fx.catalog.status(1))
}

func TestStartTimedAttempt(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()

	require.NoError(t, ctl.Start(context.Background(), 2, false))

	state := ctl.State()
	require.NotNil(t, state.RemainingSeconds)
	assert.Equal(t, 60, *state.RemainingSeconds)
	ctl.timer.Stop()
}

func TestStartPracticeModeRequiresPermission(t *testing.T) {
	fx := newFixture()
	fx.catalog.tests[1].PracticeAllowed = false
	ctl := fx.controller()

	err := ctl.Start(context.Background(), 1, true)
	assert.ErrorIs(t, err, ErrPracticeNotAllowed)
	assert.Equal(t, PhaseError, ctl.State().Phase)
	assert.Equal(t, 0, fx.attempts.count(), "no attempt may survive a refused start")
}

func TestStartPracticeMode(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()

	require.NoError(t, ctl.Start(context.Background(), 1, true))
	assert.Equal(t, models.ModePractice, ctl.State().Attempt.Mode)
}

func TestStartWithoutQuestionsFails(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()

	err := ctl.Start(context.Background(), 4, false)
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
	assert.Equal(t, PhaseError, ctl.State().Phase)
	assert.Equal(t, 0, fx.attempts.count(), "attempt must be discarded when question load fails")
}

func TestStartUnknownAssignment(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()

	err := ctl.Start(context.Background(), 99, false)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDuplicateAttemptRejected(t *testing.T) {
	fx := newFixture()
	require.NoError(t, fx.controller().Start(context.Background(), 1, false))

	err := fx.controller().Start(context.Background(), 1, false)
	assert.ErrorIs(t, err, ErrDuplicateAttempt)
}

func TestAnswerGradesAndReplaces(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))
	attemptID := ctl.State().Attempt.ID

	// Wrong first
	require.NoError(t, ctl.Answer(context.Background(), 1, []int64{12}))
	assert.False(t, ctl.State().Answers[1].IsCorrect)

	// Replaced by the correct one
	require.NoError(t, ctl.Answer(context.Background(), 1, []int64{11}))
	assert.True(t, ctl.State().Answers[1].IsCorrect)

	assert.Equal(t, 1, fx.answers.countFor(attemptID), "re-answering must not add a second row")
}

func TestAnswerEmptySelection(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))

	assert.ErrorIs(t, ctl.Answer(context.Background(), 1, nil), ErrEmptySelection)
	assert.ErrorIs(t, ctl.Answer(context.Background(), 1, []int64{}), ErrEmptySelection)
}

func TestAnswerUnknownQuestion(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))

	assert.ErrorIs(t, ctl.Answer(context.Background(), 99, []int64{1}), ErrQuestionNotFound)
}

func TestAnswerBeforeStart(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()

	assert.ErrorIs(t, ctl.Answer(context.Background(), 1, []int64{11}), ErrNotInProgress)
}

func TestNavigateCheckpointsIndex(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))
	attemptID := ctl.State().Attempt.ID

	require.NoError(t, ctl.Navigate(2))
	assert.Equal(t, 2, ctl.CurrentIndex())

	assert.Eventually(t, func() bool {
		stored := fx.attempts.get(attemptID)
		return stored != nil && stored.CurrentQuestionIndex == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitComputesResult(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))
	attemptID := ctl.State().Attempt.ID

	// One of four correct, the rest unanswered
	require.NoError(t, ctl.Answer(context.Background(), 1, []int64{11}))

	result, err := ctl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 3, result.WrongAnswers, "unanswered questions count as wrong")
	assert.InDelta(t, 25.0, result.Score, 0.001)
	assert.False(t, result.IsPassed)

	state := ctl.State()
	assert.Equal(t, PhaseCompleted, state.Phase)
	assert.InDelta(t, 25.0, state.Score, 0.001)

	stored := fx.attempts.get(attemptID)
	require.NotNil(t, stored)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, models.AssignmentCompleted, fx.catalog.status(1))

	persisted, ok := fx.results.get(attemptID)
	require.True(t, ok)
	assert.InDelta(t, 25.0, persisted.Score, 0.001)
}

func TestSubmitAllCorrectPasses(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))

	for qid := uint(1); qid <= 4; qid++ {
		require.NoError(t, ctl.Answer(context.Background(), qid, []int64{int64(qid*10 + 1)}))
	}

	result, err := ctl.Submit(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, result.Score, 0.001)
	assert.True(t, result.IsPassed)
	assert.Equal(t, 0, result.WrongAnswers)
}

func TestSubmitTwiceRejected(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))

	_, err := ctl.Submit(context.Background())
	require.NoError(t, err)

	_, err = ctl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotInProgress)
}

func TestCancelDiscardsAttempt(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))

	require.NoError(t, ctl.Cancel(context.Background()))
	assert.Equal(t, PhaseNotStarted, ctl.State().Phase)
	assert.Equal(t, 0, fx.attempts.count())
	assert.Equal(t, models.AssignmentPending, fx.catalog.status(1))
}

func TestPauseAndResumeTimer(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 2, false))
	attemptID := ctl.State().Attempt.ID
	defer ctl.timer.Stop()

	require.NoError(t, ctl.PauseTimer(context.Background()))
	assert.Equal(t, PhasePaused, ctl.State().Phase)
	assert.False(t, ctl.timer.Running())
	stored := fx.attempts.get(attemptID)
	require.NotNil(t, stored)
	assert.True(t, stored.IsPaused)

	require.NoError(t, ctl.ResumeTimer(context.Background()))
	assert.Equal(t, PhaseInProgress, ctl.State().Phase)
	assert.True(t, ctl.timer.Running())
	assert.False(t, fx.attempts.get(attemptID).IsPaused)
}

func TestSubmitWhilePaused(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 2, false))
	require.NoError(t, ctl.PauseTimer(context.Background()))

	_, err := ctl.Submit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, PhaseCompleted, ctl.State().Phase)
}

func TestResumeRestoresAnswersAndIndex(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))
	attemptID := ctl.State().Attempt.ID

	require.NoError(t, ctl.Answer(context.Background(), 1, []int64{11}))
	require.NoError(t, ctl.Navigate(3))
	require.Eventually(t, func() bool {
		return fx.attempts.get(attemptID).CurrentQuestionIndex == 3
	}, time.Second, 10*time.Millisecond)

	restored := fx.controller()
	require.NoError(t, restored.Resume(context.Background(), attemptID))

	state := restored.State()
	assert.Equal(t, PhaseInProgress, state.Phase)
	assert.Equal(t, 3, state.QuestionIndex)
	require.Contains(t, state.Answers, uint(1))
	assert.True(t, state.Answers[1].IsCorrect)
	assert.Len(t, state.Attempt.Questions, 4)
	assert.Nil(t, state.RemainingSeconds, "untimed attempt resumes without a countdown")
	assert.Nil(t, state.Attempt.RemainingSeconds)
}

func TestResumeCompletedAttemptRejected(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))
	attemptID := ctl.State().Attempt.ID
	_, err := ctl.Submit(context.Background())
	require.NoError(t, err)

	restored := fx.controller()
	assert.ErrorIs(t, restored.Resume(context.Background(), attemptID), ErrAttemptNotFound)
}

func TestTimerExpiryAutoSubmits(t *testing.T) {
	fx := newFixture()

	// Persisted timed attempt with one second left on the clock
	one := 1
	seeded := &models.TestAttempt{
		AssignmentID:     2,
		UserID:           7,
		StartedAt:        time.Now().UTC(),
		Mode:             models.ModeExam,
		RemainingSeconds: &one,
	}
	require.NoError(t, fx.attempts.Create(context.Background(), seeded))

	ctl := fx.controller()
	ctl.timer.TickInterval = 20 * time.Millisecond
	watch := ctl.Watch()
	require.NoError(t, ctl.Resume(context.Background(), seeded.ID))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case state := <-watch:
			if state.Phase == PhaseCompleted {
				assert.True(t, state.TimeExpired)
				assert.InDelta(t, 0.0, state.Score, 0.001, "no answers given before expiry")
				result, ok := fx.results.get(seeded.ID)
				require.True(t, ok)
				assert.Equal(t, 4, result.WrongAnswers)
				return
			}
		case <-deadline:
			t.Fatal("attempt was not auto-submitted after expiry")
		}
	}
}

func TestManagerBlocksSecondActiveAttempt(t *testing.T) {
	fx := newFixture()
	mgr := fx.manager()

	_, err := mgr.Start(context.Background(), 7, 1, false)
	require.NoError(t, err)

	_, err = mgr.Start(context.Background(), 7, 2, false)
	assert.ErrorIs(t, err, ErrAttemptActive)
}

func TestManagerAllowsNewAttemptAfterPause(t *testing.T) {
	fx := newFixture()
	mgr := fx.manager()

	ctl, err := mgr.Start(context.Background(), 7, 2, false)
	require.NoError(t, err)
	require.NoError(t, ctl.PauseTimer(context.Background()))

	second, err := mgr.Start(context.Background(), 7, 1, false)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, second.State().Phase)
}

func TestManagerRejectsForeignAssignment(t *testing.T) {
	fx := newFixture()
	mgr := fx.manager()

	_, err := mgr.Start(context.Background(), 8, 1, false)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestManagerResumeChecksOwnership(t *testing.T) {
	fx := newFixture()
	mgr := fx.manager()

	ctl, err := mgr.Start(context.Background(), 7, 2, false)
	require.NoError(t, err)
	attemptID := ctl.State().Attempt.ID
	require.NoError(t, ctl.PauseTimer(context.Background()))
	require.True(t, fx.attempts.get(attemptID).IsPaused)

	_, err = mgr.Resume(context.Background(), 8, attemptID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
	assert.True(t, fx.attempts.get(attemptID).IsPaused,
		"rejected foreign resume must leave the owner's pause flag intact")

	resumed, err := mgr.Resume(context.Background(), 7, attemptID)
	require.NoError(t, err)
	defer resumed.timer.Stop()
	assert.Equal(t, attemptID, resumed.State().Attempt.ID)
	assert.False(t, fx.attempts.get(attemptID).IsPaused)
}

func TestStateSnapshotIsolatedFromLiveAttempt(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 1, false))

	snap := ctl.State()
	require.NotNil(t, snap.Attempt)
	require.NoError(t, ctl.Navigate(2))

	assert.Equal(t, 0, snap.Attempt.CurrentQuestionIndex,
		"snapshot must not follow later navigation")
	assert.Equal(t, 2, ctl.State().Attempt.CurrentQuestionIndex)
}

func TestStateSnapshotCopiesAttempt(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	require.NoError(t, ctl.Start(context.Background(), 2, false))
	defer ctl.timer.Stop()

	a := ctl.State()
	b := ctl.State()
	require.NotNil(t, a.Attempt)
	require.NotNil(t, a.Attempt.RemainingSeconds)
	assert.NotSame(t, a.Attempt, b.Attempt,
		"snapshots must not share the attempt the timer goroutine writes")
	assert.NotSame(t, a.Attempt.RemainingSeconds, b.Attempt.RemainingSeconds)
	assert.NotSame(t, a.RemainingSeconds, b.RemainingSeconds)
}

func TestWatchDeliversTransitions(t *testing.T) {
	fx := newFixture()
	ctl := fx.controller()
	watch := ctl.Watch()

	first := <-watch
	assert.Equal(t, PhaseNotStarted, first.Phase)

	require.NoError(t, ctl.Start(context.Background(), 1, false))

	sawInProgress := false
	deadline := time.After(time.Second)
	for !sawInProgress {
		select {
		case state := <-watch:
			if state.Phase == PhaseInProgress {
				sawInProgress = true
			}
		case <-deadline:
			t.Fatal("never observed the InProgress transition")
		}
	}
}
