package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"examhub/backend/models"

	"go.uber.org/zap"
)

// Controller orchestrates one attempt's lifecycle: start/resume, navigation,
// answer capture, time-keeping and submission. One controller instance serves
// one in-progress attempt; the persistent store stays the source of truth and
// the in-memory attempt is a cache rebuilt on every resume.
type Controller struct {
	attempts    AttemptStore
	answers     AnswerStore
	assignments AssignmentSource
	questions   QuestionSource
	results     ResultSink
	log         *zap.Logger

	timer *CountdownTimer

	mu       sync.Mutex
	state    ExecutionState
	test     *models.Test
	hasTimer bool
	subs     []chan ExecutionState
}

func NewController(attempts AttemptStore, answers AnswerStore, assignments AssignmentSource,
	questions QuestionSource, results ResultSink, log *zap.Logger) *Controller {
	c := &Controller{
		attempts:    attempts,
		answers:     answers,
		assignments: assignments,
		questions:   questions,
		results:     results,
		log:         log,
		state:       ExecutionState{Phase: PhaseNotStarted},
	}
	c.timer = NewCountdownTimer(c.handleTick, c.handleExpiry)
	return c
}

// State returns a snapshot of the live execution state.
func (c *Controller) State() ExecutionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Watch subscribes to execution-state transitions. The current state is
// delivered first. Sends never block; a slow consumer misses intermediate
// snapshots rather than stalling the session.
func (c *Controller) Watch() <-chan ExecutionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan ExecutionState, 8)
	ch <- c.state.clone()
	c.subs = append(c.subs, ch)
	return ch
}

// RemainingSeconds returns the live countdown value, nil when the test has no
// timer configured.
func (c *Controller) RemainingSeconds() *int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.RemainingSeconds == nil {
		return nil
	}
	v := *c.state.RemainingSeconds
	return &v
}

func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.QuestionIndex
}

// Start resolves the assignment, creates and persists a fresh attempt,
// attaches the test's question set and begins the countdown when the test is
// timed. A test resolving to zero questions is a hard failure.
func (c *Controller) Start(ctx context.Context, assignmentID uint, practice bool) error {
	c.setPhase(PhaseLoading)

	assignment, err := c.assignments.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return c.fail(err)
	}
	test, err := c.assignments.GetTestByID(ctx, assignment.TestID)
	if err != nil {
		return c.fail(err)
	}

	mode := models.ModeExam
	if practice {
		if !test.PracticeAllowed {
			return c.fail(ErrPracticeNotAllowed)
		}
		mode = models.ModePractice
	}

	attempt := &models.TestAttempt{
		AssignmentID: assignment.ID,
		UserID:       assignment.UserID,
		StartedAt:    time.Now().UTC(),
		Mode:         mode,
	}
	if test.TimerEnabled {
		secs := test.TimeLimitMinutes * 60
		attempt.RemainingSeconds = &secs
	}

	if err := c.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, ErrDuplicateAttempt) {
			return c.fail(err)
		}
		return c.fail(errors.Join(ErrAttemptCreation, err))
	}

	questions, err := c.questions.GetTestQuestions(ctx, test.ID)
	if err == nil && len(questions) == 0 {
		err = ErrNoQuestionsAvailable
	}
	if err != nil {
		if delErr := c.attempts.Delete(ctx, attempt.ID); delErr != nil {
			c.log.Warn("could not discard attempt after failed question load",
				zap.String("attempt", attempt.ID), zap.Error(delErr))
		}
		return c.fail(err)
	}
	attempt.Questions = questions

	if err := c.assignments.SetStatus(ctx, assignment.ID, models.AssignmentInProgress); err != nil {
		c.log.Warn("assignment status update failed",
			zap.Uint("assignment", assignment.ID), zap.Error(err))
	}

	c.mu.Lock()
	c.test = test
	c.hasTimer = test.TimerEnabled
	c.state = ExecutionState{
		Phase:         PhaseInProgress,
		Attempt:       attempt,
		QuestionIndex: 0,
		Answers:       make(map[uint]models.UserAnswer),
	}
	if test.TimerEnabled {
		secs := *attempt.RemainingSeconds
		c.state.RemainingSeconds = &secs
	}
	c.publishLocked()
	c.mu.Unlock()

	if test.TimerEnabled {
		c.timer.Start(time.Duration(*attempt.RemainingSeconds) * time.Second)
	}
	return nil
}

// Resume reloads a not-yet-completed attempt from the store, re-resolves its
// question set through the owning assignment and restarts the countdown from
// the persisted remaining time, if any.
func (c *Controller) Resume(ctx context.Context, attemptID string) error {
	c.setPhase(PhaseLoading)

	attempt, err := c.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return c.fail(err)
	}
	if attempt.Completed() {
		return c.fail(ErrAttemptNotFound)
	}

	assignment, err := c.assignments.GetAssignmentByID(ctx, attempt.AssignmentID)
	if err != nil {
		return c.fail(err)
	}
	test, err := c.assignments.GetTestByID(ctx, assignment.TestID)
	if err != nil {
		return c.fail(err)
	}
	questions, err := c.questions.GetTestQuestions(ctx, test.ID)
	if err == nil && len(questions) == 0 {
		err = ErrNoQuestionsAvailable
	}
	if err != nil {
		return c.fail(err)
	}
	given, err := c.answers.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return c.fail(fmt.Errorf("load answers: %w", err))
	}

	attempt.Questions = questions
	attempt.IsPaused = false
	if err := c.attempts.SaveTimer(ctx, attempt.ID, attempt.RemainingSeconds, false); err != nil {
		c.log.Warn("could not clear pause flag on resume",
			zap.String("attempt", attempt.ID), zap.Error(err))
	}

	answers := make(map[uint]models.UserAnswer, len(given))
	for _, ua := range given {
		answers[ua.QuestionID] = ua
	}

	hasTimer := test.TimerEnabled && attempt.RemainingSeconds != nil

	c.mu.Lock()
	c.test = test
	c.hasTimer = hasTimer
	c.state = ExecutionState{
		Phase:         PhaseInProgress,
		Attempt:       attempt,
		QuestionIndex: attempt.CurrentQuestionIndex,
		Answers:       answers,
	}
	if hasTimer {
		secs := *attempt.RemainingSeconds
		c.state.RemainingSeconds = &secs
	}
	c.publishLocked()
	c.mu.Unlock()

	if hasTimer {
		c.timer.Start(time.Duration(*attempt.RemainingSeconds) * time.Second)
	}
	return nil
}

// Navigate moves the question cursor and checkpoints it without blocking the
// caller; a lost checkpoint is recovered by the next one.
func (c *Controller) Navigate(index int) error {
	c.mu.Lock()
	if c.state.Phase != PhaseInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	c.state.QuestionIndex = index
	c.state.Attempt.CurrentQuestionIndex = index
	id := c.state.Attempt.ID
	c.publishLocked()
	c.mu.Unlock()

	go func() {
		if err := c.attempts.SaveProgress(context.Background(), id, index); err != nil {
			c.log.Warn("progress checkpoint failed",
				zap.String("attempt", id), zap.Int("index", index), zap.Error(err))
		}
	}()
	return nil
}

// Answer grades a selection and upserts it, replacing any earlier answer for
// the same question. An empty selection is rejected before any lookup.
func (c *Controller) Answer(ctx context.Context, questionID uint, selected []int64) error {
	normalized := NormalizeSelection(selected)
	if len(normalized) == 0 {
		return ErrEmptySelection
	}

	c.mu.Lock()
	if c.state.Phase != PhaseInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	attemptID := c.state.Attempt.ID
	c.mu.Unlock()

	question, err := c.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return err
	}

	answer := &models.UserAnswer{
		AttemptID:         attemptID,
		QuestionID:        questionID,
		SelectedAnswerIDs: normalized,
		IsCorrect:         Grade(*question, normalized),
		AnsweredAt:        time.Now().UTC(),
	}
	if err := c.answers.Upsert(ctx, answer); err != nil {
		c.log.Error("answer save failed",
			zap.String("attempt", attemptID), zap.Uint("question", questionID), zap.Error(err))
		return fmt.Errorf("save answer: %w", err)
	}

	c.mu.Lock()
	if c.state.Phase == PhaseInProgress {
		c.state.Answers[questionID] = *answer
		c.publishLocked()
	}
	c.mu.Unlock()
	return nil
}

// Submit finalizes the attempt: the timer is stopped before the result is
// computed, the result is persisted exactly once and the attempt is marked
// complete. Unanswered questions count as wrong.
func (c *Controller) Submit(ctx context.Context) (*models.TestResult, error) {
	return c.submit(ctx, false)
}

func (c *Controller) submit(ctx context.Context, timeExpired bool) (*models.TestResult, error) {
	c.mu.Lock()
	if c.state.Phase != PhaseInProgress && c.state.Phase != PhasePaused {
		c.mu.Unlock()
		return nil, ErrNotInProgress
	}
	attempt := c.state.Attempt
	test := c.test
	answers := make([]models.UserAnswer, 0, len(c.state.Answers))
	for _, ua := range c.state.Answers {
		answers = append(answers, ua)
	}
	c.state.Phase = PhaseSubmitting
	c.state.TimeExpired = timeExpired
	c.publishLocked()
	c.mu.Unlock()

	c.timer.Stop()

	completedAt := time.Now().UTC()
	result, err := c.results.Finalize(ctx, attempt, test, answers, completedAt)
	if err != nil {
		return nil, c.fail(fmt.Errorf("finalize result: %w", err))
	}
	if err := c.attempts.Complete(ctx, attempt.ID, result.Score, completedAt); err != nil {
		return nil, c.fail(fmt.Errorf("mark attempt complete: %w", err))
	}
	if err := c.assignments.SetStatus(ctx, attempt.AssignmentID, models.AssignmentCompleted); err != nil {
		c.log.Warn("assignment status update failed",
			zap.Uint("assignment", attempt.AssignmentID), zap.Error(err))
	}

	c.mu.Lock()
	attempt.CompletedAt = &completedAt
	attempt.Score = &result.Score
	attempt.IsPaused = false
	c.state.Phase = PhaseCompleted
	c.state.ResultID = result.ID
	c.state.Score = result.Score
	c.publishLocked()
	c.mu.Unlock()

	c.log.Info("attempt submitted",
		zap.String("attempt", attempt.ID),
		zap.Float64("score", result.Score),
		zap.Bool("time_expired", timeExpired))
	return result, nil
}

// Cancel destroys the attempt without producing a result. Any running timer
// is stopped first.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	attempt := c.state.Attempt
	if attempt == nil {
		c.mu.Unlock()
		return ErrAttemptNotFound
	}
	id, assignmentID := attempt.ID, attempt.AssignmentID
	c.mu.Unlock()

	c.timer.Stop()

	if err := c.attempts.Delete(ctx, id); err != nil {
		return err
	}
	if err := c.assignments.SetStatus(ctx, assignmentID, models.AssignmentPending); err != nil {
		c.log.Warn("assignment status reset failed",
			zap.Uint("assignment", assignmentID), zap.Error(err))
	}

	c.mu.Lock()
	c.state = ExecutionState{Phase: PhaseNotStarted}
	c.publishLocked()
	c.mu.Unlock()
	return nil
}

// PauseTimer halts the countdown and checkpoints the remaining time, e.g.
// when the host UI is backgrounded.
func (c *Controller) PauseTimer(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != PhaseInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	attempt := c.state.Attempt
	attempt.IsPaused = true
	c.state.Phase = PhasePaused
	var remaining *int
	if c.hasTimer {
		c.timer.Pause()
		secs := int(c.timer.Remaining().Seconds())
		remaining = &secs
		attempt.RemainingSeconds = &secs
		v := secs
		c.state.RemainingSeconds = &v
	}
	id := attempt.ID
	c.publishLocked()
	c.mu.Unlock()

	if err := c.attempts.SaveTimer(ctx, id, remaining, true); err != nil {
		c.log.Warn("pause checkpoint failed", zap.String("attempt", id), zap.Error(err))
	}
	return nil
}

// ResumeTimer restarts the countdown from the paused remaining value.
func (c *Controller) ResumeTimer(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Phase != PhasePaused {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	attempt := c.state.Attempt
	attempt.IsPaused = false
	c.state.Phase = PhaseInProgress
	if c.hasTimer {
		c.timer.Resume()
	}
	id, remaining := attempt.ID, attempt.RemainingSeconds
	c.publishLocked()
	c.mu.Unlock()

	if err := c.attempts.SaveTimer(ctx, id, remaining, false); err != nil {
		c.log.Warn("resume checkpoint failed", zap.String("attempt", id), zap.Error(err))
	}
	return nil
}

// handleTick runs on the timer goroutine. Once submission has begun the
// attempt is no longer InProgress and the tick is a no-op.
func (c *Controller) handleTick(remaining time.Duration) {
	c.mu.Lock()
	if c.state.Phase != PhaseInProgress {
		c.mu.Unlock()
		return
	}
	secs := int(remaining.Seconds())
	c.state.RemainingSeconds = &secs
	if c.state.Attempt != nil {
		c.state.Attempt.RemainingSeconds = &secs
	}
	c.publishLocked()
	c.mu.Unlock()
}

func (c *Controller) handleExpiry() {
	c.log.Info("time expired, auto-submitting")
	if _, err := c.submit(context.Background(), true); err != nil && !errors.Is(err, ErrNotInProgress) {
		c.log.Error("auto-submit after expiry failed", zap.Error(err))
	}
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.state.Phase = p
	c.publishLocked()
	c.mu.Unlock()
}

// fail records the error state and passes the error through.
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.state.Phase = PhaseError
	c.state.Message = err.Error()
	c.publishLocked()
	c.mu.Unlock()
	return err
}

func (c *Controller) publishLocked() {
	snapshot := c.state.clone()
	for _, ch := range c.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
