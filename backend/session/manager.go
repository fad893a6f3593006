package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Manager owns the active controllers, one per in-progress attempt, and
// enforces the one-unpaused-pending-attempt-per-user rule before a new
// attempt is created.
type Manager struct {
	attempts    AttemptStore
	answers     AnswerStore
	assignments AssignmentSource
	questions   QuestionSource
	results     ResultSink
	log         *zap.Logger

	mu     sync.Mutex
	active map[string]*Controller
}

func NewManager(attempts AttemptStore, answers AnswerStore, assignments AssignmentSource,
	questions QuestionSource, results ResultSink, log *zap.Logger) *Manager {
	return &Manager{
		attempts:    attempts,
		answers:     answers,
		assignments: assignments,
		questions:   questions,
		results:     results,
		log:         log,
		active:      make(map[string]*Controller),
	}
}

func (m *Manager) newController() *Controller {
	return NewController(m.attempts, m.answers, m.assignments, m.questions, m.results, m.log)
}

// Start begins a new attempt for the user's assignment. A user with an
// unpaused pending attempt must submit, pause or cancel it first.
func (m *Manager) Start(ctx context.Context, userID, assignmentID uint, practice bool) (*Controller, error) {
	pending, err := m.attempts.PendingByUser(ctx, userID)
	if err == nil && pending != nil && !pending.IsPaused {
		return nil, ErrAttemptActive
	}
	if err != nil && !errors.Is(err, ErrAttemptNotFound) {
		return nil, err
	}

	assignment, err := m.assignments.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.UserID != userID {
		return nil, ErrAssignmentNotFound
	}

	ctl := m.newController()
	if err := ctl.Start(ctx, assignmentID, practice); err != nil {
		return nil, err
	}

	id := ctl.State().Attempt.ID
	m.mu.Lock()
	m.active[id] = ctl
	m.mu.Unlock()
	return ctl, nil
}

// Resume rebuilds a controller for a persisted attempt. Ownership is checked
// before any controller work so a foreign caller cannot touch the stored
// attempt; the attempt is then re-read by the controller and any previously
// active controller for the same id is discarded along with its timer.
func (m *Manager) Resume(ctx context.Context, userID uint, attemptID string) (*Controller, error) {
	attempt, err := m.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}

	m.mu.Lock()
	if old, ok := m.active[attemptID]; ok {
		old.timer.Stop()
		delete(m.active, attemptID)
	}
	m.mu.Unlock()

	ctl := m.newController()
	if err := ctl.Resume(ctx, attemptID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active[attemptID] = ctl
	m.mu.Unlock()
	return ctl, nil
}

// Get returns the active controller for an attempt, if any.
func (m *Manager) Get(attemptID string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctl, ok := m.active[attemptID]
	return ctl, ok
}

// Release drops the controller after submission or cancellation.
func (m *Manager) Release(attemptID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, attemptID)
}
