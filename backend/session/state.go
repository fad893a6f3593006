package session

import "examhub/backend/models"

// Phase is the lifecycle step of one attempt session.
//
//	NotStarted → Loading → InProgress → Submitting → Completed
//
// Error is reachable from any step; Paused only from InProgress.
type Phase string

const (
	PhaseNotStarted Phase = "NOT_STARTED"
	PhaseLoading    Phase = "LOADING"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhasePaused     Phase = "PAUSED"
	PhaseSubmitting Phase = "SUBMITTING"
	PhaseCompleted  Phase = "COMPLETED"
	PhaseError      Phase = "ERROR"
)

// ExecutionState is the live snapshot exposed to the presentation layer.
// RemainingSeconds is nil when the test has no timer configured; a timer at
// zero and the absence of a timer are distinct conditions.
type ExecutionState struct {
	Phase            Phase                        `json:"phase"`
	Attempt          *models.TestAttempt          `json:"attempt,omitempty"`
	QuestionIndex    int                          `json:"question_index"`
	Answers          map[uint]models.UserAnswer   `json:"answers,omitempty"`
	RemainingSeconds *int                         `json:"remaining_seconds,omitempty"`
	ResultID         string                       `json:"result_id,omitempty"`
	Score            float64                      `json:"score,omitempty"`
	Message          string                       `json:"message,omitempty"`
	TimeExpired      bool                         `json:"time_expired,omitempty"`
}

// clone deep-copies everything the timer goroutine and the controller mutate
// in place, so a snapshot never aliases live session state.
func (s ExecutionState) clone() ExecutionState {
	out := s
	if s.Attempt != nil {
		attempt := *s.Attempt
		if s.Attempt.RemainingSeconds != nil {
			v := *s.Attempt.RemainingSeconds
			attempt.RemainingSeconds = &v
		}
		if s.Attempt.CompletedAt != nil {
			v := *s.Attempt.CompletedAt
			attempt.CompletedAt = &v
		}
		if s.Attempt.Score != nil {
			v := *s.Attempt.Score
			attempt.Score = &v
		}
		out.Attempt = &attempt
	}
	if s.Answers != nil {
		out.Answers = make(map[uint]models.UserAnswer, len(s.Answers))
		for k, v := range s.Answers {
			out.Answers[k] = v
		}
	}
	if s.RemainingSeconds != nil {
		v := *s.RemainingSeconds
		out.RemainingSeconds = &v
	}
	return out
}
