package controllers

import (
	"errors"
	"strconv"

	"examhub/backend/config"
	"examhub/backend/models"
	"examhub/backend/session"
	"examhub/backend/store"
	"examhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AttemptsController exposes the attempt lifecycle over HTTP. All session
// semantics live in the session package; this layer translates requests and
// maps sentinel errors to status codes.
type AttemptsController struct {
	Manager *session.Manager
	Results *store.Results
	Cfg     *config.Config
}

func NewAttemptsController(manager *session.Manager, results *store.Results, cfg *config.Config) *AttemptsController {
	return &AttemptsController{Manager: manager, Results: results, Cfg: cfg}
}

// [+] StartAttempt godoc
// @Summary Start a test attempt
// @Description Creates an attempt for the caller's assignment and starts the countdown for timed tests
// @Tags attempts
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponse
// @Router /attempts/start [post]
func (ac *AttemptsController) StartAttempt(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		AssignmentID uint `json:"assignment_id"`
		Practice     bool `json:"practice"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	ctl, err := ac.Manager.Start(c.Context(), userID, input.AssignmentID, input.Practice)
	if err != nil {
		return ac.sessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ac.stateResponse(ctl.State()))
}

// [+] ResumeAttempt godoc
// @Summary Resume a pending attempt
// @Tags attempts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /attempts/{id}/resume [post]
func (ac *AttemptsController) ResumeAttempt(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	ctl, err := ac.Manager.Resume(c.Context(), userID, c.Params("id"))
	if err != nil {
		return ac.sessionError(c, err)
	}

	return c.JSON(ac.stateResponse(ctl.State()))
}

func (ac *AttemptsController) GetState(c *fiber.Ctx) error {
	ctl, err := ac.controllerFor(c)
	if err != nil {
		return ac.sessionError(c, err)
	}
	return c.JSON(ac.stateResponse(ctl.State()))
}

func (ac *AttemptsController) Navigate(c *fiber.Ctx) error {
	ctl, err := ac.controllerFor(c)
	if err != nil {
		return ac.sessionError(c, err)
	}

	var input struct {
		Index int `json:"index"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := ctl.Navigate(input.Index); err != nil {
		return ac.sessionError(c, err)
	}
	return c.JSON(fiber.Map{
		"index": ctl.CurrentIndex(),
	})
}

// [+] SubmitAnswer godoc
// @Summary Record an answer for a question
// @Description Grades the selection and replaces any earlier answer for the same question
// @Tags attempts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /attempts/{id}/answer [post]
func (ac *AttemptsController) SubmitAnswer(c *fiber.Ctx) error {
	ctl, err := ac.controllerFor(c)
	if err != nil {
		return ac.sessionError(c, err)
	}

	var input struct {
		QuestionID        uint    `json:"question_id"`
		SelectedAnswerIDs []int64 `json:"selected_answer_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := ctl.Answer(c.Context(), input.QuestionID, input.SelectedAnswerIDs); err != nil {
		return ac.sessionError(c, err)
	}

	state := ctl.State()
	resp := fiber.Map{
		"question_id": input.QuestionID,
		"answered":    len(state.Answers),
	}
	// Immediate feedback only in practice mode
	if state.Attempt != nil && state.Attempt.Mode == models.ModePractice {
		if ua, ok := state.Answers[input.QuestionID]; ok {
			resp["is_correct"] = ua.IsCorrect
		}
	}
	return c.JSON(resp)
}

// [+] SubmitAttempt godoc
// @Summary Submit the attempt and produce the final result
// @Tags attempts
// @Produce json
// @Success 200 {object} models.TestResult
// @Failure 409 {object} utils.ErrorResponse
// @Router /attempts/{id}/submit [post]
func (ac *AttemptsController) SubmitAttempt(c *fiber.Ctx) error {
	ctl, err := ac.controllerFor(c)
	if err != nil {
		return ac.sessionError(c, err)
	}

	result, err := ctl.Submit(c.Context())
	if err != nil {
		return ac.sessionError(c, err)
	}
	ac.Manager.Release(c.Params("id"))

	return c.JSON(result)
}

func (ac *AttemptsController) CancelAttempt(c *fiber.Ctx) error {
	ctl, err := ac.controllerFor(c)
	if err != nil {
		return ac.sessionError(c, err)
	}

	if err := ctl.Cancel(c.Context()); err != nil {
		return ac.sessionError(c, err)
	}
	ac.Manager.Release(c.Params("id"))

	return c.JSON(fiber.Map{
		"message": "Attempt cancelled",
	})
}

func (ac *AttemptsController) PauseAttempt(c *fiber.Ctx) error {
	ctl, err := ac.controllerFor(c)
	if err != nil {
		return ac.sessionError(c, err)
	}

	if err := ctl.PauseTimer(c.Context()); err != nil {
		return ac.sessionError(c, err)
	}
	return c.JSON(ac.stateResponse(ctl.State()))
}

func (ac *AttemptsController) ResumeTimer(c *fiber.Ctx) error {
	ctl, err := ac.controllerFor(c)
	if err != nil {
		return ac.sessionError(c, err)
	}

	if err := ctl.ResumeTimer(c.Context()); err != nil {
		return ac.sessionError(c, err)
	}
	return c.JSON(ac.stateResponse(ctl.State()))
}

// [+] MyResults godoc
// @Summary List the caller's results, newest first
// @Tags attempts
// @Produce json
// @Success 200 {object} utils.PaginatedResponse
// @Router /results/me [get]
func (ac *AttemptsController) MyResults(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	results, total, err := ac.Results.ListByUser(c.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return utils.Paginate(c, results, total, page, pageSize)
}

// controllerFor resolves the active controller for the attempt in the URL and
// checks that the caller owns it.
func (ac *AttemptsController) controllerFor(c *fiber.Ctx) (*session.Controller, error) {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return nil, err
	}

	ctl, ok := ac.Manager.Get(c.Params("id"))
	if !ok {
		return nil, session.ErrAttemptNotFound
	}
	state := ctl.State()
	if state.Attempt == nil || state.Attempt.UserID != userID {
		return nil, session.ErrAttemptNotFound
	}
	return ctl, nil
}

func (ac *AttemptsController) stateResponse(state session.ExecutionState) fiber.Map {
	resp := fiber.Map{
		"phase":          state.Phase,
		"question_index": state.QuestionIndex,
		"answered":       len(state.Answers),
	}
	if state.Attempt != nil {
		questions := make([]fiber.Map, 0, len(state.Attempt.Questions))
		for _, q := range state.Attempt.Questions {
			answers := make([]fiber.Map, 0, len(q.Answers))
			for _, a := range q.Answers {
				answers = append(answers, fiber.Map{
					"id":   a.ID,
					"text": a.Text,
				})
			}
			questions = append(questions, fiber.Map{
				"id":        q.ID,
				"text":      q.Text,
				"image_url": q.ImageURL,
				"type":      q.Type,
				"answers":   answers,
			})
		}

		resp["attempt_id"] = state.Attempt.ID
		resp["mode"] = state.Attempt.Mode
		resp["started_at"] = state.Attempt.StartedAt
		resp["questions"] = questions
	}
	if state.RemainingSeconds != nil {
		resp["remaining_seconds"] = *state.RemainingSeconds
	}
	if state.Phase == session.PhaseCompleted {
		resp["result_id"] = state.ResultID
		resp["score"] = state.Score
	}
	return resp
}

// sessionError maps session and scoring sentinels to HTTP status codes.
func (ac *AttemptsController) sessionError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	switch {
	case errors.Is(err, session.ErrAssignmentNotFound),
		errors.Is(err, session.ErrAttemptNotFound),
		errors.Is(err, session.ErrQuestionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, session.ErrEmptySelection),
		errors.Is(err, session.ErrNoQuestionsAvailable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, session.ErrPracticeNotAllowed):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, session.ErrAttemptActive),
		errors.Is(err, session.ErrDuplicateAttempt),
		errors.Is(err, session.ErrNotInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal error",
	})
}
