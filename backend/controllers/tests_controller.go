package controllers

import (
	"errors"
	"strconv"
	"time"

	"examhub/backend/config"
	"examhub/backend/models"
	"examhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TestsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTestsController(db *gorm.DB, cfg *config.Config) *TestsController {
	return &TestsController{DB: db, Cfg: cfg}
}

// [+] CreateTest godoc
// @Summary Create a test
// @Description Creates a FIXED or RANDOM mode test definition
// @Tags tests
// @Accept json
// @Produce json
// @Success 201 {object} models.Test
// @Failure 400 {object} utils.ErrorResponse
// @Router /tests [post]
func (tc *TestsController) CreateTest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Title            string `json:"title"`
		Description      string `json:"description"`
		SubjectID        uint   `json:"subject_id"`
		Mode             string `json:"mode"`
		PracticeAllowed  *bool  `json:"practice_allowed"`
		TimerEnabled     bool   `json:"timer_enabled"`
		TimeLimitMinutes int    `json:"time_limit_minutes"`
		QuestionCount    int    `json:"question_count"`
		QuestionIDs      []uint `json:"question_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	mode, err := models.ParseTestMode(input.Mode)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test mode",
		})
	}
	if input.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}
	if mode == models.ModeFixed && len(input.QuestionIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fixed mode tests require a question list",
		})
	}
	if mode == models.ModeRandom && input.QuestionCount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Random mode tests require a positive question count",
		})
	}
	if input.TimerEnabled && input.TimeLimitMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Timed tests require a positive time limit",
		})
	}

	practiceAllowed := true
	if input.PracticeAllowed != nil {
		practiceAllowed = *input.PracticeAllowed
	}

	test := models.Test{
		Title:            input.Title,
		Description:      input.Description,
		SubjectID:        input.SubjectID,
		Mode:             mode,
		PracticeAllowed:  practiceAllowed,
		TimerEnabled:     input.TimerEnabled,
		TimeLimitMinutes: input.TimeLimitMinutes,
		QuestionCount:    input.QuestionCount,
		CreatorID:        userID,
	}
	for i, qid := range input.QuestionIDs {
		test.Questions = append(test.Questions, models.TestQuestion{
			QuestionID: qid,
			Position:   i + 1,
		})
	}

	if err := tc.DB.Create(&test).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create test",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(test)
}

func (tc *TestsController) ListTests(c *fiber.Ctx) error {
	query := tc.DB.Model(&models.Test{})
	if subject := c.Query("subject_id"); subject != "" {
		subjectID, err := strconv.Atoi(subject)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid subject ID",
			})
		}
		query = query.Where("subject_id = ?", subjectID)
	}

	var tests []models.Test
	if err := query.Find(&tests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(tests)
}

func (tc *TestsController) GetTestDetails(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test ID",
		})
	}

	var test models.Test
	if err := tc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Test not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(test)
}

// [+] AssignTest godoc
// @Summary Assign a test to a user
// @Description Creates an assignment; at most one per (user, test) pair
// @Tags tests
// @Accept json
// @Produce json
// @Success 201 {object} models.TestAssignment
// @Failure 409 {object} utils.ErrorResponse
// @Router /tests/{id}/assign [post]
func (tc *TestsController) AssignTest(c *fiber.Ctx) error {
	assignerID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test ID",
		})
	}

	var input struct {
		UserID   uint       `json:"user_id"`
		Deadline *time.Time `json:"deadline"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var test models.Test
	if err := tc.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Test not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var user models.User
	if err := tc.DB.First(&user, input.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	assignment := models.TestAssignment{
		TestID:       test.ID,
		UserID:       input.UserID,
		Status:       models.AssignmentPending,
		AssignedAt:   time.Now(),
		Deadline:     input.Deadline,
		AssignedByID: assignerID,
	}
	if err := tc.DB.Create(&assignment).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "User already has this test assigned",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(assignment)
}

func (tc *TestsController) ListAssignments(c *fiber.Ctx) error {
	query := tc.DB.Model(&models.TestAssignment{})
	if test := c.Query("test_id"); test != "" {
		testID, err := strconv.Atoi(test)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid test ID",
			})
		}
		query = query.Where("test_id = ?", testID)
	}
	if status := c.Query("status"); status != "" {
		parsed, err := models.ParseAssignmentStatus(status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid assignment status",
			})
		}
		query = query.Where("status = ?", parsed)
	}

	var assignments []models.TestAssignment
	if err := query.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(assignments)
}

func (tc *TestsController) MyAssignments(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var assignments []models.TestAssignment
	if err := tc.DB.Where("user_id = ?", userID).Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, a := range assignments {
		var test models.Test
		if err := tc.DB.First(&test, a.TestID).Error; err != nil {
			continue
		}
		result = append(result, fiber.Map{
			"id":          a.ID,
			"status":      a.Status,
			"assigned_at": a.AssignedAt,
			"deadline":    a.Deadline,
			"test": fiber.Map{
				"id":                 test.ID,
				"title":              test.Title,
				"subject_id":         test.SubjectID,
				"mode":               test.Mode,
				"practice_allowed":   test.PracticeAllowed,
				"timer_enabled":      test.TimerEnabled,
				"time_limit_minutes": test.TimeLimitMinutes,
			},
		})
	}

	return c.JSON(result)
}
