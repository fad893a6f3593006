package controllers

import (
	"errors"
	"strconv"

	"examhub/backend/config"
	"examhub/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CatalogController manages the authored question bank: subjects, questions
// and their answer options.
type CatalogController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCatalogController(db *gorm.DB, cfg *config.Config) *CatalogController {
	return &CatalogController{DB: db, Cfg: cfg}
}

func (cc *CatalogController) ListSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	if err := cc.DB.Order("name").Find(&subjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(subjects)
}

func (cc *CatalogController) CreateSubject(c *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Subject name is required",
		})
	}

	subject := models.Subject{Name: input.Name, Description: input.Description}
	if err := cc.DB.Create(&subject).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Could not create subject",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(subject)
}

func (cc *CatalogController) ListQuestions(c *fiber.Ctx) error {
	query := cc.DB.Model(&models.Question{}).Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})

	if subject := c.Query("subject_id"); subject != "" {
		subjectID, err := strconv.Atoi(subject)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid subject ID",
			})
		}
		query = query.Where("subject_id = ?", subjectID)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(questions)
}

func (cc *CatalogController) GetQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID",
		})
	}

	var question models.Question
	err = cc.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&question, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return c.JSON(question)
}

func (cc *CatalogController) CreateQuestion(c *fiber.Ctx) error {
	type AnswerInput struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"is_correct"`
	}
	var input struct {
		SubjectID   uint          `json:"subject_id"`
		Text        string        `json:"text"`
		ImageURL    *string       `json:"image_url"`
		Explanation *string       `json:"explanation"`
		Type        string        `json:"type"`
		Answers     []AnswerInput `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	qType, err := models.ParseQuestionType(input.Type)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question type",
		})
	}
	if input.Text == "" || len(input.Answers) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question text and at least two answers are required",
		})
	}

	correct := 0
	for _, a := range input.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one answer must be marked correct",
		})
	}
	if qType == models.SingleChoice && correct != 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Single choice questions must have exactly one correct answer",
		})
	}

	question := models.Question{
		SubjectID:   input.SubjectID,
		Text:        input.Text,
		ImageURL:    input.ImageURL,
		Explanation: input.Explanation,
		Type:        qType,
	}
	for i, a := range input.Answers {
		question.Answers = append(question.Answers, models.Answer{
			Text:      a.Text,
			IsCorrect: a.IsCorrect,
			Position:  i + 1,
		})
	}

	if err := cc.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create question",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

func (cc *CatalogController) UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID",
		})
	}

	var input struct {
		Text        *string `json:"text"`
		ImageURL    *string `json:"image_url"`
		Explanation *string `json:"explanation"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var question models.Question
	if err := cc.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Update fields; answer sets are immutable once authored, delete and
	// recreate the question to change them
	if input.Text != nil && *input.Text != "" {
		question.Text = *input.Text
	}
	if input.ImageURL != nil {
		question.ImageURL = input.ImageURL
	}
	if input.Explanation != nil {
		question.Explanation = input.Explanation
	}

	if err := cc.DB.Save(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update question",
		})
	}

	return c.JSON(question)
}

func (cc *CatalogController) DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID",
		})
	}

	if err := cc.DB.Delete(&models.Question{}, questionID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete question",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Question deleted",
	})
}
