package controllers

import (
	"strconv"

	"examhub/backend/config"
	"examhub/backend/scoring"
	"examhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// MetricsController serves the aggregate reports. All numbers are recomputed
// from stored results on every request.
type MetricsController struct {
	Aggregator *scoring.Aggregator
	Cfg        *config.Config
}

func NewMetricsController(aggregator *scoring.Aggregator, cfg *config.Config) *MetricsController {
	return &MetricsController{Aggregator: aggregator, Cfg: cfg}
}

// [+] GlobalMetrics godoc
// @Summary Platform-wide statistics
// @Description Mean score, pass/fail rates, completion rate and per-subject breakdown
// @Tags metrics
// @Produce json
// @Success 200 {object} scoring.GlobalMetrics
// @Router /metrics/global [get]
func (mc *MetricsController) GlobalMetrics(c *fiber.Ctx) error {
	metrics, err := mc.Aggregator.GlobalMetrics(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not compute metrics",
		})
	}
	return c.JSON(metrics)
}

// [+] SubjectMetrics godoc
// @Summary Statistics for one subject
// @Tags metrics
// @Produce json
// @Success 200 {object} scoring.GroupMetrics
// @Router /metrics/subjects/{id} [get]
func (mc *MetricsController) SubjectMetrics(c *fiber.Ctx) error {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	var userID *uint
	if u := c.Query("user_id"); u != "" {
		parsed, err := strconv.Atoi(u)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid user ID",
			})
		}
		v := uint(parsed)
		userID = &v
	}

	metrics, err := mc.Aggregator.SubjectMetrics(c.Context(), uint(subjectID), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not compute metrics",
		})
	}
	return c.JSON(metrics)
}

// [+] MyMetrics godoc
// @Summary Statistics across the caller's results
// @Tags metrics
// @Produce json
// @Success 200 {object} scoring.GroupMetrics
// @Router /metrics/me [get]
func (mc *MetricsController) MyMetrics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	metrics, err := mc.Aggregator.UserMetrics(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not compute metrics",
		})
	}
	return c.JSON(metrics)
}
