package middleware

import (
	"examhub/backend/config"
	"examhub/backend/models"
	"examhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware validates the JWT token and stores the user ID in locals.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Invalid or missing token")
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// AdminMiddleware allows only users with the admin role. Must run after
// AuthMiddleware.
func AdminMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return utils.Unauthorized(c, "Authentication required")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return utils.Unauthorized(c, "User not found")
		}

		if !user.IsAdmin() {
			return utils.Forbidden(c, "Admin access required")
		}

		c.Locals("user", user)
		return c.Next()
	}
}
