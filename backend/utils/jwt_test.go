package utils

import (
	"net/http/httptest"
	"testing"

	"examhub/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		userID, err := ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})
	return app
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app := jwtTestApp(cfg)

	token, err := GenerateJWTToken(42, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTMissingToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app := jwtTestApp(cfg)

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app := jwtTestApp(cfg)

	token, err := GenerateJWTToken(42, &config.Config{JWTSecret: "othersecret"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
