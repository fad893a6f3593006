package routes

import (
	"examhub/backend/config"
	"examhub/backend/controllers"
	"examhub/backend/middleware"
	"examhub/backend/scoring"
	"examhub/backend/session"
	"examhub/backend/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config,
	manager *session.Manager, aggregator *scoring.Aggregator, results *store.Results) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Catalog routes
	catalogController := controllers.NewCatalogController(db, cfg)
	catalog := app.Group("/api/catalog", authMiddleware)
	catalog.Get("/subjects", catalogController.ListSubjects)
	catalog.Get("/questions", catalogController.ListQuestions)
	catalog.Get("/questions/:id", catalogController.GetQuestion)

	adminCatalog := app.Group("/api/admin/catalog", authMiddleware, adminMiddleware)
	adminCatalog.Post("/subjects", catalogController.CreateSubject)
	adminCatalog.Post("/questions", catalogController.CreateQuestion)
	adminCatalog.Put("/questions/:id", catalogController.UpdateQuestion)
	adminCatalog.Delete("/questions/:id", catalogController.DeleteQuestion)

	// Tests routes
	testsController := controllers.NewTestsController(db, cfg)
	tests := app.Group("/api/tests", authMiddleware)
	tests.Get("/", testsController.ListTests)
	tests.Get("/assignments", testsController.MyAssignments)
	tests.Get("/:id", testsController.GetTestDetails)

	adminTests := app.Group("/api/admin/tests", authMiddleware, adminMiddleware)
	adminTests.Post("/", testsController.CreateTest)
	adminTests.Get("/assignments", testsController.ListAssignments)
	adminTests.Post("/:id/assign", testsController.AssignTest)

	// Attempt routes
	attemptsController := controllers.NewAttemptsController(manager, results, cfg)
	attempts := app.Group("/api/attempts", authMiddleware)
	attempts.Post("/start", attemptsController.StartAttempt)
	attempts.Post("/:id/resume", attemptsController.ResumeAttempt)
	attempts.Get("/:id", attemptsController.GetState)
	attempts.Put("/:id/navigate", attemptsController.Navigate)
	attempts.Post("/:id/answer", attemptsController.SubmitAnswer)
	attempts.Post("/:id/submit", attemptsController.SubmitAttempt)
	attempts.Post("/:id/pause", attemptsController.PauseAttempt)
	attempts.Post("/:id/resume-timer", attemptsController.ResumeTimer)
	attempts.Delete("/:id", attemptsController.CancelAttempt)

	app.Get("/api/results/me", authMiddleware, attemptsController.MyResults)

	// Metrics routes
	metricsController := controllers.NewMetricsController(aggregator, cfg)
	app.Get("/api/metrics/me", authMiddleware, metricsController.MyMetrics)
	app.Get("/api/metrics/global", authMiddleware, adminMiddleware, metricsController.GlobalMetrics)
	app.Get("/api/metrics/subjects/:id", authMiddleware, adminMiddleware, metricsController.SubjectMetrics)
}
