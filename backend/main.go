package main

import (
	"log"

	"examhub/backend/config"
	"examhub/backend/middleware"
	"examhub/backend/routes"
	"examhub/backend/scoring"
	"examhub/backend/session"
	"examhub/backend/store"
	"examhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := store.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}

	// Stores
	attempts := store.NewAttempts(db)
	answers := store.NewAnswers(db)
	catalog := store.NewCatalog(db)
	results := store.NewResults(db)

	// Domain services
	aggregator := scoring.NewAggregator(results, results, logger)
	manager := session.NewManager(attempts, answers, catalog, catalog, aggregator, logger)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, manager, aggregator, results)

	// Start server
	logger.Info("starting server", zap.String("port", cfg.ServerPort))
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
