package store

import (
	"fmt"

	"examhub/backend/config"
	"examhub/backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the Postgres connection and runs migrations. The unique
// indexes created here back the engine's invariants: one attempt per
// assignment, one answer per (attempt, question), one result per attempt.
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Subject{},
		&models.Question{},
		&models.Answer{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestAssignment{},
		&models.TestAttempt{},
		&models.UserAnswer{},
		&models.TestResult{},
	); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Info("database ready")
	return db, nil
}
