// Package postgres is the gorm-backed storage adapter.
package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dietledger/backend/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to PostgreSQL and migrates the schema.
func Open(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connection established",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Name),
	)
	return db, nil
}

// Migrate creates or updates every table used by the repositories.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&foodItemModel{},
		&mealModel{},
		&mealIngredientModel{},
		&dietPlanModel{},
		&dietDayModel{},
		&dietDayMealModel{},
		&intakeModel{},
		&consumedMealModel{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
