package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-review-cms/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DatabaseConfig struct {
	DSN         string
	AutoMigrate bool
	LogQueries  bool
}

func loadDatabase() DatabaseConfig {
	dsn := envString("POSTGRES_DSN", "")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			envString("DB_HOST", "localhost"),
			envString("DB_USER", "postgres"),
			envString("DB_PASSWORD", "postgres"),
			envString("DB_NAME", "content_review_cms"),
			envString("DB_PORT", "5432"),
			envString("DB_SSLMODE", "disable"),
		)
	}
	return DatabaseConfig{
		DSN:         dsn,
		AutoMigrate: envBool("DB_AUTO_MIGRATE", true),
		LogQueries:  envBool("DB_LOG_QUERIES", false),
	}
}

// InitDB opens the postgres connection, checks it and migrates the schema.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}

	logLevel := logger.Warn
	if cfg.LogQueries {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.AutoMigrate {
		if err := repositories.Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}
