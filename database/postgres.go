package database

import (
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tripplanner-backend/config"
)

// Connect opens the Postgres pool through lib/pq and migrates the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        cfg.DatabaseURL,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(LogLevel(cfg.DBLogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("✅ Database connected successfully")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	slog.Info("✅ Database migrated successfully")
	return db, nil
}

// LogLevel maps a config string to a gorm log level. Unknown values fall
// back to warn.
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
